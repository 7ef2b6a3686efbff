package render

import (
	"bytes"
	"html/template"
	"io"

	"resume-builder/resume/builder"
)

const printTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body{font-family:Georgia,serif;margin:2rem auto;max-width:48rem;color:#111}
.contact{margin:.25rem 0 1rem}
.contact span+span:before{content:" • "}
.item{margin:.5rem 0}
.item h3{margin:0}
.tags{padding-left:1.2rem}
@media print{body{margin:0}}
{{.CSS}}</style>
</head>
<body>
<header>
<h1 class="name">{{.Preview.Fields.Name}}</h1>
<div class="contact"><span>{{.Preview.Fields.Email}}</span><span>{{.Preview.Fields.Phone}}</span><span>{{.Preview.Fields.Location}}</span></div>
</header>
{{- with .Preview}}
{{- if .Sections.Summary}}
<section id="summary"><h2 class="section-heading">Summary</h2><p>{{.Fields.Summary}}</p></section>
{{- end}}
{{- if .Sections.Skills}}
<section id="skills"><h2 class="section-heading">Skills</h2><ul class="tags">{{range .Skills}}<li>{{.}}</li>{{end}}</ul></section>
{{- end}}
{{- if .Sections.Education}}
<section id="education"><h2 class="section-heading">Education</h2>{{template "items" .Education}}</section>
{{- end}}
{{- if .Sections.Experience}}
<section id="experience"><h2 class="section-heading">Experience</h2>{{template "items" .Experience}}</section>
{{- end}}
{{- end}}
{{- if .AutoPrint}}
<script>window.addEventListener("load",function(){window.print()})</script>
{{- end}}
</body>
</html>
{{define "items"}}{{range .}}<div class="item"><h3 class="item-title">{{.Title}}</h3><div class="sub">{{.Subtitle}}</div>{{if .Details}}<p>{{.Details}}</p>{{end}}</div>{{end}}{{end}}`

var printPage = template.Must(template.New("print").Parse(printTemplate))

// PrintOptions tunes the print page.
type PrintOptions struct {
	// AutoPrint opens the browser print dialog once the page loads.
	AutoPrint bool
}

type printData struct {
	Title     string
	CSS       template.CSS
	Preview   builder.PreviewView
	AutoPrint bool
}

// WritePrintHTML renders the preview as a standalone page suitable for the
// browser's print and save-as-PDF dialog. Hidden sections are omitted.
func WritePrintHTML(w io.Writer, preview builder.PreviewView, opts PrintOptions) error {
	title := preview.Fields.Name
	if title == "" {
		title = "Resume"
	}
	return printPage.Execute(w, printData{
		Title:     title,
		CSS:       template.CSS(Stylesheet()),
		Preview:   preview,
		AutoPrint: opts.AutoPrint,
	})
}

// RenderPrintHTML is WritePrintHTML into a byte slice.
func RenderPrintHTML(preview builder.PreviewView, opts PrintOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := WritePrintHTML(&buf, preview, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
