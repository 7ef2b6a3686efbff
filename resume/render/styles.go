package render

import (
	"fmt"
	"sort"
	"strings"
)

// RunStyle captures the inline formatting of a preview element.
type RunStyle struct {
	Bold   bool
	Italic bool
	Size   int
	Color  string
}

const (
	HeadingColor = "1F2937"
	NameColor    = "111111"
	MutedColor   = "6B7280"
	HeadingSize  = 12
	NameSize     = 22
)

// StyleMap centralizes the formatting of key resume elements, keyed by the
// CSS class used in the print page.
var StyleMap = map[string]RunStyle{
	"name": {
		Bold:  true,
		Size:  NameSize,
		Color: NameColor,
	},
	"section-heading": {
		Bold:  true,
		Size:  HeadingSize,
		Color: HeadingColor,
	},
	"item-title": {
		Bold: true,
	},
	"sub": {
		Italic: true,
		Color:  MutedColor,
	},
}

// CSS renders one declaration block.
func (s RunStyle) CSS() string {
	var decls []string
	if s.Bold {
		decls = append(decls, "font-weight:700")
	}
	if s.Italic {
		decls = append(decls, "font-style:italic")
	}
	if s.Size > 0 {
		decls = append(decls, fmt.Sprintf("font-size:%dpt", s.Size))
	}
	if s.Color != "" {
		decls = append(decls, "color:#"+s.Color)
	}
	return strings.Join(decls, ";")
}

// Stylesheet renders StyleMap as CSS rules in a stable order.
func Stylesheet() string {
	classes := make([]string, 0, len(StyleMap))
	for class := range StyleMap {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	var b strings.Builder
	for _, class := range classes {
		fmt.Fprintf(&b, ".%s{%s}\n", class, StyleMap[class].CSS())
	}
	return b.String()
}
