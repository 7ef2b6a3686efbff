package builder

import "strings"

// Section identifies one of the repeatable entry lists.
type Section string

const (
	SectionEducation  Section = "education"
	SectionExperience Section = "experience"
)

// Valid reports whether s names an entry list.
func (s Section) Valid() bool {
	return s == SectionEducation || s == SectionExperience
}

const entryFieldCount = 4

// placeholderTitle is shown in the preview when an entry has no primary value.
const placeholderTitle = "—"

const subtitleSeparator = " • "

type fieldValues [entryFieldCount]string

func (v fieldValues) trimmed() fieldValues {
	for i := range v {
		v[i] = strings.TrimSpace(v[i])
	}
	return v
}

// entryField describes one input of an entry group. The first field of a
// schema is the primary one and becomes the preview title; the second and
// third form the subtitle; the fourth is the details paragraph.
type entryField struct {
	Key       string
	Label     string
	Hint      string
	Multiline bool
}

type entrySchema struct {
	section Section
	fields  [entryFieldCount]entryField
}

// fieldIndex maps a field key to its position, or -1.
func (s entrySchema) fieldIndex(key string) int {
	for i, f := range s.fields {
		if f.Key == key {
			return i
		}
	}
	return -1
}

var educationSchema = entrySchema{
	section: SectionEducation,
	fields: [entryFieldCount]entryField{
		{Key: "degree", Label: "Degree", Hint: "Degree e.g., B.Tech CSE"},
		{Key: "institute", Label: "Institution", Hint: "Institution"},
		{Key: "year", Label: "Year / Score", Hint: "Year / CGPA"},
		{Key: "details", Label: "Details", Hint: "Relevant courses / highlights", Multiline: true},
	},
}

var experienceSchema = entrySchema{
	section: SectionExperience,
	fields: [entryFieldCount]entryField{
		{Key: "role", Label: "Role", Hint: "Role e.g., Frontend Intern"},
		{Key: "company", Label: "Company", Hint: "Company / Org"},
		{Key: "period", Label: "Period", Hint: "Dates e.g., Jun 2024 – Aug 2024"},
		{Key: "details", Label: "Details", Hint: "Impact & responsibilities (use bullets)", Multiline: true},
	},
}

// EntryFields returns the field keys accepted for section, in form order.
func EntryFields(section Section) []string {
	var schema entrySchema
	switch section {
	case SectionEducation:
		schema = educationSchema
	case SectionExperience:
		schema = experienceSchema
	default:
		return nil
	}
	keys := make([]string, 0, entryFieldCount)
	for _, f := range schema.fields {
		keys = append(keys, f.Key)
	}
	return keys
}

type entry interface {
	entryID() string
	values() fieldValues
}

// listEditor implements add/edit/remove and rendering for one entry type.
type listEditor[T entry] struct {
	schema entrySchema
	build  func(id string, v fieldValues) T
}

var educationList = listEditor[EducationEntry]{
	schema: educationSchema,
	build: func(id string, v fieldValues) EducationEntry {
		return EducationEntry{ID: id, Degree: v[0], Institute: v[1], Year: v[2], Details: v[3]}
	},
}

var experienceList = listEditor[ExperienceEntry]{
	schema: experienceSchema,
	build: func(id string, v fieldValues) ExperienceEntry {
		return ExperienceEntry{ID: id, Role: v[0], Company: v[1], Period: v[2], Details: v[3]}
	},
}

func (l listEditor[T]) add(items []T, id string) []T {
	return append(items, l.build(id, fieldValues{}))
}

// update replaces every field of the entry with id by the trimmed values.
func (l listEditor[T]) update(items []T, id string, v fieldValues) bool {
	for i := range items {
		if items[i].entryID() == id {
			items[i] = l.build(id, v.trimmed())
			return true
		}
	}
	return false
}

// edit changes one field. The rest of the group is copied back as well so
// the entry always mirrors the whole group.
func (l listEditor[T]) edit(items []T, id, key, value string) bool {
	idx := l.schema.fieldIndex(key)
	if idx < 0 {
		return false
	}
	for i := range items {
		if items[i].entryID() == id {
			v := items[i].values()
			v[idx] = value
			items[i] = l.build(id, v.trimmed())
			return true
		}
	}
	return false
}

func (l listEditor[T]) remove(items []T, id string) ([]T, bool) {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if it.entryID() != id {
			out = append(out, it)
		}
	}
	return out, len(out) != len(items)
}

// units sums the per-entry completeness, each entry worth at most one unit.
func (l listEditor[T]) units(items []T) float64 {
	total := 0.0
	for _, it := range items {
		n := 0
		for _, v := range it.values() {
			if filled(v) {
				n++
			}
		}
		total += float64(n) / entryFieldCount
	}
	return total
}

func (l listEditor[T]) groups(items []T) []EntryGroup {
	out := make([]EntryGroup, 0, len(items))
	for _, it := range items {
		v := it.values()
		g := EntryGroup{ID: it.entryID(), Section: l.schema.section}
		for i, f := range l.schema.fields {
			g.Inputs = append(g.Inputs, EntryInput{
				Field:     f.Key,
				Label:     f.Label,
				Hint:      f.Hint,
				Value:     v[i],
				Multiline: f.Multiline,
			})
		}
		out = append(out, g)
	}
	return out
}

func (l listEditor[T]) previews(items []T) []EntryPreview {
	out := make([]EntryPreview, 0, len(items))
	for _, it := range items {
		out = append(out, previewEntry(it.values()))
	}
	return out
}

func previewEntry(v fieldValues) EntryPreview {
	p := EntryPreview{Title: v[0], Details: v[3]}
	if p.Title == "" {
		p.Title = placeholderTitle
	}
	var sub []string
	for _, s := range v[1:3] {
		if s != "" {
			sub = append(sub, s)
		}
	}
	p.Subtitle = strings.Join(sub, subtitleSeparator)
	return p
}
