package builder

import "slices"

// Placeholders holds the preview text shown for each empty basic field.
type Placeholders = Profile

// DefaultPlaceholders mirrors the initial content of the preview header.
var DefaultPlaceholders = Placeholders{
	Name:     "Your Name",
	Email:    "email@example.com",
	Phone:    "+00 00000 00000",
	Location: "City, Country",
}

// View is a full rendering of a session: the editable form side and the
// read-only preview side.
type View struct {
	Form    FormView    `json:"form"`
	Preview PreviewView `json:"preview"`
}

// FormView is the editable side of the builder.
type FormView struct {
	Inputs     Profile      `json:"inputs"`
	SkillInput string       `json:"skillInput"`
	SkillTags  []SkillTag   `json:"skillTags"`
	Education  []EntryGroup `json:"education"`
	Experience []EntryGroup `json:"experience"`
}

// SkillTag is a removable skill chip. Index is the position to pass to
// RemoveSkill.
type SkillTag struct {
	Index int    `json:"index"`
	Label string `json:"label"`
}

// EntryGroup is the editable group rendered for one entry.
type EntryGroup struct {
	ID      string       `json:"id"`
	Section Section      `json:"section"`
	Inputs  []EntryInput `json:"inputs"`
}

// EntryInput is a single control of an entry group.
type EntryInput struct {
	Field     string `json:"field"`
	Label     string `json:"label"`
	Hint      string `json:"hint"`
	Value     string `json:"value"`
	Multiline bool   `json:"multiline,omitempty"`
}

// PreviewView is the formatted resume as currently rendered.
type PreviewView struct {
	Fields     Profile        `json:"fields"`
	Skills     []string       `json:"skills"`
	Education  []EntryPreview `json:"education"`
	Experience []EntryPreview `json:"experience"`
	Sections   Visibility     `json:"sections"`
	Progress   int            `json:"progress"`
}

// EntryPreview is the read-only summary of one entry.
type EntryPreview struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Details  string `json:"details,omitempty"`
}

func (v View) clone() View {
	out := v
	out.Form.SkillTags = slices.Clone(v.Form.SkillTags)
	out.Form.Education = cloneGroups(v.Form.Education)
	out.Form.Experience = cloneGroups(v.Form.Experience)
	out.Preview.Skills = slices.Clone(v.Preview.Skills)
	out.Preview.Education = slices.Clone(v.Preview.Education)
	out.Preview.Experience = slices.Clone(v.Preview.Experience)
	return out
}

func cloneGroups(in []EntryGroup) []EntryGroup {
	if in == nil {
		return nil
	}
	out := make([]EntryGroup, len(in))
	for i, g := range in {
		g.Inputs = slices.Clone(g.Inputs)
		out[i] = g
	}
	return out
}
