package builder

import "strings"

// Field identifies one of the basic profile inputs.
type Field string

const (
	FieldName     Field = "name"
	FieldEmail    Field = "email"
	FieldPhone    Field = "phone"
	FieldLocation Field = "location"
	FieldSummary  Field = "summary"
)

// BasicFields lists the profile inputs in form order.
var BasicFields = []Field{FieldName, FieldEmail, FieldPhone, FieldLocation, FieldSummary}

// Valid reports whether f names a basic profile input.
func (f Field) Valid() bool {
	switch f {
	case FieldName, FieldEmail, FieldPhone, FieldLocation, FieldSummary:
		return true
	default:
		return false
	}
}

// Profile holds one string per basic field.
type Profile struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Summary  string `json:"summary"`
}

// Get returns the value stored for f, or "" for an unknown field.
func (p Profile) Get(f Field) string {
	switch f {
	case FieldName:
		return p.Name
	case FieldEmail:
		return p.Email
	case FieldPhone:
		return p.Phone
	case FieldLocation:
		return p.Location
	case FieldSummary:
		return p.Summary
	default:
		return ""
	}
}

func (p *Profile) set(f Field, v string) {
	switch f {
	case FieldName:
		p.Name = v
	case FieldEmail:
		p.Email = v
	case FieldPhone:
		p.Phone = v
	case FieldLocation:
		p.Location = v
	case FieldSummary:
		p.Summary = v
	}
}

// EducationEntry is one record of the education list.
type EducationEntry struct {
	ID        string `json:"id"`
	Degree    string `json:"degree"`
	Institute string `json:"institute"`
	Year      string `json:"year"`
	Details   string `json:"details"`
}

func (e EducationEntry) entryID() string { return e.ID }

func (e EducationEntry) values() fieldValues {
	return fieldValues{e.Degree, e.Institute, e.Year, e.Details}
}

// ExperienceEntry is one record of the experience list.
type ExperienceEntry struct {
	ID      string `json:"id"`
	Role    string `json:"role"`
	Company string `json:"company"`
	Period  string `json:"period"`
	Details string `json:"details"`
}

func (e ExperienceEntry) entryID() string { return e.ID }

func (e ExperienceEntry) values() fieldValues {
	return fieldValues{e.Role, e.Company, e.Period, e.Details}
}

// State is the single source of truth of a builder session. Profile holds
// the trimmed mirror of the basic inputs as last seen by the field binders.
type State struct {
	Profile    Profile           `json:"profile"`
	Skills     []string          `json:"skills"`
	Education  []EducationEntry  `json:"education"`
	Experience []ExperienceEntry `json:"experience"`
}

func (s State) clone() State {
	out := State{Profile: s.Profile}
	out.Skills = append([]string(nil), s.Skills...)
	out.Education = append([]EducationEntry(nil), s.Education...)
	out.Experience = append([]ExperienceEntry(nil), s.Experience...)
	return out
}

func filled(v string) bool {
	return strings.TrimSpace(v) != ""
}
