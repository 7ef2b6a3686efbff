package editor

import (
	"fmt"
	"slices"
	"strings"

	"resume-builder/resume/builder"
)

// Command types accepted on the wire.
const (
	TypeSetField         = "setField"
	TypeAddSkills        = "addSkills"
	TypeSkillKey         = "skillKey"
	TypeRemoveSkill      = "removeSkill"
	TypeAddEducation     = "addEducation"
	TypeAddExperience    = "addExperience"
	TypeAddEntry         = "addEntry"
	TypeEditEntry        = "editEntry"
	TypeUpdateEntry      = "updateEntry"
	TypeRemoveEducation  = "removeEducation"
	TypeRemoveExperience = "removeExperience"
	TypeRemoveEntry      = "removeEntry"
	TypeReset            = "reset"
)

// CommandRequest is the JSON shape of a command. Which fields are read
// depends on Type.
type CommandRequest struct {
	Seq     int64             `json:"seq,omitempty"`
	Type    string            `json:"type"`
	Field   string            `json:"field,omitempty"`
	Value   string            `json:"value,omitempty"`
	Raw     string            `json:"raw,omitempty"`
	Key     string            `json:"key,omitempty"`
	Input   string            `json:"input,omitempty"`
	Index   *int              `json:"index,omitempty"`
	Section string            `json:"section,omitempty"`
	ID      string            `json:"id,omitempty"`
	Values  map[string]string `json:"values,omitempty"`
}

// Command validates the request and converts it to a builder command.
func (r CommandRequest) Command() (builder.Command, error) {
	switch strings.TrimSpace(r.Type) {
	case TypeSetField:
		f := builder.Field(r.Field)
		if !f.Valid() {
			return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidCommand, r.Field)
		}
		return builder.SetField{Field: f, Value: r.Value}, nil
	case TypeAddSkills:
		return builder.AddSkills{Raw: r.Raw}, nil
	case TypeSkillKey:
		if r.Key == "" {
			return nil, fmt.Errorf("%w: key is required", ErrInvalidCommand)
		}
		return builder.SkillKey{Key: r.Key, Input: r.Input}, nil
	case TypeRemoveSkill:
		if r.Index == nil {
			return nil, fmt.Errorf("%w: index is required", ErrInvalidCommand)
		}
		return builder.RemoveSkill{Index: *r.Index}, nil
	case TypeAddEducation:
		return builder.AddEntry{Section: builder.SectionEducation}, nil
	case TypeAddExperience:
		return builder.AddEntry{Section: builder.SectionExperience}, nil
	case TypeAddEntry:
		section, err := parseSection(r.Section)
		if err != nil {
			return nil, err
		}
		return builder.AddEntry{Section: section}, nil
	case TypeEditEntry:
		section, err := parseSection(r.Section)
		if err != nil {
			return nil, err
		}
		if err := requireID(r.ID); err != nil {
			return nil, err
		}
		if !slices.Contains(builder.EntryFields(section), r.Field) {
			return nil, fmt.Errorf("%w: unknown %s field %q", ErrInvalidCommand, section, r.Field)
		}
		return builder.EditEntry{Section: section, ID: r.ID, Field: r.Field, Value: r.Value}, nil
	case TypeUpdateEntry:
		section, err := parseSection(r.Section)
		if err != nil {
			return nil, err
		}
		if err := requireID(r.ID); err != nil {
			return nil, err
		}
		allowed := builder.EntryFields(section)
		for key := range r.Values {
			if !slices.Contains(allowed, key) {
				return nil, fmt.Errorf("%w: unknown %s field %q", ErrInvalidCommand, section, key)
			}
		}
		return builder.UpdateEntry{Section: section, ID: r.ID, Values: r.Values}, nil
	case TypeRemoveEducation:
		if err := requireID(r.ID); err != nil {
			return nil, err
		}
		return builder.RemoveEntry{Section: builder.SectionEducation, ID: r.ID}, nil
	case TypeRemoveExperience:
		if err := requireID(r.ID); err != nil {
			return nil, err
		}
		return builder.RemoveEntry{Section: builder.SectionExperience, ID: r.ID}, nil
	case TypeRemoveEntry:
		section, err := parseSection(r.Section)
		if err != nil {
			return nil, err
		}
		if err := requireID(r.ID); err != nil {
			return nil, err
		}
		return builder.RemoveEntry{Section: section, ID: r.ID}, nil
	case TypeReset:
		return builder.Reset{}, nil
	case "":
		return nil, fmt.Errorf("%w: type is required", ErrInvalidCommand)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidCommand, r.Type)
	}
}

func parseSection(raw string) (builder.Section, error) {
	s := builder.Section(strings.TrimSpace(raw))
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown section %q", ErrInvalidCommand, raw)
	}
	return s, nil
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidCommand)
	}
	return nil
}

// Snapshot is one published rendering of a session.
type Snapshot struct {
	Version uint64          `json:"version"`
	View    builder.View    `json:"view"`
	Result  *builder.Result `json:"result,omitempty"`
}

// Frame types pushed over the live stream.
const (
	FrameSnapshot = "snapshot"
	FrameAck      = "ack"
	FrameError    = "error"
)

// Frame is a server-to-client message on the live stream.
type Frame struct {
	Type    string          `json:"type"`
	Seq     int64           `json:"seq,omitempty"`
	Version uint64          `json:"version,omitempty"`
	View    *builder.View   `json:"view,omitempty"`
	Result  *builder.Result `json:"result,omitempty"`
	Error   *StreamError    `json:"error,omitempty"`
}

// StreamError mirrors the HTTP error body.
type StreamError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func snapshotFrame(s Snapshot) Frame {
	view := s.View
	return Frame{Type: FrameSnapshot, Version: s.Version, View: &view, Result: s.Result}
}
