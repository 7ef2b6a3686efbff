package builder

import (
	"fmt"
	"strings"
)

const maxIDAttempts = 8

// Session is the controller of one resume form. It owns the state, the raw
// form inputs, the rendered views and the queue of deferred work.
//
// A Session is not safe for concurrent use; callers drive it from a single
// goroutine, one command at a time.
type Session struct {
	ids          IDGenerator
	placeholders Placeholders
	issued       map[string]struct{}

	state      State
	inputs     Profile
	skillInput string

	view     View
	deferred []func()
}

// NewSession builds a session with empty state. A nil ids uses
// UUIDGenerator. Placeholders are captured once here.
func NewSession(ids IDGenerator, placeholders Placeholders) *Session {
	if ids == nil {
		ids = UUIDGenerator{}
	}
	s := &Session{
		ids:          ids,
		placeholders: placeholders,
		issued:       make(map[string]struct{}),
	}
	for _, f := range BasicFields {
		s.bind(f)
	}
	s.renderSkills()
	s.renderEducation()
	s.renderExperience()
	s.recheck()
	return s
}

// Dispatch runs cmd to completion and re-renders everything it affects.
// Unknown commands are ignored.
func (s *Session) Dispatch(cmd Command) Result {
	var res Result
	switch c := cmd.(type) {
	case SetField:
		if !c.Field.Valid() {
			break
		}
		s.inputs.set(c.Field, c.Value)
		s.bind(c.Field)
		s.recheck()
		res.Changed = true
	case AddSkills:
		s.skillInput = c.Raw
		res.Changed = s.addSkillFromInput()
	case SkillKey:
		s.skillInput = c.Input
		s.view.Form.SkillInput = c.Input
		res.Changed = true
		if c.Key == KeyEnter {
			res.PreventDefault = true
			s.addSkillFromInput()
		}
	case RemoveSkill:
		var ok bool
		if s.state.Skills, ok = removeSkill(s.state.Skills, c.Index); ok {
			s.renderSkills()
			s.recheck()
			res.Changed = true
		}
	case AddEntry:
		res.CreatedID, res.Changed = s.addEntry(c.Section)
	case EditEntry:
		res.Changed = s.editEntry(c)
	case UpdateEntry:
		res.Changed = s.updateEntry(c)
	case RemoveEntry:
		res.Changed = s.removeEntry(c.Section, c.ID)
	case Reset:
		s.reset()
		res.Changed = true
	}
	res.Pending = len(s.deferred) > 0
	return res
}

// Tick runs the deferred work queued before the call and reports how many
// tasks ran. Work queued by those tasks waits for the next Tick.
func (s *Session) Tick() int {
	tasks := s.deferred
	s.deferred = nil
	for _, task := range tasks {
		task()
	}
	return len(tasks)
}

// Pending reports whether deferred work is queued.
func (s *Session) Pending() bool {
	return len(s.deferred) > 0
}

// View returns a copy of the current rendering.
func (s *Session) View() View {
	return s.view.clone()
}

// State returns a copy of the current state.
func (s *Session) State() State {
	return s.state.clone()
}

// bind mirrors one basic input into the state and its preview output.
func (s *Session) bind(f Field) {
	v := strings.TrimSpace(s.inputs.Get(f))
	s.state.Profile.set(f, v)
	out := v
	if out == "" {
		out = s.placeholders.Get(f)
	}
	s.view.Preview.Fields.set(f, out)
	s.view.Form.Inputs.set(f, s.inputs.Get(f))
}

func (s *Session) addSkillFromInput() bool {
	if strings.TrimSpace(s.skillInput) == "" {
		s.view.Form.SkillInput = s.skillInput
		return false
	}
	s.state.Skills, _ = addSkills(s.state.Skills, s.skillInput)
	s.skillInput = ""
	s.renderSkills()
	s.recheck()
	return true
}

func (s *Session) addEntry(section Section) (string, bool) {
	switch section {
	case SectionEducation:
		id := s.nextID()
		s.state.Education = educationList.add(s.state.Education, id)
		s.renderEducation()
		s.recheck()
		return id, true
	case SectionExperience:
		id := s.nextID()
		s.state.Experience = experienceList.add(s.state.Experience, id)
		s.renderExperience()
		s.recheck()
		return id, true
	default:
		return "", false
	}
}

func (s *Session) editEntry(c EditEntry) bool {
	var ok bool
	switch c.Section {
	case SectionEducation:
		if ok = educationList.edit(s.state.Education, c.ID, c.Field, c.Value); ok {
			s.renderEducation()
		}
	case SectionExperience:
		if ok = experienceList.edit(s.state.Experience, c.ID, c.Field, c.Value); ok {
			s.renderExperience()
		}
	}
	if ok {
		s.recheck()
	}
	return ok
}

func (s *Session) updateEntry(c UpdateEntry) bool {
	var ok bool
	switch c.Section {
	case SectionEducation:
		v := groupValues(educationSchema, c.Values)
		if ok = educationList.update(s.state.Education, c.ID, v); ok {
			s.renderEducation()
		}
	case SectionExperience:
		v := groupValues(experienceSchema, c.Values)
		if ok = experienceList.update(s.state.Experience, c.ID, v); ok {
			s.renderExperience()
		}
	}
	if ok {
		s.recheck()
	}
	return ok
}

func groupValues(schema entrySchema, values map[string]string) fieldValues {
	var v fieldValues
	for i, f := range schema.fields {
		v[i] = values[f.Key]
	}
	return v
}

func (s *Session) removeEntry(section Section, id string) bool {
	var ok bool
	switch section {
	case SectionEducation:
		if s.state.Education, ok = educationList.remove(s.state.Education, id); ok {
			s.renderEducation()
		}
	case SectionExperience:
		if s.state.Experience, ok = experienceList.remove(s.state.Experience, id); ok {
			s.renderExperience()
		}
	}
	if ok {
		s.recheck()
	}
	return ok
}

// reset clears the collections right away and lets the form reset clear
// the raw inputs. Placeholders come back on the next tick, once the inputs
// are empty.
func (s *Session) reset() {
	s.state.Skills = nil
	s.state.Education = nil
	s.state.Experience = nil
	s.renderSkills()
	s.renderEducation()
	s.renderExperience()
	s.view.Preview.Sections = Visibility{}

	// The state mirrors the now empty inputs; only the preview text waits.
	s.state.Profile = Profile{}
	s.inputs = Profile{}
	s.skillInput = ""
	s.view.Form.Inputs = Profile{}
	s.view.Form.SkillInput = ""

	s.deferred = append(s.deferred, func() {
		for _, f := range BasicFields {
			s.bind(f)
		}
		s.recheck()
	})
}

func (s *Session) nextID() string {
	for i := 0; i < maxIDAttempts; i++ {
		id := s.ids.NewID()
		if _, used := s.issued[id]; id != "" && !used {
			s.issued[id] = struct{}{}
			return id
		}
	}
	// The generator keeps colliding; fall back to a sequence.
	for n := len(s.issued) + 1; ; n++ {
		id := fmt.Sprintf("entry-%d", n)
		if _, used := s.issued[id]; !used {
			s.issued[id] = struct{}{}
			return id
		}
	}
}

func (s *Session) renderSkills() {
	tags := make([]SkillTag, 0, len(s.state.Skills))
	for i, skill := range s.state.Skills {
		tags = append(tags, SkillTag{Index: i, Label: skill})
	}
	s.view.Form.SkillTags = tags
	s.view.Form.SkillInput = s.skillInput
	s.view.Preview.Skills = append(make([]string, 0, len(s.state.Skills)), s.state.Skills...)
}

func (s *Session) renderEducation() {
	s.view.Form.Education = educationList.groups(s.state.Education)
	s.view.Preview.Education = educationList.previews(s.state.Education)
}

func (s *Session) renderExperience() {
	s.view.Form.Experience = experienceList.groups(s.state.Experience)
	s.view.Preview.Experience = experienceList.previews(s.state.Experience)
}

// recheck recomputes section visibility and progress from the state.
func (s *Session) recheck() {
	s.view.Preview.Sections = Sections(s.state)
	s.view.Preview.Progress = Progress(s.state)
}
