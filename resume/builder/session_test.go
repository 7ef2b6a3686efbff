package builder

import (
	"fmt"
	"slices"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func sequentialIDs() IDGenerator {
	n := 0
	return IDGeneratorFunc(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	})
}

func newTestSession() *Session {
	return NewSession(sequentialIDs(), DefaultPlaceholders)
}

func TestNewSessionShowsPlaceholdersAndZeroProgress(t *testing.T) {
	s := newTestSession()
	v := s.View()

	if v.Preview.Fields != DefaultPlaceholders {
		t.Fatalf("expected placeholders, got:\n%s", spew.Sdump(v.Preview.Fields))
	}
	if v.Preview.Progress != 0 {
		t.Fatalf("expected 0 progress, got %d", v.Preview.Progress)
	}
	if v.Preview.Sections != (Visibility{}) {
		t.Fatalf("expected hidden sections, got %+v", v.Preview.Sections)
	}
	if v.Preview.Skills == nil || v.Form.Education == nil || v.Preview.Experience == nil {
		t.Fatalf("expected empty, non-nil lists:\n%s", spew.Sdump(v))
	}
}

func TestSetFieldMirrorsTrimmedValueOrPlaceholder(t *testing.T) {
	s := newTestSession()

	s.Dispatch(SetField{Field: FieldName, Value: "  Ada Lovelace "})
	if got := s.View().Preview.Fields.Name; got != "Ada Lovelace" {
		t.Fatalf("expected trimmed name, got %q", got)
	}
	if got := s.View().Form.Inputs.Name; got != "  Ada Lovelace " {
		t.Fatalf("expected raw input kept, got %q", got)
	}

	s.Dispatch(SetField{Field: FieldName, Value: "   "})
	if got := s.View().Preview.Fields.Name; got != DefaultPlaceholders.Name {
		t.Fatalf("expected placeholder, got %q", got)
	}
}

func TestSetFieldUpdatesVisibilityAndProgress(t *testing.T) {
	s := newTestSession()
	for _, f := range BasicFields {
		s.Dispatch(SetField{Field: f, Value: "x"})
	}
	v := s.View()
	if v.Preview.Progress != 42 {
		t.Fatalf("expected 42, got %d", v.Preview.Progress)
	}
	if !v.Preview.Sections.Summary {
		t.Fatal("expected summary section visible")
	}
}

func TestSetFieldUnknownIsNoop(t *testing.T) {
	s := newTestSession()
	if res := s.Dispatch(SetField{Field: "age", Value: "42"}); res.Changed {
		t.Fatal("expected no-op for unknown field")
	}
}

func TestAddSkillsClearsInputAndRenders(t *testing.T) {
	s := newTestSession()
	res := s.Dispatch(AddSkills{Raw: "Go, Rust"})
	if !res.Changed {
		t.Fatal("expected change")
	}
	v := s.View()
	if !slices.Equal(v.Preview.Skills, []string{"Go", "Rust"}) {
		t.Fatalf("unexpected preview skills: %v", v.Preview.Skills)
	}
	if len(v.Form.SkillTags) != 2 || v.Form.SkillTags[1] != (SkillTag{Index: 1, Label: "Rust"}) {
		t.Fatalf("unexpected tags:\n%s", spew.Sdump(v.Form.SkillTags))
	}
	if v.Form.SkillInput != "" {
		t.Fatalf("expected cleared input, got %q", v.Form.SkillInput)
	}
	if !v.Preview.Sections.Skills || v.Preview.Progress != 8 {
		t.Fatalf("unexpected preview:\n%s", spew.Sdump(v.Preview))
	}
}

func TestAddSkillsBlankInputIsNoop(t *testing.T) {
	s := newTestSession()
	res := s.Dispatch(AddSkills{Raw: "   "})
	if res.Changed {
		t.Fatal("expected no-op")
	}
	if got := s.View().Form.SkillInput; got != "   " {
		t.Fatalf("expected input untouched, got %q", got)
	}
}

func TestSkillKeyEnterAddsAndPreventsDefault(t *testing.T) {
	s := newTestSession()

	res := s.Dispatch(SkillKey{Key: "s", Input: "Go, SQLs"})
	if res.PreventDefault {
		t.Fatal("plain key must not prevent default")
	}
	if got := s.View().Form.SkillInput; got != "Go, SQLs" {
		t.Fatalf("expected input tracked, got %q", got)
	}

	res = s.Dispatch(SkillKey{Key: KeyEnter, Input: "Go, SQL"})
	if !res.PreventDefault {
		t.Fatal("enter must prevent default")
	}
	if got := s.State().Skills; !slices.Equal(got, []string{"Go", "SQL"}) {
		t.Fatalf("unexpected skills: %v", got)
	}
}

func TestRemoveSkill(t *testing.T) {
	s := newTestSession()
	s.Dispatch(AddSkills{Raw: "a,b,c"})

	if res := s.Dispatch(RemoveSkill{Index: 1}); !res.Changed {
		t.Fatal("expected removal")
	}
	if got := s.View().Preview.Skills; !slices.Equal(got, []string{"a", "c"}) {
		t.Fatalf("unexpected skills: %v", got)
	}
	if res := s.Dispatch(RemoveSkill{Index: 7}); res.Changed {
		t.Fatal("expected no-op for out of range index")
	}

	s.Dispatch(RemoveSkill{Index: 0})
	s.Dispatch(RemoveSkill{Index: 0})
	if v := s.View(); v.Preview.Sections.Skills || v.Preview.Progress != 0 {
		t.Fatalf("expected hidden skills and 0 progress:\n%s", spew.Sdump(v.Preview))
	}
}

func TestAddEntryShowsSectionBeforeAnyFieldIsFilled(t *testing.T) {
	s := newTestSession()
	if s.View().Preview.Sections.Education {
		t.Fatal("education should start hidden")
	}

	res := s.Dispatch(AddEntry{Section: SectionEducation})
	if res.CreatedID != "id-1" {
		t.Fatalf("unexpected id %q", res.CreatedID)
	}
	v := s.View()
	if !v.Preview.Sections.Education {
		t.Fatal("education should be visible after the first add")
	}
	if len(v.Preview.Education) != 1 || v.Preview.Education[0] != (EntryPreview{Title: "—"}) {
		t.Fatalf("unexpected preview:\n%s", spew.Sdump(v.Preview.Education))
	}
	if len(v.Form.Education) != 1 || len(v.Form.Education[0].Inputs) != 4 {
		t.Fatalf("unexpected group:\n%s", spew.Sdump(v.Form.Education))
	}
	if v.Preview.Progress != 0 {
		t.Fatalf("empty entry must not add progress, got %d", v.Preview.Progress)
	}
}

func TestEditEntryRendersPreview(t *testing.T) {
	s := newTestSession()
	id := s.Dispatch(AddEntry{Section: SectionExperience}).CreatedID

	s.Dispatch(EditEntry{Section: SectionExperience, ID: id, Field: "company", Value: " Acme "})
	s.Dispatch(EditEntry{Section: SectionExperience, ID: id, Field: "period", Value: "2020 – 2024"})

	v := s.View()
	want := EntryPreview{Title: "—", Subtitle: "Acme • 2020 – 2024"}
	if v.Preview.Experience[0] != want {
		t.Fatalf("expected %+v, got %+v", want, v.Preview.Experience[0])
	}
	if got := s.State().Experience[0].Company; got != "Acme" {
		t.Fatalf("expected trimmed company, got %q", got)
	}
	if v.Preview.Progress != 4 {
		t.Fatalf("expected 4, got %d", v.Preview.Progress)
	}

	s.Dispatch(EditEntry{Section: SectionExperience, ID: id, Field: "role", Value: "Engineer"})
	s.Dispatch(EditEntry{Section: SectionExperience, ID: id, Field: "details", Value: "Shipped things"})
	v = s.View()
	want = EntryPreview{Title: "Engineer", Subtitle: "Acme • 2020 – 2024", Details: "Shipped things"}
	if v.Preview.Experience[0] != want {
		t.Fatalf("expected %+v, got %+v", want, v.Preview.Experience[0])
	}
	if v.Preview.Progress != 8 {
		t.Fatalf("expected 8, got %d", v.Preview.Progress)
	}
}

func TestEditEntryUnknownTargetsAreNoops(t *testing.T) {
	s := newTestSession()
	id := s.Dispatch(AddEntry{Section: SectionEducation}).CreatedID

	cases := []Command{
		EditEntry{Section: SectionEducation, ID: "missing", Field: "degree", Value: "x"},
		EditEntry{Section: SectionEducation, ID: id, Field: "role", Value: "x"},
		EditEntry{Section: SectionExperience, ID: id, Field: "role", Value: "x"},
		UpdateEntry{Section: SectionEducation, ID: "missing"},
		RemoveEntry{Section: SectionEducation, ID: "missing"},
		RemoveEntry{Section: SectionExperience, ID: id},
		AddEntry{Section: "projects"},
	}
	for _, cmd := range cases {
		if res := s.Dispatch(cmd); res.Changed {
			t.Fatalf("expected no-op for %#v", cmd)
		}
	}
	if len(s.State().Education) != 1 {
		t.Fatalf("unexpected state:\n%s", spew.Sdump(s.State()))
	}
}

func TestUpdateEntryCopiesWholeGroup(t *testing.T) {
	s := newTestSession()
	id := s.Dispatch(AddEntry{Section: SectionEducation}).CreatedID
	s.Dispatch(EditEntry{Section: SectionEducation, ID: id, Field: "details", Value: "old"})

	s.Dispatch(UpdateEntry{Section: SectionEducation, ID: id, Values: map[string]string{
		"degree":    " BSc ",
		"institute": "MIT",
		"year":      "2020",
	}})

	got := s.State().Education[0]
	want := EducationEntry{ID: id, Degree: "BSc", Institute: "MIT", Year: "2020"}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if p := s.View().Preview.Education[0]; p.Subtitle != "MIT • 2020" || p.Details != "" {
		t.Fatalf("unexpected preview %+v", p)
	}
}

func TestRemoveEntryByID(t *testing.T) {
	s := newTestSession()
	first := s.Dispatch(AddEntry{Section: SectionEducation}).CreatedID
	second := s.Dispatch(AddEntry{Section: SectionEducation}).CreatedID
	s.Dispatch(EditEntry{Section: SectionEducation, ID: second, Field: "degree", Value: "MSc"})

	if res := s.Dispatch(RemoveEntry{Section: SectionEducation, ID: first}); !res.Changed {
		t.Fatal("expected removal")
	}
	v := s.View()
	if len(v.Form.Education) != 1 || v.Form.Education[0].ID != second {
		t.Fatalf("unexpected groups:\n%s", spew.Sdump(v.Form.Education))
	}
	if v.Preview.Education[0].Title != "MSc" {
		t.Fatalf("unexpected preview:\n%s", spew.Sdump(v.Preview.Education))
	}

	s.Dispatch(RemoveEntry{Section: SectionEducation, ID: second})
	if s.View().Preview.Sections.Education {
		t.Fatal("education should be hidden once empty")
	}
}

func TestEntryIDsAreNeverReused(t *testing.T) {
	ids := IDGeneratorFunc(func() string { return "same" })
	s := NewSession(ids, DefaultPlaceholders)

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		id := s.Dispatch(AddEntry{Section: SectionExperience}).CreatedID
		if id == "" || seen[id] {
			t.Fatalf("duplicate or empty id %q", id)
		}
		seen[id] = true
		s.Dispatch(RemoveEntry{Section: SectionExperience, ID: id})
	}
}

func TestResetRestoresPlaceholdersOnTick(t *testing.T) {
	s := newTestSession()
	s.Dispatch(SetField{Field: FieldName, Value: "Ada"})
	s.Dispatch(SetField{Field: FieldSummary, Value: "Analyst"})
	s.Dispatch(AddSkills{Raw: "Go"})
	s.Dispatch(AddEntry{Section: SectionEducation})
	s.Dispatch(AddEntry{Section: SectionExperience})

	res := s.Dispatch(Reset{})
	if !res.Pending {
		t.Fatal("expected deferred work after reset")
	}

	v := s.View()
	if len(v.Preview.Skills) != 0 || len(v.Form.Education) != 0 || len(v.Preview.Experience) != 0 {
		t.Fatalf("expected cleared collections:\n%s", spew.Sdump(v))
	}
	if v.Preview.Sections != (Visibility{}) {
		t.Fatalf("expected hidden sections, got %+v", v.Preview.Sections)
	}
	if v.Form.Inputs != (Profile{}) {
		t.Fatalf("expected cleared inputs, got %+v", v.Form.Inputs)
	}
	if v.Preview.Fields.Name != "Ada" {
		t.Fatalf("placeholders must wait for the tick, got %q", v.Preview.Fields.Name)
	}

	if n := s.Tick(); n != 1 {
		t.Fatalf("expected 1 deferred task, got %d", n)
	}
	v = s.View()
	if v.Preview.Fields != DefaultPlaceholders {
		t.Fatalf("expected placeholders after tick:\n%s", spew.Sdump(v.Preview.Fields))
	}
	if v.Preview.Progress != 0 || s.Pending() {
		t.Fatalf("expected 0 progress and no pending work, got %d", v.Preview.Progress)
	}
	if st := s.State(); st.Profile != (Profile{}) {
		t.Fatalf("expected empty profile:\n%s", spew.Sdump(st))
	}
}

func TestCommandsBeforeTickSeeClearedInputs(t *testing.T) {
	s := newTestSession()
	for _, f := range BasicFields {
		s.Dispatch(SetField{Field: f, Value: "x"})
	}
	if p := s.View().Preview.Progress; p != 42 {
		t.Fatalf("expected 42 before reset, got %d", p)
	}

	s.Dispatch(Reset{})
	s.Dispatch(AddEntry{Section: SectionEducation})

	v := s.View()
	if v.Preview.Sections.Summary {
		t.Fatalf("summary must stay hidden once its input is cleared:\n%s", spew.Sdump(v.Preview.Sections))
	}
	if !v.Preview.Sections.Education {
		t.Fatal("expected education visible after add")
	}
	if v.Preview.Progress != 0 {
		t.Fatalf("expected 0 progress before tick, got %d", v.Preview.Progress)
	}
	if v.Preview.Fields.Summary != "x" {
		t.Fatalf("preview text must wait for the tick, got %q", v.Preview.Fields.Summary)
	}
	if !s.Pending() {
		t.Fatal("expected deferred work still pending")
	}
}

func TestTickWithoutPendingWork(t *testing.T) {
	s := newTestSession()
	if n := s.Tick(); n != 0 {
		t.Fatalf("expected 0, got %d", n)
	}
}

func TestViewIsACopy(t *testing.T) {
	s := newTestSession()
	s.Dispatch(AddSkills{Raw: "Go"})
	s.Dispatch(AddEntry{Section: SectionEducation})

	v := s.View()
	v.Preview.Skills[0] = "mutated"
	v.Form.Education[0].Inputs[0].Value = "mutated"

	again := s.View()
	if again.Preview.Skills[0] != "Go" || again.Form.Education[0].Inputs[0].Value != "" {
		t.Fatalf("view shares memory with session:\n%s", spew.Sdump(again))
	}
}
