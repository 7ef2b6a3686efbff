package builder

// Command is a user action consumed by Session.Dispatch.
type Command interface {
	Name() string
}

// SetField reports the current raw value of a basic input.
type SetField struct {
	Field Field
	Value string
}

// AddSkills is the explicit "add" action on the skill input. Raw is the
// input text at the moment of the action.
type AddSkills struct {
	Raw string
}

// SkillKey is a keypress on the skill input. Input is the input text after
// the key; Enter triggers AddSkills.
type SkillKey struct {
	Key   string
	Input string
}

// RemoveSkill removes the skill at a tag position.
type RemoveSkill struct {
	Index int
}

// AddEntry appends an empty entry to a list.
type AddEntry struct {
	Section Section
}

// EditEntry reports a change of one control in an entry group.
type EditEntry struct {
	Section Section
	ID      string
	Field   string
	Value   string
}

// UpdateEntry reports the whole content of an entry group. Fields absent
// from Values are treated as empty controls.
type UpdateEntry struct {
	Section Section
	ID      string
	Values  map[string]string
}

// RemoveEntry deletes the entry with ID from a list.
type RemoveEntry struct {
	Section Section
	ID      string
}

// Reset clears the whole form.
type Reset struct{}

// KeyEnter is the key name that submits the skill input.
const KeyEnter = "Enter"

func (SetField) Name() string    { return "setField" }
func (AddSkills) Name() string   { return "addSkills" }
func (SkillKey) Name() string    { return "skillKey" }
func (RemoveSkill) Name() string { return "removeSkill" }
func (AddEntry) Name() string    { return "addEntry" }
func (EditEntry) Name() string   { return "editEntry" }
func (UpdateEntry) Name() string { return "updateEntry" }
func (RemoveEntry) Name() string { return "removeEntry" }
func (Reset) Name() string       { return "reset" }

// Result describes the outcome of one dispatched command.
type Result struct {
	// Changed is false when the command was a no-op.
	Changed bool `json:"changed"`
	// CreatedID is the id of the entry created by AddEntry.
	CreatedID string `json:"createdId,omitempty"`
	// PreventDefault asks the surface to suppress the native form submission.
	PreventDefault bool `json:"preventDefault,omitempty"`
	// Pending is true when deferred work waits for the next Tick.
	Pending bool `json:"pending,omitempty"`
}
