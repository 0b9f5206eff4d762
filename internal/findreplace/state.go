package findreplace

import "fmt"

// Mode selects which rows the panel shows.
type Mode int

const (
	ModeFind Mode = iota
	ModeReplace
)

func (m Mode) String() string {
	if m == ModeReplace {
		return "replace"
	}
	return "find"
}

// PanelState is pushed to the view on every render. The view keeps no state
// of its own beyond in-progress input.
type PanelState struct {
	Open        bool
	Mode        Mode
	Query       string
	Active      int
	Count       int
	CustomClass string
	PrevIcon    string
	NextIcon    string
}

// Counter renders the result counter, "n/m" with n one-based, or "0/0".
func (s PanelState) Counter() string {
	if s.Count == 0 {
		return "0/0"
	}
	return fmt.Sprintf("%d/%d", s.Active+1, s.Count)
}

// View presents the panel.
type View interface {
	Update(state PanelState)
	Destroy()
}

// Intents are the user actions a view forwards to the controller.
type Intents interface {
	OnQueryChange(query string)
	Step(dir int)
	ReplaceCurrent(value string) error
	ReplaceAll(value string) error
	ToggleMode()
	Hide()
}

var _ Intents = (*Controller)(nil)
