package ui

// MenuHint is one keyboard shortcut shown in the menu bar. Numeric hints
// render in their own color, matching the crumb accent.
type MenuHint struct {
	Key         string
	Description string
	Numeric     bool
}

// Component is the lifecycle every dashboard view implements. Init wires
// widgets once, Start/Stop bracket visibility, Hints feeds the menu bar.
type Component interface {
	Name() string
	Init()
	Start()
	Stop()
	Hints() []MenuHint
}
