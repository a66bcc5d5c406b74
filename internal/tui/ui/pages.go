package ui

import "github.com/rivo/tview"

// Pages layers the dashboard's screens as a stack on top of tview.Pages:
// Push overlays a screen, Pop returns to the one beneath, Reset rebases
// the stack on a single root screen. The crumbs bar renders the stack.
type Pages struct {
	*tview.Pages
	stack    []string
	onChange func(stack []string)
}

// NewPages creates an empty page stack.
func NewPages() *Pages {
	return &Pages{Pages: tview.NewPages()}
}

// SetOnChange registers a callback fired after every stack mutation.
func (p *Pages) SetOnChange(fn func(stack []string)) {
	p.onChange = fn
}

// Push shows the named page on top of the current one.
func (p *Pages) Push(name string) {
	if top := p.Current(); top != "" {
		p.HidePage(top)
	}
	p.stack = append(p.stack, name)
	p.raise(name)
	p.notify()
}

// Pop hides the top page and reveals the one beneath it. It returns the
// popped page's name, or "" when the stack is already empty.
func (p *Pages) Pop() string {
	if len(p.stack) == 0 {
		return ""
	}
	top := p.Current()
	p.HidePage(top)
	p.stack = p.stack[:len(p.stack)-1]
	if below := p.Current(); below != "" {
		p.raise(below)
	}
	p.notify()
	return top
}

// Reset discards the whole stack and shows only the given page.
func (p *Pages) Reset(name string) {
	for _, n := range p.stack {
		p.HidePage(n)
	}
	p.stack = p.stack[:0]
	p.stack = append(p.stack, name)
	p.raise(name)
	p.notify()
}

// Current returns the top page name, or "" for an empty stack.
func (p *Pages) Current() string {
	if len(p.stack) == 0 {
		return ""
	}
	return p.stack[len(p.stack)-1]
}

// Stack returns a copy of the page stack, bottom first.
func (p *Pages) Stack() []string {
	out := make([]string, len(p.stack))
	copy(out, p.stack)
	return out
}

// Depth reports how many pages are stacked.
func (p *Pages) Depth() int {
	return len(p.stack)
}

func (p *Pages) raise(name string) {
	p.ShowPage(name)
	p.SendToFront(name)
}

func (p *Pages) notify() {
	if p.onChange != nil {
		p.onChange(p.Stack())
	}
}
