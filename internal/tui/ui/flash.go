package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/rivo/tview"
)

// FlashLevel is the severity of a transient notification.
type FlashLevel int

const (
	FlashInfo FlashLevel = iota
	FlashWarn
	FlashErr
)

// Flash messages auto-expire; errors linger longest so they survive a
// redraw burst.
const (
	flashInfoTTL = 5 * time.Second
	flashWarnTTL = 8 * time.Second
	flashErrTTL  = 10 * time.Second
)

// FlashMessage is one notification with its expiry.
type FlashMessage struct {
	Text    string
	Level   FlashLevel
	Expires time.Time
}

// FlashModel holds the latest notification. Only one message is visible
// at a time; a newer one replaces the old immediately.
type FlashModel struct {
	mu      sync.RWMutex
	current FlashMessage
	watchCh chan FlashMessage
}

// NewFlashModel creates an empty flash model.
func NewFlashModel() *FlashModel {
	return &FlashModel{watchCh: make(chan FlashMessage, 8)}
}

// Info posts an informational message.
func (f *FlashModel) Info(msg string) { f.post(msg, FlashInfo, flashInfoTTL) }

// Warn posts a warning.
func (f *FlashModel) Warn(msg string) { f.post(msg, FlashWarn, flashWarnTTL) }

// Err posts an error.
func (f *FlashModel) Err(err error) { f.post(err.Error(), FlashErr, flashErrTTL) }

func (f *FlashModel) post(msg string, level FlashLevel, ttl time.Duration) {
	fm := FlashMessage{Text: msg, Level: level, Expires: time.Now().Add(ttl)}
	f.mu.Lock()
	f.current = fm
	f.mu.Unlock()
	select {
	case f.watchCh <- fm:
	default:
	}
}

// GetMessage returns the live message, or nil once it has expired.
func (f *FlashModel) GetMessage() *FlashMessage {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if time.Now().After(f.current.Expires) {
		return nil
	}
	m := f.current
	return &m
}

// Watch returns a channel receiving each posted message. Used by the app
// shell to trigger a redraw without polling.
func (f *FlashModel) Watch() <-chan FlashMessage {
	return f.watchCh
}

// FlashBar renders the current flash message at the bottom of the screen.
type FlashBar struct {
	*tview.TextView
	theme *Theme
}

// NewFlashBar creates the flash bar widget.
func NewFlashBar(theme *Theme) *FlashBar {
	tv := tview.NewTextView().SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	return &FlashBar{TextView: tv, theme: theme}
}

// Update redraws the bar for msg; nil clears it.
func (fb *FlashBar) Update(msg *FlashMessage) {
	fb.Clear()
	if msg == nil {
		return
	}
	color := fb.theme.FlashInfoColor
	switch msg.Level {
	case FlashWarn:
		color = fb.theme.FlashWarnColor
	case FlashErr:
		color = fb.theme.FlashErrColor
	}
	_, _ = fmt.Fprintf(fb, " [%s]%s[-]", colorName(color), msg.Text)
}
