package views

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/abarbosa/atendo/internal/crm"
	"github.com/abarbosa/atendo/internal/tui/ui"
)

// Integrations shows the WhatsApp pairing QR and campaign progress.
type Integrations struct {
	*tview.TextView
	theme *ui.Theme
}

// NewIntegrations creates a new integrations view.
func NewIntegrations(theme *ui.Theme) *Integrations {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Integrations ")
	tv.SetTitleColor(theme.TitleColor)

	return &Integrations{
		TextView: tv,
		theme:    theme,
	}
}

// Name implements Component.
func (iv *Integrations) Name() string { return "Integrations" }

// Init implements Component.
func (iv *Integrations) Init() {}

// Start implements Component.
func (iv *Integrations) Start() {}

// Stop implements Component.
func (iv *Integrations) Stop() {}

// Hints implements Component.
func (iv *Integrations) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "g", Description: "Refresh QR"},
		{Key: "C", Description: "Campaign"},
		{Key: "Esc", Description: "Back"},
	}
}

// ShowQR renders the pairing payload as a scannable ASCII QR.
func (iv *Integrations) ShowQR(qr *crm.WhatsAppQR) {
	iv.Clear()
	if qr.Connected {
		_, _ = fmt.Fprint(iv, "\n\n  [green]WhatsApp connected.[-]")
		return
	}

	ascii := renderQR(qr.Code)
	_, _ = fmt.Fprintf(iv, "\n  Scan this QR code with WhatsApp:\n\n%s\n  [::d]Expires %s[-:-:-]", ascii, formatTimestamp(qr.ExpiresAt))
}

// ShowCampaign renders campaign progress.
func (iv *Integrations) ShowCampaign(st *crm.CampaignStatus) {
	iv.Clear()
	_, _ = fmt.Fprintf(iv,
		"\n\n  [::b]%s[-:-:-] (%s)\n\n  state:     %s\n  completed: %d/%d\n  failed:    %d",
		tview.Escape(st.Name), st.ID, st.State, st.Completed, st.Total, st.Failed)
}

// ShowMessage displays a status message.
func (iv *Integrations) ShowMessage(msg string) {
	iv.Clear()
	_, _ = fmt.Fprintf(iv, "\n\n%s", tview.Escape(msg))
}

// renderQR converts a string to a compact ASCII QR code using Unicode
// half-block characters.
func renderQR(content string) string {
	qr, err := qrcode.New(content, qrcode.Low)
	if err != nil {
		return "  (QR generation failed: " + err.Error() + ")"
	}
	qr.DisableBorder = false

	bitmap := qr.Bitmap()
	rows := len(bitmap)
	cols := 0
	if rows > 0 {
		cols = len(bitmap[0])
	}

	var sb strings.Builder

	for y := 0; y < rows; y += 2 {
		sb.WriteString("  ")
		for x := 0; x < cols; x++ {
			top := bitmap[y][x]
			bot := false
			if y+1 < rows {
				bot = bitmap[y+1][x]
			}
			switch {
			case top && bot:
				sb.WriteRune('█')
			case top && !bot:
				sb.WriteRune('▀')
			case !top && bot:
				sb.WriteRune('▄')
			default:
				sb.WriteRune(' ')
			}
		}
		sb.WriteRune('\n')
	}

	return sb.String()
}
