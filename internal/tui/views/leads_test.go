package views

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abarbosa/atendo/internal/crm"
	"github.com/abarbosa/atendo/internal/loader"
	"github.com/abarbosa/atendo/internal/tui/ui"
)

func leadRows(n int) []crm.ChatLead {
	out := make([]crm.ChatLead, n)
	for i := range out {
		out[i] = crm.ChatLead{
			Phone:     fmt.Sprintf("+5511%07d", i),
			Name:      fmt.Sprintf("Lead %d", i),
			Platforms: []string{"whatsapp"},
		}
	}
	return out
}

func TestLeadTableReportsCursorRowForPaging(t *testing.T) {
	lt := NewLeadTable(ui.DefaultTheme())
	lt.Update(leadRows(30), loader.State{Count: 30, Total: 100, HasMore: true})

	var got []int
	lt.SetOnNearEnd(func(index int) { got = append(got, index) })

	// Row 0 is the header; row 5 is lead index 4.
	lt.Select(5, 0)
	lt.Select(30, 0)

	assert.Equal(t, []int{4, 29}, got)
}

func TestLeadTableHeaderRowNeverReported(t *testing.T) {
	lt := NewLeadTable(ui.DefaultTheme())
	lt.Update(leadRows(3), loader.State{Count: 3, Total: 3})

	fired := false
	lt.SetOnNearEnd(func(int) { fired = true })
	lt.Select(0, 0)

	assert.False(t, fired, "the header row must not trigger paging")
}
