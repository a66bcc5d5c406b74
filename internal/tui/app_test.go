package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abarbosa/atendo/internal/tui/ui"
)

func TestRecoverToFlashSwallowsHandlerPanic(t *testing.T) {
	flash := ui.NewFlashModel()

	func() {
		defer recoverToFlash(zap.NewNop(), flash)
		panic("row index out of range")
	}()

	msg := flash.GetMessage()
	require.NotNil(t, msg, "a recovered panic must surface on the flash bar")
	assert.Equal(t, ui.FlashWarn, msg.Level)
	assert.Contains(t, msg.Text, "row index out of range")
}

func TestRecoverToFlashNoopWithoutPanic(t *testing.T) {
	flash := ui.NewFlashModel()

	func() {
		defer recoverToFlash(zap.NewNop(), flash)
	}()

	assert.Nil(t, flash.GetMessage())
}
