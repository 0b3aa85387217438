package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUI(input string) (*UI, *bytes.Buffer) {
	var out bytes.Buffer
	return NewUI(strings.NewReader(input), &out, true), &out
}

func TestChoose_RepromptsOnInvalidInput(t *testing.T) {
	ui, out := newTestUI("abc\n0\n7\n2\n")

	choice, err := ui.Choose("Pick: ", 3)
	require.NoError(t, err)
	assert.Equal(t, 2, choice)
	assert.Equal(t, 1, strings.Count(out.String(), "Please enter a number."))
	assert.Equal(t, 2, strings.Count(out.String(), "Invalid choice. Please try again."))
}

func TestConfirm(t *testing.T) {
	ui, out := newTestUI("maybe\nY\nno\n")

	yes, err := ui.Confirm("Right? ")
	require.NoError(t, err)
	assert.True(t, yes)
	assert.Contains(t, out.String(), "Please enter 'y' or 'n'")

	yes, err = ui.Confirm("Right? ")
	require.NoError(t, err)
	assert.False(t, yes)
}

func TestPrompt_LastLineWithoutNewline(t *testing.T) {
	ui, _ := newTestUI("  hola  ")

	answer, err := ui.Prompt("> ")
	require.NoError(t, err)
	assert.Equal(t, "hola", answer)

	_, err = ui.Prompt("> ")
	assert.True(t, errors.Is(err, ErrInputClosed))
}

func TestMastery(t *testing.T) {
	ui, _ := newTestUI("")

	assert.Equal(t, "☆☆☆☆☆", ui.Mastery(0))
	assert.Equal(t, "★★★☆☆", ui.Mastery(3))
	assert.Equal(t, "★★★★★", ui.Mastery(9))
}

func TestHeader_NoColor(t *testing.T) {
	ui, out := newTestUI("")

	ui.Header("MENU")
	assert.NotContains(t, out.String(), "\x1b[")
	assert.Contains(t, out.String(), strings.Repeat("=", lineWidth))
	assert.Contains(t, out.String(), "MENU")
}
