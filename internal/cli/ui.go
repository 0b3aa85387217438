package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/example/esbot/pkg/models"
)

const lineWidth = 60

// ErrInputClosed is returned when the input stream ends
var ErrInputClosed = errors.New("input closed")

// UI writes formatted text to the terminal and reads the learner's answers
type UI struct {
	in  *bufio.Reader
	out io.Writer

	header  *color.Color
	section *color.Color
	success *color.Color
	failure *color.Color
	warning *color.Color
	info    *color.Color
	accent  *color.Color
	star    *color.Color
}

// NewUI creates a terminal UI. noColor strips all escape codes.
func NewUI(in io.Reader, out io.Writer, noColor bool) *UI {
	u := &UI{
		in:      bufio.NewReader(in),
		out:     out,
		header:  color.New(color.FgYellow, color.Bold),
		section: color.New(color.FgCyan),
		success: color.New(color.FgGreen),
		failure: color.New(color.FgRed),
		warning: color.New(color.FgYellow),
		info:    color.New(color.FgCyan),
		accent:  color.New(color.FgMagenta),
		star:    color.New(color.FgYellow),
	}
	if noColor {
		for _, c := range []*color.Color{u.header, u.section, u.success, u.failure, u.warning, u.info, u.accent, u.star} {
			c.DisableColor()
		}
	}
	return u
}

// Println writes a plain line
func (u *UI) Println(a ...any) {
	fmt.Fprintln(u.out, a...)
}

// Header prints a centered title between two rules
func (u *UI) Header(text string) {
	rule := strings.Repeat("=", lineWidth)
	u.Println()
	u.Println(u.header.Sprint(rule))
	u.Println(u.header.Sprint(center(text, lineWidth)))
	u.Println(u.header.Sprint(rule))
}

// Section prints an underlined section title
func (u *UI) Section(text string) {
	u.Println()
	u.Println(u.section.Sprint(text))
	u.Println(u.section.Sprint(strings.Repeat("-", len([]rune(text)))))
}

// Success prints a green line
func (u *UI) Success(text string) { u.Println(u.success.Sprint(text)) }

// Error prints a red line
func (u *UI) Error(text string) { u.Println(u.failure.Sprint(text)) }

// Warning prints a yellow line
func (u *UI) Warning(text string) { u.Println(u.warning.Sprint(text)) }

// Info prints a cyan line
func (u *UI) Info(text string) { u.Println(u.info.Sprint(text)) }

// Highlight prints a magenta line
func (u *UI) Highlight(text string) { u.Println(u.accent.Sprint(text)) }

// MenuOption prints a numbered menu entry
func (u *UI) MenuOption(n int, text string) {
	u.Println(u.info.Sprintf("%d. ", n) + text)
}

// Mastery renders a level as filled and empty stars
func (u *UI) Mastery(level int) string {
	level = models.ClampLevel(level)
	return u.star.Sprint(strings.Repeat("★", level)) + strings.Repeat("☆", models.MaxMasteryLevel-level)
}

// Prompt prints msg and returns the trimmed line the learner typed
func (u *UI) Prompt(msg string) (string, error) {
	fmt.Fprint(u.out, msg)
	line, err := u.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read input: %w", err)
		}
		if line == "" {
			return "", ErrInputClosed
		}
	}
	return strings.TrimSpace(line), nil
}

// Pause waits for Enter
func (u *UI) Pause(msg string) error {
	_, err := u.Prompt("\n" + msg)
	return err
}

// Choose asks for a number in [1, n] until a valid one is entered
func (u *UI) Choose(msg string, n int) (int, error) {
	for {
		answer, err := u.Prompt(msg)
		if err != nil {
			return 0, err
		}
		choice, err := strconv.Atoi(answer)
		if err != nil {
			u.Error("Please enter a number.")
			continue
		}
		if choice < 1 || choice > n {
			u.Error("Invalid choice. Please try again.")
			continue
		}
		return choice, nil
	}
}

// Confirm asks a y/n question until one of the two is entered
func (u *UI) Confirm(msg string) (bool, error) {
	for {
		answer, err := u.Prompt(msg)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		u.Error("Please enter 'y' or 'n'")
	}
}

func center(text string, width int) string {
	n := len([]rune(text))
	if n >= width {
		return text
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + text
}
