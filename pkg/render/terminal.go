package render

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorMode selects whether terminal output is coloured.
type ColorMode int

const (
	// ColorAuto colours output when stdout is a terminal.
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

func ParseColorMode(s string) ColorMode {
	switch s {
	case "always":
		return ColorAlways
	case "never":
		return ColorNever
	default:
		return ColorAuto
	}
}

// Terminal prints embeds as plain text.
type Terminal struct {
	title  *color.Color
	muted  *color.Color
	high   *color.Color
	low    *color.Color
	footer *color.Color
}

func NewTerminal(mode ColorMode) *Terminal {
	use := false
	switch mode {
	case ColorAlways:
		use = true
	case ColorAuto:
		use = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}

	t := &Terminal{
		title:  color.New(color.FgCyan, color.Bold),
		muted:  color.New(color.FgHiBlack),
		high:   color.New(color.FgBlue, color.Bold),
		low:    color.New(color.FgYellow),
		footer: color.New(color.FgHiBlack),
	}
	for _, c := range []*color.Color{t.title, t.muted, t.high, t.low, t.footer} {
		if use {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return t
}

// Write prints e to w.
func (t *Terminal) Write(w io.Writer, e Embed) error {
	if _, err := t.title.Fprintln(w, e.Title); err != nil {
		return err
	}
	if e.Description != "" {
		if _, err := t.muted.Fprintln(w, e.Description); err != nil {
			return err
		}
	}
	for _, f := range e.Fields {
		c := t.low
		if len(f.Name) > 4 && f.Name[:4] == "High" {
			c = t.high
		}
		if _, err := fmt.Fprintf(w, "  %s  %s\n", c.Sprint(f.Name), f.Value); err != nil {
			return err
		}
	}
	if e.Footer != "" {
		if _, err := t.footer.Fprintln(w, e.Footer); err != nil {
			return err
		}
	}
	return nil
}
