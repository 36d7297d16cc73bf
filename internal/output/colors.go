package output

import (
	"github.com/fatih/color"
)

// ColorHelper provides utilities for coloring run output.
type ColorHelper struct {
	enabled bool
}

// NewColorHelper creates a new color helper.
// Colors are enabled only when outputting to a terminal.
func NewColorHelper() *ColorHelper {
	return &ColorHelper{
		enabled: !color.NoColor,
	}
}

// Success returns green colored text.
func (c *ColorHelper) Success(text string) string {
	if !c.enabled {
		return text
	}
	return color.GreenString(text)
}

// Failure returns red colored text.
func (c *ColorHelper) Failure(text string) string {
	if !c.enabled {
		return text
	}
	return color.RedString(text)
}

// Warning returns yellow colored text.
func (c *ColorHelper) Warning(text string) string {
	if !c.enabled {
		return text
	}
	return color.YellowString(text)
}

// Muted returns gray colored text.
func (c *ColorHelper) Muted(text string) string {
	if !c.enabled {
		return text
	}
	return color.New(color.FgHiBlack).Sprint(text)
}

// Header returns bold blue text for section headers.
func (c *ColorHelper) Header(text string) string {
	if !c.enabled {
		return text
	}
	return color.New(color.FgBlue, color.Bold).Sprint(text)
}

// FormatStatus renders a pass/fail cell.
func (c *ColorHelper) FormatStatus(passed bool) string {
	if passed {
		return c.Success("PASS")
	}
	return c.Failure("FAIL")
}
