package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary values
	colorGreen  = lipgloss.Color("35")  // Green - success / craft
	colorYellow = lipgloss.Color("220") // Amber - warnings / vendor
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - market buys
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

var (
	styleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	styleNumber    = lipgloss.NewStyle().Foreground(colorCyan)
	styleDim       = lipgloss.NewStyle().Foreground(colorDim)
	styleWarning   = lipgloss.NewStyle().Foreground(colorYellow)
	styleCraft     = lipgloss.NewStyle().Foreground(colorGreen)
	styleMarket    = lipgloss.NewStyle().Foreground(colorBlue)
	styleVendor    = lipgloss.NewStyle().Foreground(colorYellow)
	styleGil       = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconError = lipgloss.NewStyle().Foreground(colorRed)
	styleIconOK    = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconInfo  = lipgloss.NewStyle().Foreground(colorGray)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	fmt.Println(styleIconOK.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

// printError prints an error message.
func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	fmt.Println(styleWarning.Render(iconWarning) + " " + styleWarning.Render(fmt.Sprintf(format, args...)))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented detail line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + styleDim.Render(fmt.Sprintf(format, args...)))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(14)
	fmt.Println(keyStyle.Render(key) + " " + styleValue.Render(value))
}

// printNewline prints an empty line.
func printNewline() {
	fmt.Println()
}

// gil formats a gil amount with a thousands separator.
func gil(amount int64) string {
	if amount == 0 {
		return "-"
	}
	return styleGil.Render(groupDigits(amount) + "g")
}

// groupDigits inserts commas into an integer's decimal form.
func groupDigits(n int64) string {
	raw := fmt.Sprintf("%d", n)
	neg := false
	if raw[0] == '-' {
		neg = true
		raw = raw[1:]
	}

	var out []byte
	for i, c := range []byte(raw) {
		if i > 0 && (len(raw)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
