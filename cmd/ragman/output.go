package main

import (
	"fmt"
	"os"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

func colorize(color, text string) string {
	if noColor {
		return text
	}
	return color + text + colorReset
}

// printc writes a colored, prefixed line to stderr, keeping stdout clean for
// command output that callers may pipe.
func printc(color, prefix, format string, args ...any) {
	fmt.Fprintln(os.Stderr, colorize(color, prefix+fmt.Sprintf(format, args...)))
}

func printSuccess(format string, args ...any) { printc(colorGreen, "✓ ", format, args...) }

func printError(format string, args ...any) { printc(colorRed, "✗ ", format, args...) }

func printWarning(format string, args ...any) { printc(colorYellow, "⚠ ", format, args...) }

func printStep(format string, args ...any) { printc(colorCyan, "→ ", format, args...) }

func printStatus(label string, format string, args ...any) {
	l := colorize(colorBold, label+":")
	fmt.Fprintf(os.Stderr, "  %s %s\n", l, fmt.Sprintf(format, args...))
}
