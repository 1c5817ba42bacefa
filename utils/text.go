package utils

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/unicode/norm"
)

// CleanText trims s and composes it to NFC so accented text compares equal
// no matter how the page encoded it.
func CleanText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// Truncate shortens s to width terminal columns for log lines.
func Truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}
