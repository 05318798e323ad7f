// Package ux provides styled terminal output for the citegraph CLI.
package ux

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/adalundhe/citegraph/core/scholar"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Palette shared with the rendered graph artifacts.
var (
	ColorAccent  = lipgloss.Color("#0066ff") // seed border blue
	ColorSky     = lipgloss.Color("#4d94ff") // lighter accent for headings
	ColorSuccess = lipgloss.Color("#2ecc71")
	ColorWarning = lipgloss.Color("#f4d03f")
	ColorError   = lipgloss.Color("#e74c3c")
	ColorMuted   = lipgloss.Color("#888888") // node border grey
)

// Styles provides pre-configured lipgloss styles.
var Styles = struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Highlight lipgloss.Style
	Header    lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorSky),
	Subtitle:  lipgloss.NewStyle().Foreground(ColorAccent),
	Bold:      lipgloss.NewStyle().Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(ColorMuted),
	Success:   lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning:   lipgloss.NewStyle().Foreground(ColorWarning),
	Error:     lipgloss.NewStyle().Foreground(ColorError),
	Highlight: lipgloss.NewStyle().Foreground(ColorSky).Bold(true),
	Header:    lipgloss.NewStyle().Bold(true).Foreground(ColorMuted),
}

// Icon provides themed status icons.
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconArrow   Icon = "→"
	IconBullet  Icon = "•"
)

// Render returns the icon with appropriate styling.
func (i Icon) Render() string {
	switch i {
	case IconSuccess:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	default:
		return string(i)
	}
}

var interactive = term.IsTerminal(int(os.Stdout.Fd()))

// SetInteractive overrides terminal detection. Piped output and tests
// use it to force plain text.
func SetInteractive(on bool) { interactive = on }

// Interactive reports whether styled output is active.
func Interactive() bool { return interactive }

// Title prints a styled heading.
func Title(text string) {
	if !interactive {
		fmt.Println(text)
		return
	}
	fmt.Println(Styles.Title.Render(text))
}

// Success prints a success message with checkmark.
func Success(text string) {
	if !interactive {
		fmt.Printf("OK: %s\n", text)
		return
	}
	fmt.Printf("%s %s\n", IconSuccess.Render(), Styles.Success.Render(text))
}

// Warning prints a warning message to stderr.
func Warning(text string) {
	if !interactive {
		fmt.Fprintf(os.Stderr, "WARN: %s\n", text)
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", IconWarning.Render(), Styles.Warning.Render(text))
}

// Error prints an error message.
func Error(text string) {
	if !interactive {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", text)
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", IconError.Render(), Styles.Error.Render(text))
}

// Info prints an informational line.
func Info(text string) {
	if !interactive {
		fmt.Println(text)
		return
	}
	fmt.Printf("%s %s\n", Styles.Muted.Render("│"), text)
}

// Muted prints secondary text.
func Muted(text string) {
	if !interactive {
		fmt.Println(text)
		return
	}
	fmt.Println(Styles.Muted.Render(text))
}

const tableTitleRunes = 50

// RelationTable formats relation records as an aligned table with one
// row per record.
func RelationTable(entries []scholar.RelationEntry) string {
	var b strings.Builder

	header := fmt.Sprintf("%-4s %-6s %-10s %-4s %s", "#", "Year", "Citations", "Inf", "Title")
	if interactive {
		header = Styles.Header.Render(header)
	}
	b.WriteString(header)
	b.WriteByte('\n')

	for i, entry := range entries {
		year := "N/A"
		if entry.Paper.HasYear() {
			year = strconv.Itoa(entry.Paper.Year)
		}
		influential := "No"
		if entry.Influential {
			influential = "Yes"
		}
		title := entry.Paper.Title
		if title == "" {
			title = "Unknown"
		}
		if runes := []rune(title); len(runes) > tableTitleRunes {
			title = string(runes[:tableTitleRunes])
		}
		b.WriteString(fmt.Sprintf("%-4d %-6s %-10d %-4s %s\n", i+1, year, entry.Paper.Citations, influential, title))
	}
	return b.String()
}
