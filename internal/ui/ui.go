// Package ui renders parse results for the terminal.
package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/drdon1234/weibo-parser/internal/media"
)

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Width(10)
	kindStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	urlStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Styled reports whether styled output makes sense for stdout.
func Styled() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// RenderResult formats a parsed record for terminal display.
func RenderResult(m *media.ParsedMedia, styled bool) string {
	var b strings.Builder

	row := func(label, value string) {
		if value == "" {
			return
		}
		if styled {
			fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(label), value)
		} else {
			fmt.Fprintf(&b, "%-10s %s\n", label, value)
		}
	}

	kind := m.Kind.String()
	if styled {
		kind = kindStyle.Render(kind)
	}

	row("url", m.SourceURL)
	row("type", kind)
	row("author", m.Author)
	row("desc", m.Description)
	row("date", m.PublishedAt)
	for i, u := range m.MediaURLs {
		label := fmt.Sprintf("media[%d]", i)
		if styled {
			u = urlStyle.Render(u)
		}
		row(label, u)
	}

	return b.String()
}
