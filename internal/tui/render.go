package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/PabloGalante/agent-chat/internal/domain"
)

// hyperlink wraps text in an OSC 8 escape so terminals that support it
// make the text clickable.
func hyperlink(url, text string) string {
	return "\x1b]8;;" + url + "\x1b\\" + text + "\x1b]8;;\x1b\\"
}

func roleLabel(r domain.Role) string {
	switch r {
	case domain.RoleUser:
		return userRoleStyle.Render("you")
	case domain.RoleAgent:
		return agentRoleStyle.Render("agent")
	default:
		return systemRoleStyle.Render("system")
	}
}

// renderMessages lays out the whole timeline for the viewport.
func renderMessages(msgs []*domain.Message, width int) string {
	if len(msgs) == 0 {
		return dimStyle.Render("Say hello to the agent. Ask it to \"design a ...\" to get a visual.")
	}

	body := lipgloss.NewStyle().Width(max(width-2, 20))

	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(roleLabel(m.Role))
		b.WriteString(" ")
		b.WriteString(dimStyle.Render(m.CreatedAt.Format("15:04:05")))
		b.WriteString("\n")
		b.WriteString(body.Render(m.Content))

		if m.HasVisual() {
			b.WriteString("\n")
			b.WriteString(visualStyle.Render("🖼  preview: " + m.VisualOutputURL))
			b.WriteString("\n")
			b.WriteString(hyperlink(m.VisualOutputURL, visualStyle.Render("↗ open full resource")))
		}
	}
	return b.String()
}

// formatLine is the plain-text rendering used by line mode.
func formatLine(m *domain.Message) string {
	line := fmt.Sprintf("[%s] %s", m.Role, m.Content)
	if m.HasVisual() {
		line += "\n    visual: " + m.VisualOutputURL
	}
	return line
}
