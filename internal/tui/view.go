package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/spec-kit/slackbot-settings/internal/roster"
)

var (
	sectionTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).MarginTop(1)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Width(18)
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	selectedRow  = lipgloss.NewStyle().Bold(true)
	activeField  = lipgloss.NewStyle().Reverse(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
	cellStyle    = lipgloss.NewStyle().Width(24).MaxWidth(24)
)

func (a *App) View() string {
	var b strings.Builder

	b.WriteString(sectionTitle.Render("Storage State"))
	b.WriteString("\n")
	b.WriteString(a.renderStats())

	b.WriteString(sectionTitle.Render("Update Data"))
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("u upload Slack JSON exports · x delete messages in a date range"))
	b.WriteString("\n")

	b.WriteString(sectionTitle.Render(fmt.Sprintf("Task Escalation [%s]", a.editor.Mode())))
	b.WriteString("\n")
	b.WriteString(a.renderRoster())

	if a.prompt != promptNone {
		b.WriteString("\n")
		b.WriteString(a.input.View())
		b.WriteString("\n")
		b.WriteString(hintStyle.Render("enter confirm · esc cancel"))
	}

	b.WriteString("\n")
	b.WriteString(a.renderStatus())
	b.WriteString("\n")
	b.WriteString(hintStyle.Render(a.helpLine()))
	return b.String()
}

func (a *App) renderStats() string {
	if a.statsErr != "" {
		return errStyle.Render(a.statsErr) + "\n"
	}
	dateRange := a.stats.DateRange
	if dateRange == "" {
		dateRange = "no messages stored"
	}
	lastUpload := a.stats.LastUpload
	if lastUpload == "" {
		lastUpload = "never"
	}
	usage := a.stats.AWSUsage
	if usage == "" {
		usage = "0 B"
	}
	rows := []string{
		labelStyle.Render("Messages stored") + dateRange,
		labelStyle.Render("Threads") + fmt.Sprint(a.stats.ThreadCount),
		labelStyle.Render("Storage usage") + usage,
		labelStyle.Render("Last upload") + lastUpload,
	}
	return strings.Join(rows, "\n") + "\n"
}

func (a *App) renderRoster() string {
	members := a.editor.Snapshot()
	editing := a.editor.Mode() == roster.Editing
	if len(members) == 0 {
		if editing {
			return hintStyle.Render("No staff yet. Press a to add one.") + "\n"
		}
		return hintStyle.Render("No staff members.") + "\n"
	}

	var b strings.Builder
	header := cellStyle.Render("Name") + cellStyle.Render("Account ID") + "Tasks"
	b.WriteString(hintStyle.Render(header))
	b.WriteString("\n")
	for i, m := range members {
		cells := []string{m.Name, m.AccountID, m.Tasks}
		cursor := "  "
		if i == a.selected {
			cursor = "> "
		}
		var row strings.Builder
		row.WriteString(cursor)
		for f, value := range cells {
			if value == "" && editing {
				value = "-"
			}
			style := cellStyle
			if f == len(cells)-1 {
				style = lipgloss.NewStyle()
			}
			if editing && i == a.selected && f == a.field {
				value = activeField.Render(value)
			}
			row.WriteString(style.Render(value))
		}
		line := row.String()
		if i == a.selected {
			line = selectedRow.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (a *App) renderStatus() string {
	switch {
	case a.busy != "":
		return hintStyle.Render(a.busy)
	case a.status == "":
		return ""
	case a.statusErr:
		return errStyle.Render(a.status)
	default:
		return okStyle.Render(a.status)
	}
}

func (a *App) helpLine() string {
	if a.editor.Mode() == roster.Editing {
		return "↑/↓ select · tab field · enter edit · a add · d delete · e done · s submit · q quit"
	}
	return "e edit · s submit · r reload · g refresh stats · u upload · x delete range · q quit"
}
