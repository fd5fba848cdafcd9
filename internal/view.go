package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const (
	screenWidth = 60
	barWidth    = 40
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true).
			Align(lipgloss.Center)

	timerDisplayStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("69")).
				Bold(true)

	blockingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			Bold(true)

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	idleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170"))

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240"))

	mainBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	pauseBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	emptyBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("237"))
)

// formatDuration renders m:ss, or h:mm:ss past an hour.
func formatDuration(d time.Duration) string {
	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// progressBar draws a bar that drains from right to left as fraction drops.
func progressBar(fraction float64, style lipgloss.Style) string {
	fraction = min(max(fraction, 0), 1)
	filled := int(fraction*float64(barWidth) + 0.5)
	return style.Render(strings.Repeat("█", filled)) +
		emptyBarStyle.Render(strings.Repeat("░", barWidth-filled))
}

func (m *Model) unblockedView() string {
	var sb strings.Builder
	sb.WriteString(idleStyle.Render("Sites are not blocked"))
	sb.WriteString("\n\n")
	sb.WriteString(helpStyle.Render("Enter minutes to start blocking"))
	sb.WriteString("\n\n")
	sb.WriteString(m.inputLine(fmt.Sprintf("%g", m.Defaults.BlockMinutes)))

	return m.frame(sb.String(), "Go: Enter | Quit: q")
}

func (m *Model) blockingView() string {
	now := m.now()
	remaining := m.Status.Remaining(now)
	total := m.Status.Duration()

	var sb strings.Builder
	sb.WriteString(blockingStyle.Render(blockedSummary(m.Sites)))
	sb.WriteString("\n\n")
	sb.WriteString(helpStyle.Render("Blocking time remaining"))
	sb.WriteString("\n")
	sb.WriteString(timerDisplayStyle.Render(formatDuration(remaining)))
	sb.WriteString("\n")
	sb.WriteString(progressBar(ratio(remaining, total), mainBarStyle))
	sb.WriteString("\n\n")
	sb.WriteString(m.inputLine("temp unblock mins"))

	return m.frame(sb.String(), "Unblock: Enter | Quit: q")
}

func (m *Model) pausedView() string {
	now := m.now()
	mainRemaining := m.Status.Remaining(now)
	pauseRemaining := m.Status.PauseRemaining(now)

	var sb strings.Builder
	sb.WriteString(pausedStyle.Render("Temporarily unblocked (blocking paused)"))
	sb.WriteString("\n\n")
	sb.WriteString(helpStyle.Render("Temp unblock time remaining"))
	sb.WriteString("\n")
	sb.WriteString(timerDisplayStyle.Render(formatDuration(pauseRemaining)))
	sb.WriteString("\n")
	sb.WriteString(progressBar(ratio(pauseRemaining, m.pauseTotal), pauseBarStyle))
	sb.WriteString("\n")
	sb.WriteString(progressBar(ratio(mainRemaining, m.Status.Duration()), mainBarStyle))
	sb.WriteString(helpStyle.Render(" " + formatDuration(mainRemaining) + " left"))
	sb.WriteString("\n\n")
	sb.WriteString(m.inputLine("extend mins"))

	return m.frame(sb.String(), "Extend: Enter | Resume now: r | Quit: q")
}

func (m *Model) inputLine(placeholder string) string {
	label := inputStyle.Render("→ Minutes: ")
	if m.MinutesInput == "" {
		return label + inputPlaceholderStyle.Render(placeholder) + inputStyle.Render("█")
	}
	return label + inputStyle.Render(m.MinutesInput+"█")
}

func (m *Model) frame(body, help string) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Width(screenWidth).Render("Site Blocker"))
	sb.WriteString("\n\n")
	sb.WriteString(boxStyle.Width(screenWidth).Render(body))
	sb.WriteString("\n")
	if m.Err != nil {
		sb.WriteString(errorStyle.Render("Error: " + m.Err.Error()))
		sb.WriteString("\n")
	}
	sb.WriteString(helpStyle.Render(help))
	return sb.String()
}

// blockedSummary names the first two sites, e.g. "linkedin.com & youtube.com
// blocked (+9 more)".
func blockedSummary(sites []string) string {
	switch len(sites) {
	case 0:
		return "Sites blocked"
	case 1:
		return sites[0] + " blocked"
	case 2:
		return sites[0] + " & " + sites[1] + " blocked"
	}
	return fmt.Sprintf("%s & %s blocked (+%d more)", sites[0], sites[1], len(sites)-2)
}

func ratio(part, total time.Duration) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total)
}
