package task

import "github.com/charmbracelet/lipgloss"

var (
	salmonPink = lipgloss.Color("#FFB3BA")
	mintGreen  = lipgloss.Color("#A8E6CF")
	skyBlue    = lipgloss.Color("#A0C4FF")
	mutedGray  = lipgloss.Color("#6B7280")
)

// styles are bound to the output's renderer so colour is only emitted when
// the writer is a terminal.
type styles struct {
	header   lipgloss.Style
	step     lipgloss.Style
	thinking lipgloss.Style
	tool     lipgloss.Style
	result   lipgloss.Style
	err      lipgloss.Style
	final    lipgloss.Style
	muted    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		header:   r.NewStyle().Foreground(salmonPink).Bold(true),
		step:     r.NewStyle().Foreground(skyBlue),
		thinking: r.NewStyle().Foreground(mutedGray).Italic(true),
		tool:     r.NewStyle().Foreground(mintGreen).Bold(true),
		result:   r.NewStyle().Foreground(mutedGray),
		err:      r.NewStyle().Foreground(salmonPink),
		final: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mintGreen).
			Padding(0, 1),
		muted: r.NewStyle().Foreground(mutedGray),
	}
}
