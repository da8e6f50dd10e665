package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles holds the lipgloss styles used by text output.
type Styles struct {
	Header1  lipgloss.Style
	Header2  lipgloss.Style
	Bold     lipgloss.Style
	Muted    lipgloss.Style
	StepName lipgloss.Style
	Live     lipgloss.Style
	Dead     lipgloss.Style
	External lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Info     lipgloss.Style
}

// NewStyles returns styles bound to w. Off a terminal they render plain
// text.
func NewStyles(w io.Writer, isTTY bool) *Styles {
	var re *lipgloss.Renderer
	if isTTY {
		re = lipgloss.NewRenderer(w, termenv.WithTTY(true))
	} else {
		re = lipgloss.NewRenderer(w, termenv.WithProfile(termenv.Ascii))
	}

	return &Styles{
		Header1:  re.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Header2:  re.NewStyle().Bold(true),
		Bold:     re.NewStyle().Bold(true),
		Muted:    re.NewStyle().Foreground(lipgloss.Color("8")),
		StepName: re.NewStyle().Foreground(lipgloss.Color("14")),
		Live:     re.NewStyle().Foreground(lipgloss.Color("10")),
		Dead:     re.NewStyle().Foreground(lipgloss.Color("8")).Strikethrough(true),
		External: re.NewStyle().Foreground(lipgloss.Color("13")),
		Success:  re.NewStyle().Foreground(lipgloss.Color("10")),
		Warning:  re.NewStyle().Foreground(lipgloss.Color("11")),
		Error:    re.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Info:     re.NewStyle().Foreground(lipgloss.Color("12")),
	}
}
