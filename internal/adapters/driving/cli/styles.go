package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"
)

// Palette shared by every styled listing.
var (
	colourPrimary = lipgloss.Color("#7C3AED")
	colourMuted   = lipgloss.Color("#6C7086")
	colourSuccess = lipgloss.Color("#A6E3A1")
	colourError   = lipgloss.Color("#F38BA8")
	colourBorder  = lipgloss.Color("#45475A")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colourPrimary)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(colourPrimary).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle   = lipgloss.NewStyle().Foreground(colourMuted)
	successStyle = lipgloss.NewStyle().Foreground(colourSuccess)
	errorStyle   = lipgloss.NewStyle().Foreground(colourError)
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// paint renders s with style when w is a terminal.
func paint(w io.Writer, style lipgloss.Style, s string) string {
	if !isTerminal(w) {
		return s
	}
	return style.Render(s)
}

// listing is a header plus rows, rendered styled on a terminal and
// tab-separated otherwise.
type listing struct {
	headers []string
	rows    [][]string

	// statusCol is coloured by its value when styled; -1 disables.
	statusCol int
}

func (l listing) render(w io.Writer) error {
	if !isTerminal(w) {
		return l.renderPlain(w)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colourBorder)).
		Headers(l.headers...).
		Rows(l.rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == l.statusCol && row >= 0 && row < len(l.rows) {
				switch l.rows[row][col] {
				case statusOK, statusMarked:
					return cellStyle.Inherit(successStyle)
				case statusFailed, statusUnmarked:
					return cellStyle.Inherit(errorStyle)
				}
			}
			return cellStyle
		})
	_, err := io.WriteString(w, t.String()+"\n")
	return err
}

func (l listing) renderPlain(w io.Writer) error {
	write := func(cells []string) error {
		for i, c := range cells {
			if i > 0 {
				if _, err := io.WriteString(w, "\t"); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, c); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "\n")
		return err
	}
	if err := write(l.headers); err != nil {
		return err
	}
	for _, r := range l.rows {
		if err := write(r); err != nil {
			return err
		}
	}
	return nil
}

// Status cell values.
const (
	statusOK       = "ok"
	statusFailed   = "failed"
	statusMarked   = "marked"
	statusUnmarked = "unmarked"
)
