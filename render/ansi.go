package render

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/reoring/pardump"
)

// ANSIOptions configures the terminal backend.
type ANSIOptions struct {
	// ForceColor emits colors even when w is not a terminal.
	ForceColor bool
	Theme      Theme
}

// ANSI writes d as plain pseudo-source with terminal colors. Colors are
// dropped automatically when w is not a terminal unless ForceColor is set.
func ANSI(w io.Writer, d *pardump.Dump, opts ...ANSIOptions) error {
	opt := ANSIOptions{Theme: NASA}
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
		if opt.Theme == (Theme{}) {
			opt.Theme = NASA
		}
	}
	r := lipgloss.NewRenderer(w)
	if opt.ForceColor {
		r.SetColorProfile(termenv.ANSI256)
	}
	e := ansiEmitter{
		keyword: r.NewStyle().Foreground(lipgloss.Color(opt.Theme.Keyword)).Bold(true),
		typ:     r.NewStyle().Foreground(lipgloss.Color(opt.Theme.Type)),
		link:    r.NewStyle().Foreground(lipgloss.Color(opt.Theme.Type)).Underline(true),
		comment: r.NewStyle().Foreground(lipgloss.Color(opt.Theme.Comment)),
	}
	return Layout(w, d, e)
}

type ansiEmitter struct {
	keyword lipgloss.Style
	typ     lipgloss.Style
	link    lipgloss.Style
	comment lipgloss.Style
}

func (ansiEmitter) BeginDocument(*Writer, *pardump.Dump) {}
func (ansiEmitter) EndDocument(*Writer, *pardump.Dump)   {}
func (ansiEmitter) BeginBlock(*Writer, pardump.Name)     {}
func (ansiEmitter) EndBlock(*Writer, pardump.Name)       {}

func (a ansiEmitter) Keyword(w *Writer, s string)        { w.WriteString(a.keyword.Render(s)) }
func (a ansiEmitter) TypeName(w *Writer, s string)       { w.WriteString(a.typ.Render(s)) }
func (a ansiEmitter) TypeLink(w *Writer, n pardump.Name) { w.WriteString(a.link.Render(n.String())) }
func (a ansiEmitter) Comment(w *Writer, s string)        { w.WriteString(a.comment.Render(s)) }
func (ansiEmitter) Text(w *Writer, s string)             { w.WriteString(s) }
