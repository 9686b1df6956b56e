package render

import (
	"io"

	"github.com/reoring/pardump"
)

// Text writes d as plain pseudo-source.
func Text(w io.Writer, d *pardump.Dump) error {
	return Layout(w, d, textEmitter{})
}

type textEmitter struct{}

func (textEmitter) BeginDocument(*Writer, *pardump.Dump) {}
func (textEmitter) EndDocument(*Writer, *pardump.Dump)   {}
func (textEmitter) BeginBlock(*Writer, pardump.Name)     {}
func (textEmitter) EndBlock(*Writer, pardump.Name)       {}

func (textEmitter) Keyword(w *Writer, s string)        { w.WriteString(s) }
func (textEmitter) TypeName(w *Writer, s string)       { w.WriteString(s) }
func (textEmitter) TypeLink(w *Writer, n pardump.Name) { w.WriteString(n.String()) }
func (textEmitter) Comment(w *Writer, s string)        { w.WriteString(s) }
func (textEmitter) Text(w *Writer, s string)           { w.WriteString(s) }
