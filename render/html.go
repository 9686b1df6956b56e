package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/reoring/pardump"
)

// HTML writes d as a single page. Every structure and enum block is a <pre>
// whose id is the type's anchor; type references link to "#<anchor>" whether
// or not the target exists in this dump.
func HTML(w io.Writer, d *pardump.Dump) error {
	return Layout(w, d, htmlEmitter{theme: NASA})
}

type htmlEmitter struct {
	theme Theme
}

func (h htmlEmitter) BeginDocument(w *Writer, d *pardump.Dump) {
	title := htmlEscape(fmt.Sprintf("%s (build %s)", strings.ToUpper(d.Game), d.Build))
	w.WriteString(fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: "Helvetica Neue", Helvetica, Arial, sans-serif; color: %s; background: %s; margin: 2em; }
ul { list-style: none; padding: 0; }
pre { font-family: "Courier New", monospace; font-size: 13px; tab-size: 4; }
pre:target { background: %s; }
a { text-decoration: none; }
.c-k { color: %s; font-weight: 600; }
.c-t { color: %s; }
.c-c { color: %s; }
</style>
</head>
<body>
<main>
<ul>
`, title, h.theme.Text, h.theme.Background, h.theme.Target, h.theme.Keyword, h.theme.Type, h.theme.Comment))
}

func (htmlEmitter) EndDocument(w *Writer, _ *pardump.Dump) {
	w.WriteString("</ul>\n</main>\n</body>\n</html>\n")
}

func (htmlEmitter) BeginBlock(w *Writer, n pardump.Name) {
	w.WriteString(`<li><pre id="` + n.Anchor() + `"><code>`)
}

func (htmlEmitter) EndBlock(w *Writer, _ pardump.Name) {
	w.WriteString("</code></pre></li>\n")
}

func (htmlEmitter) Keyword(w *Writer, s string) {
	w.WriteString(`<span class="c-k">` + htmlEscape(s) + `</span>`)
}

func (htmlEmitter) TypeName(w *Writer, s string) {
	w.WriteString(`<span class="c-t">` + htmlEscape(s) + `</span>`)
}

func (htmlEmitter) TypeLink(w *Writer, n pardump.Name) {
	w.WriteString(`<a href="#` + n.Anchor() + `" class="c-t-l"><span class="c-t">` + htmlEscape(n.String()) + `</span></a>`)
}

func (htmlEmitter) Comment(w *Writer, s string) {
	w.WriteString(`<span class="c-c">` + htmlEscape(s) + `</span>`)
}

func (htmlEmitter) Text(w *Writer, s string) { w.WriteString(htmlEscape(s)) }
