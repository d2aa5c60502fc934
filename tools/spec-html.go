package tools

import (
	"fmt"
	"html"
	"io"

	"github.com/schemawash/schemawash/core"

	. "github.com/schemawash/schemawash/util/testutil"

	md "github.com/russross/blackfriday/v2"
)

// RenderSpecHTML writes an HTML fragment documenting the spec: its
// Markdown doc, its filters, and its ordered rule table.
func RenderSpecHTML(s *core.Spec, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	if s.Doc != "" {
		f(`<div class="specDoc doc">%s</div>`, md.Run([]byte(s.Doc)))
	}

	f(`<div class="specMeta">updated %s by %s</div>`,
		html.EscapeString(s.LastUpdated), html.EscapeString(s.UpdatedBy))

	if 0 < len(s.Filters) {
		f(`<div class="filters"><table>`)
		f(`<tr><th>path</th><th>value</th><th>desired</th></tr>`)
		for _, flt := range s.Filters {
			f(`<tr class="filter"><td><code>%s</code></td><td><code>%s</code></td><td>%v</td></tr>`,
				html.EscapeString(flt.Path.String()),
				html.EscapeString(JS(flt.Value)),
				flt.Desired)
		}
		f(`</table></div>`)
	}

	f(`<div class="rules"><table>`)
	f(`<tr><th></th><th>rule</th><th>path</th><th>cleaner</th></tr>`)
	for i, r := range s.Cleaners {
		f(`<tr class="rule"><td><div class="ruleNum">%d</div></td>`, i)
		f(`<td><span id="%s" class="ruleName">%s</span></td>`,
			html.EscapeString(r.Name), html.EscapeString(r.Name))
		f(`<td><code>%s</code></td><td>`, html.EscapeString(r.Path.String()))
		if r.Source != "" {
			f(`<div class="code"><pre>%s</pre></div>`, html.EscapeString(r.Source))
		} else {
			f(`<code>%s</code>`, html.EscapeString(r.Function))
			if r.Params != nil {
				f(`<div class="params"><code>%s</code></div>`, html.EscapeString(JS(r.Params)))
			}
		}
		f(`</td></tr>`)
	}
	f(`</table></div>`)

	return nil
}

// RenderSpecPage writes a complete HTML page for the spec.
func RenderSpecPage(s *core.Spec, out io.Writer, cssFiles []string) error {
	if cssFiles == nil {
		cssFiles = []string{"/static/spec-html.css"}
	}

	fmt.Fprintf(out, `<!DOCTYPE html>
<meta charset="utf-8">
<html>
  <head>
  <title>%s</title>
`, html.EscapeString(s.Id()))

	for _, cssFile := range cssFiles {
		fmt.Fprintf(out, "  <link href=\"%s\" rel=\"stylesheet\">\n", cssFile)
	}

	fmt.Fprintf(out, `
  </head>
  <body>
    <h1>%s</h1>
`, html.EscapeString(s.Id()))

	if err := RenderSpecHTML(s, out); err != nil {
		return err
	}

	fmt.Fprintf(out, `
  </body>
</html>
`)

	return nil
}

// ReadAndRenderSpecPage loads a spec file and renders its page.
// Rendering doesn't need the spec compiled, so unknown function names
// still render (and Analyze will flag them).
func ReadAndRenderSpecPage(filename string, cssFiles []string, out io.Writer) error {
	spec, err := core.LoadSpec(filename)
	if err != nil {
		return err
	}
	return RenderSpecPage(spec, out, cssFiles)
}
