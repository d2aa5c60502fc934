package tools

import (
	"bytes"
	"strings"
	"testing"

	"github.com/schemawash/schemawash/core"
)

var renderSpec = `
datasource: datacite
table: dois
lastupdated: 20260831
updatedby: dev
doc: |
  # DataCite DOI cleaning

  Normalizes the *container* block.
filter_records:
  - path: type
    value: dois
cleaners:
  - container volume:
      path:
        - container
        - volume
      function: normalize_to_string_or_none
  - doi passthrough:
      path: doi
      source: |
        return value;
`

func TestRenderSpecHTML(t *testing.T) {
	spec, err := core.ParseSpec([]byte(renderSpec))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err = RenderSpecHTML(spec, &buf); err != nil {
		t.Fatal(err)
	}
	page := buf.String()

	for _, wanted := range []string{
		"DataCite DOI cleaning</h1>",
		"container volume",
		"container.volume",
		"normalize_to_string_or_none",
		"return value;",
		"<code>type</code>",
	} {
		if !strings.Contains(page, wanted) {
			t.Fatalf("missing %q in\n%s", wanted, page)
		}
	}
}

func TestRenderSpecPage(t *testing.T) {
	spec, err := core.ParseSpec([]byte(renderSpec))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err = RenderSpecPage(spec, &buf, nil); err != nil {
		t.Fatal(err)
	}
	page := buf.String()

	if !strings.Contains(page, "<title>datacite.dois</title>") {
		t.Fatal(page)
	}
	if !strings.Contains(page, "spec-html.css") {
		t.Fatal(page)
	}
}
