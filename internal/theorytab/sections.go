package theorytab

import (
	"fmt"
	"strings"

	"github.com/caretcaret/aurora/internal/diag"
	"github.com/caretcaret/aurora/internal/eltree"
)

// section is one paired (meta, data) unit ready for per-section extraction.
// Either side may be nil when the document is deficient; the assembler skips
// those pairs.
type section struct {
	meta *eltree.Node
	data *eltree.Node
}

// splitSections produces the document's sections in source order. Multi-section
// revisions keep per-section blocks under a sections collection in both the
// meta element and the root; those are paired positionally. Everything else is
// one implicit section spanning the whole meta and the root's data element.
func splitSections(root, meta *eltree.Node, version Version, file string, sink diag.Sink) []section {
	if version.multiSection() {
		if metaColl := meta.Child("sections"); metaColl != nil {
			metaSecs := metaColl.Elements()
			dataSecs := root.Child("sections").Elements()
			return pairSections(metaSecs, dataSecs, file, sink)
		}
	}
	return []section{{meta: meta, data: root.Find("data")}}
}

// pairSections zips the two positional lists, truncating to the shorter one.
// Truncation is reported with both counts; the intended behavior for genuinely
// mismatched documents is unknown, so trailing sections are dropped loudly
// rather than guessed at.
func pairSections(metaSecs, dataSecs []*eltree.Node, file string, sink diag.Sink) []section {
	if len(metaSecs) != len(dataSecs) {
		sink.Emit(diag.Event{
			Level: diag.Warning, Code: diag.SectionCountMismatch, File: file,
			Detail: fmt.Sprintf("%d meta sections, %d data sections", len(metaSecs), len(dataSecs)),
		})
	}

	n := min(len(metaSecs), len(dataSecs))
	pairs := make([]section, 0, n)
	for i := range n {
		m, d := metaSecs[i], dataSecs[i]
		if m != nil && d != nil &&
			!strings.EqualFold(m.Name, "meta") &&
			!strings.EqualFold(d.Name, "data") &&
			!strings.EqualFold(m.Name, d.Name) {
			sink.Emit(diag.Event{
				Level: diag.Warning, Code: diag.SectionNameMismatch, File: file,
				Detail: fmt.Sprintf("%s and %s", m.Name, d.Name),
			})
		}
		pairs = append(pairs, section{meta: m, data: d})
	}
	return pairs
}
