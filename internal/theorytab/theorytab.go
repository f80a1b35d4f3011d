// Package theorytab normalizes community-authored theorytab transcription
// documents into time-aligned audio-excerpt records. The schema spans several
// incompatible revisions, so parsing is version-aware and degrades gracefully:
// a malformed section is skipped without discarding its siblings, and
// unrecognized values are rejected rather than miscoded.
package theorytab

import (
	"fmt"
	"io"
	"os"

	"github.com/caretcaret/aurora/internal/diag"
	"github.com/caretcaret/aurora/internal/eltree"
)

// Document is one parsed theorytab file. Parsing the tree happens once at
// construction; Clips derives the normalized records on demand and holds no
// state, so a Document may be shared across goroutines.
type Document struct {
	Filename string
	Version  Version

	tree *eltree.Node
}

// ParseDocument reads a whole theorytab document from r. The filename is used
// only for diagnostics and as the DataSource of produced clips. An error here
// means the input could not be read at all; structural problems inside the
// document are reported later through the diagnostics sink.
func ParseDocument(r io.Reader, filename string) (*Document, error) {
	tree, err := eltree.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	version := ""
	if raw, ok := tree.Find("version").Content(); ok {
		version = raw
	}

	return &Document{
		Filename: filename,
		Version:  ResolveVersion(version),
		tree:     tree,
	}, nil
}

// Open parses the theorytab document at path.
func Open(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ParseDocument(f, path)
}

// Clips separates the document into sections backed by video audio and
// assembles one Clip per well-formed section, in source order.
//
// Document-level fields (meter, key, mode, video id) must all extract for any
// clip to be produced; a failure there aborts with an empty list. Per-section
// failures (timing, beat count) skip only that section. The worst outcome is
// an empty slice with accompanying diagnostics; Clips never returns an error.
func (d *Document) Clips(sink diag.Sink) []Clip {
	if sink == nil {
		sink = diag.Discard{}
	}

	// A meta element may be nested within a theorytab or a super root, but
	// there should be only one.
	root := d.tree.Find("theorytab", "super")
	if root == nil {
		sink.Emit(diag.Event{Level: diag.Error, Code: diag.MissingRoot, File: d.Filename})
		return nil
	}
	meta := root.Find("meta")
	if meta == nil {
		sink.Emit(diag.Event{Level: diag.Error, Code: diag.MissingMeta, File: d.Filename})
		return nil
	}

	// Extract every document-level field before deciding, so one pass reports
	// all document-level problems at once.
	beatsPerMeasure, okBeats := extractBeatsPerMeasure(meta, d.Filename, sink)
	tonic, okTonic := extractTonic(meta, d.Filename, sink)
	mode, okMode := extractMode(meta, d.Filename, sink)
	videoID, okVideo := extractVideoID(meta, d.Filename, sink)
	if !okBeats || !okTonic || !okMode || !okVideo {
		return nil
	}

	var clips []Clip
	for _, sec := range splitSections(root, meta, d.Version, d.Filename, sink) {
		if sec.meta == nil || sec.data == nil {
			sink.Emit(diag.Event{Level: diag.Error, Code: diag.MissingField, File: d.Filename, Field: "section", Detail: "missing meta or data section"})
			continue
		}

		start, end, ok := extractTiming(sec.meta, d.Filename, sink)
		if !ok {
			continue
		}
		beats, ok := extractNumBeats(sec.data, d.Filename, beatsPerMeasure, sink)
		if !ok {
			continue
		}

		clips = append(clips, Clip{
			DataSource: d.Filename,
			Audio: AudioSource{
				VideoID:   videoID,
				StartTime: start,
				EndTime:   end,
			},
			Meter: Meter{
				Beats:           beats,
				BeatsPerMeasure: beatsPerMeasure,
			},
			Key: Key{
				Tonic: tonic,
				Mode:  mode,
			},
		})
	}

	if len(clips) == 0 {
		sink.Emit(diag.Event{Level: diag.Error, Code: diag.EmptyResult, File: d.Filename})
	}
	return clips
}
