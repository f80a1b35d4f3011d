package theorytab

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/caretcaret/aurora/internal/diag"
	"github.com/caretcaret/aurora/internal/eltree"
)

// The extractors below are pure functions over a sub-tree plus the filename
// used for diagnostics. Each returns its value and an ok flag; on failure the
// reason has already been emitted to the sink. Missing and whitespace-only
// content are treated identically.

var videoIDPattern = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)

func extractBeatsPerMeasure(meta *eltree.Node, file string, sink diag.Sink) (int, bool) {
	raw, ok := meta.Find("beats_in_measure").Content()
	if !ok {
		sink.Emit(diag.Event{Level: diag.Error, Code: diag.MissingField, File: file, Field: "beats_in_measure"})
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		sink.Emit(diag.Event{Level: diag.Error, Code: diag.UnrecognizedValue, File: file, Field: "beats_in_measure", Detail: raw})
		return 0, false
	}
	bpm := int(math.Round(f))
	if bpm <= 0 {
		sink.Emit(diag.Event{Level: diag.Error, Code: diag.UnrecognizedValue, File: file, Field: "beats_in_measure", Detail: raw})
		return 0, false
	}
	return bpm, true
}

func extractTonic(meta *eltree.Node, file string, sink diag.Sink) (int, bool) {
	raw, ok := meta.Find("key").Content()
	if !ok {
		sink.Emit(diag.Event{Level: diag.Error, Code: diag.MissingField, File: file, Field: "key"})
		return 0, false
	}
	pc, ok := PitchClass(raw)
	if !ok {
		sink.Emit(diag.Event{Level: diag.Error, Code: diag.UnrecognizedValue, File: file, Field: "key", Detail: raw})
		return 0, false
	}
	return pc, true
}

func extractMode(meta *eltree.Node, file string, sink diag.Sink) (int, bool) {
	raw, ok := meta.Find("mode").Content()
	if !ok {
		// Plenty of documents predate the mode field; major is the default.
		sink.Emit(diag.Event{Level: diag.Warning, Code: diag.MissingField, File: file, Field: "mode", Detail: "assuming major"})
		return 1, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		sink.Emit(diag.Event{Level: diag.Error, Code: diag.UnrecognizedValue, File: file, Field: "mode", Detail: raw})
		return 0, false
	}
	mode := int(math.Round(f))
	if ModeName(mode) == "" {
		sink.Emit(diag.Event{Level: diag.Error, Code: diag.UnrecognizedValue, File: file, Field: "mode", Detail: raw})
		return 0, false
	}
	return mode, true
}

func extractVideoID(meta *eltree.Node, file string, sink diag.Sink) (string, bool) {
	raw, ok := meta.Find("YouTubeID").Content()
	if !ok || raw == "null" {
		sink.Emit(diag.Event{Level: diag.Error, Code: diag.MissingField, File: file, Field: "YouTubeID"})
		return "", false
	}
	if !videoIDPattern.MatchString(raw) {
		sink.Emit(diag.Event{Level: diag.Error, Code: diag.UnrecognizedValue, File: file, Field: "YouTubeID", Detail: raw})
		return "", false
	}
	return raw, true
}

// extractTiming computes the clip's begin and end offsets in the source video:
// start = global_start + active_start, end = global_start + active_stop.
func extractTiming(metaSection *eltree.Node, file string, sink diag.Sink) (start, end float64, ok bool) {
	fields := [3]string{"global_start", "active_start", "active_stop"}
	var values [3]float64
	for i, name := range fields {
		raw, present := metaSection.Find(name).Content()
		if !present {
			sink.Emit(diag.Event{Level: diag.Error, Code: diag.MissingField, File: file, Field: name})
			return 0, 0, false
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			sink.Emit(diag.Event{Level: diag.Error, Code: diag.UnrecognizedValue, File: file, Field: name, Detail: raw})
			return 0, 0, false
		}
		values[i] = f
	}
	start = values[0] + values[1]
	end = values[0] + values[2]
	if start >= end {
		sink.Emit(diag.Event{
			Level: diag.Error, Code: diag.UnrecognizedValue, File: file, Field: "timing",
			Detail: fmt.Sprintf("start %g is not before end %g", start, end),
		})
		return 0, 0, false
	}
	return start, end, true
}

// extractNumBeats totals the section's length in beats. Measure counts are
// preferred; documents from the 3882-4192 range predate numMeasures and carry
// only numBeats, where audio may be synced to a non-integral measure count.
func extractNumBeats(dataSection *eltree.Node, file string, beatsPerMeasure int, sink diag.Sink) (int, bool) {
	if measures := sumCounts(dataSection.FindAll("numMeasures")); measures != 0 {
		return measures * beatsPerMeasure, true
	}
	if beats := sumCounts(dataSection.FindAll("numBeats")); beats != 0 {
		return beats, true
	}
	sink.Emit(diag.Event{Level: diag.Error, Code: diag.MissingField, File: file, Field: "numMeasures/numBeats"})
	return 0, false
}

// sumCounts adds up rounded numeric contents. Any empty or malformed entry
// invalidates the whole tally so the caller falls through to the next source.
func sumCounts(nodes []*eltree.Node) int {
	total := 0
	for _, n := range nodes {
		raw, ok := n.Content()
		if !ok {
			return 0
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0
		}
		total += int(math.Round(f))
	}
	return total
}
