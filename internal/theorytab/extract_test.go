package theorytab

import (
	"strconv"
	"strings"
	"testing"

	"github.com/caretcaret/aurora/internal/diag"
	"github.com/caretcaret/aurora/internal/eltree"
)

func metaOf(t *testing.T, doc string) *eltree.Node {
	t.Helper()
	tree, err := eltree.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := tree.Find("meta")
	if m == nil {
		t.Fatal("fixture has no meta element")
	}
	return m
}

func dataOf(t *testing.T, doc string) *eltree.Node {
	t.Helper()
	tree, err := eltree.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d := tree.Find("data")
	if d == nil {
		t.Fatal("fixture has no data element")
	}
	return d
}

func TestExtractTonic_FullEnharmonicTable(t *testing.T) {
	want := map[string]int{
		"C": 0, "B#": 0,
		"C#": 1, "Db": 1,
		"D":  2,
		"D#": 3, "Eb": 3,
		"E": 4, "Fb": 4,
		"E#": 5, "F": 5,
		"F#": 6, "Gb": 6,
		"G":  7,
		"G#": 8, "Ab": 8,
		"A":  9,
		"A#": 10, "Bb": 10,
		"B": 11, "Cb": 11,
	}
	if len(want) != 21 {
		t.Fatalf("table should list 21 spellings, has %d", len(want))
	}

	for spelling, pc := range want {
		meta := metaOf(t, "<meta><key>"+spelling+"</key></meta>")
		got, ok := extractTonic(meta, "fixture.xml", diag.Discard{})
		if !ok {
			t.Errorf("spelling %q: unexpected failure", spelling)
			continue
		}
		if got != pc {
			t.Errorf("spelling %q: expected pitch class %d, got %d", spelling, pc, got)
		}
	}
}

func TestExtractTonic_UnknownSpellingFails(t *testing.T) {
	for _, bad := range []string{"H", "c", "C##", "Do", "1"} {
		var sink diag.Collector
		meta := metaOf(t, "<meta><key>"+bad+"</key></meta>")
		if _, ok := extractTonic(meta, "fixture.xml", &sink); ok {
			t.Errorf("spelling %q: expected failure", bad)
		}
		events := sink.Events()
		if len(events) != 1 || events[0].Code != diag.UnrecognizedValue {
			t.Errorf("spelling %q: expected unrecognized_value, got %v", bad, events)
		}
	}
}

func TestExtractTonic_MissingKeyFails(t *testing.T) {
	var sink diag.Collector
	meta := metaOf(t, "<meta><other/></meta>")
	if _, ok := extractTonic(meta, "fixture.xml", &sink); ok {
		t.Error("expected failure for absent key")
	}
	events := sink.Events()
	if len(events) != 1 || events[0].Code != diag.MissingField {
		t.Errorf("expected missing_field, got %v", events)
	}
}

func TestExtractMode_AbsentDefaultsToMajorWithWarning(t *testing.T) {
	var sink diag.Collector
	meta := metaOf(t, "<meta><other/></meta>")
	mode, ok := extractMode(meta, "fixture.xml", &sink)
	if !ok || mode != 1 {
		t.Fatalf("expected default mode 1, got %d (ok=%v)", mode, ok)
	}
	events := sink.Events()
	if len(events) != 1 || events[0].Level != diag.Warning {
		t.Errorf("expected a single warning, got %v", events)
	}
}

func TestExtractMode_ValidRange(t *testing.T) {
	names := []string{"Major/Ionian", "Dorian", "Phrygian", "Lydian", "Mixolydian", "Minor/Aeolian", "Locrian"}
	for i, name := range names {
		mode := i + 1
		meta := metaOf(t, "<meta><mode>"+strconv.Itoa(mode)+"</mode></meta>")
		got, ok := extractMode(meta, "fixture.xml", diag.Discard{})
		if !ok || got != mode {
			t.Errorf("mode %d: expected success, got %d (ok=%v)", mode, got, ok)
		}
		if ModeName(got) != name {
			t.Errorf("mode %d: expected name %q, got %q", mode, name, ModeName(got))
		}
	}
}

func TestExtractMode_OutOfRangeFails(t *testing.T) {
	for _, bad := range []string{"0", "8", "-1", "12"} {
		var sink diag.Collector
		meta := metaOf(t, "<meta><mode>"+bad+"</mode></meta>")
		if _, ok := extractMode(meta, "fixture.xml", &sink); ok {
			t.Errorf("mode %q: expected failure", bad)
		}
		if sink.Errors() != 1 {
			t.Errorf("mode %q: expected one error diagnostic, got %v", bad, sink.Events())
		}
	}
}

func TestExtractBeatsPerMeasure(t *testing.T) {
	cases := []struct {
		raw  string
		want int
		ok   bool
	}{
		{"4", 4, true},
		{"3.0", 3, true},
		{"6.4", 6, true}, // rounds to nearest
		{"0", 0, false},
		{"-2", 0, false},
		{"abc", 0, false},
	}
	for _, c := range cases {
		meta := metaOf(t, "<meta><beats_in_measure>"+c.raw+"</beats_in_measure></meta>")
		got, ok := extractBeatsPerMeasure(meta, "fixture.xml", diag.Discard{})
		if ok != c.ok || got != c.want {
			t.Errorf("raw %q: expected (%d, %v), got (%d, %v)", c.raw, c.want, c.ok, got, ok)
		}
	}
}

func TestExtractBeatsPerMeasure_LegacyCapitalization(t *testing.T) {
	meta := metaOf(t, "<meta><Beats_In_Measure>4</Beats_In_Measure></meta>")
	got, ok := extractBeatsPerMeasure(meta, "fixture.xml", diag.Discard{})
	if !ok || got != 4 {
		t.Errorf("expected 4 from legacy capitalization, got %d (ok=%v)", got, ok)
	}
}

func TestExtractTiming_Offsets(t *testing.T) {
	meta := metaOf(t, `<meta><global_start>10</global_start><active_start>2</active_start><active_stop>18</active_stop></meta>`)
	start, end, ok := extractTiming(meta, "fixture.xml", diag.Discard{})
	if !ok {
		t.Fatal("expected success")
	}
	if start != 12.0 || end != 28.0 {
		t.Errorf("expected [12, 28], got [%g, %g]", start, end)
	}
}

func TestExtractTiming_MissingComponentFails(t *testing.T) {
	var sink diag.Collector
	meta := metaOf(t, `<meta><global_start>10</global_start><active_stop>18</active_stop></meta>`)
	if _, _, ok := extractTiming(meta, "fixture.xml", &sink); ok {
		t.Error("expected failure for missing active_start")
	}
	events := sink.Events()
	if len(events) != 1 || events[0].Field != "active_start" {
		t.Errorf("expected missing active_start diagnostic, got %v", events)
	}
}

func TestExtractTiming_InvertedIntervalFails(t *testing.T) {
	var sink diag.Collector
	meta := metaOf(t, `<meta><global_start>10</global_start><active_start>18</active_start><active_stop>2</active_stop></meta>`)
	if _, _, ok := extractTiming(meta, "fixture.xml", &sink); ok {
		t.Error("expected failure when start is not before end")
	}
	if sink.Errors() != 1 {
		t.Errorf("expected one error diagnostic, got %v", sink.Events())
	}
}

func TestExtractNumBeats_MeasuresPreferred(t *testing.T) {
	data := dataOf(t, `<data><numMeasures>2</numMeasures><numMeasures>3</numMeasures><numBeats>99</numBeats></data>`)
	got, ok := extractNumBeats(data, "fixture.xml", 4, diag.Discard{})
	if !ok || got != 20 {
		t.Errorf("expected 20 beats, got %d (ok=%v)", got, ok)
	}
}

func TestExtractNumBeats_FallsBackToBeats(t *testing.T) {
	data := dataOf(t, `<data><numMeasures>0</numMeasures><numBeats>5</numBeats><numBeats>7</numBeats></data>`)
	got, ok := extractNumBeats(data, "fixture.xml", 4, diag.Discard{})
	if !ok || got != 12 {
		t.Errorf("expected 12 beats from fallback, got %d (ok=%v)", got, ok)
	}
}

func TestExtractNumBeats_BothZeroFails(t *testing.T) {
	var sink diag.Collector
	data := dataOf(t, `<data><numMeasures>0</numMeasures><numBeats>0</numBeats></data>`)
	if _, ok := extractNumBeats(data, "fixture.xml", 4, &sink); ok {
		t.Error("expected failure when both tallies are zero")
	}
	if sink.Errors() != 1 {
		t.Errorf("expected one error diagnostic, got %v", sink.Events())
	}
}

func TestExtractNumBeats_EmptyEntryInvalidatesTally(t *testing.T) {
	// An empty numMeasures voids the measure tally and the count falls back
	// to numBeats.
	data := dataOf(t, `<data><numMeasures>2</numMeasures><numMeasures></numMeasures><numBeats>9</numBeats></data>`)
	got, ok := extractNumBeats(data, "fixture.xml", 4, diag.Discard{})
	if !ok || got != 9 {
		t.Errorf("expected 9 beats from fallback, got %d (ok=%v)", got, ok)
	}
}

func TestExtractVideoID_NestedDeepInMeta(t *testing.T) {
	// Some revisions bury the id below intermediate elements; lookup is
	// descendant-wide.
	meta := metaOf(t, `<meta><video><YouTubeID>dQw4w9WgXcQ</YouTubeID></video></meta>`)
	got, ok := extractVideoID(meta, "fixture.xml", diag.Discard{})
	if !ok || got != "dQw4w9WgXcQ" {
		t.Errorf("expected nested lookup to succeed, got %q (ok=%v)", got, ok)
	}
}
