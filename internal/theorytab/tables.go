package theorytab

// pitchClasses maps the note-name spellings that appear in theorytab key
// elements to pitch classes 0-11. All 21 enharmonic spellings used by the
// community editor are listed; anything else is rejected.
var pitchClasses = map[string]int{
	"C":  0,
	"B#": 0,
	"C#": 1,
	"Db": 1,
	"D":  2,
	"D#": 3,
	"Eb": 3,
	"E":  4,
	"Fb": 4,
	"E#": 5,
	"F":  5,
	"F#": 6,
	"Gb": 6,
	"G":  7,
	"G#": 8,
	"Ab": 8,
	"A":  9,
	"A#": 10,
	"Bb": 10,
	"B":  11,
	"Cb": 11,
}

// modeNames names the seven diatonic modes, numbered 1-7.
var modeNames = map[int]string{
	1: "Major/Ionian",
	2: "Dorian",
	3: "Phrygian",
	4: "Lydian",
	5: "Mixolydian",
	6: "Minor/Aeolian",
	7: "Locrian",
}

// ModeName returns the display name for a mode number, or "" if the number is
// outside 1-7.
func ModeName(mode int) string {
	return modeNames[mode]
}

// PitchClass looks up the pitch class for a note-name spelling.
func PitchClass(spelling string) (int, bool) {
	pc, ok := pitchClasses[spelling]
	return pc, ok
}
