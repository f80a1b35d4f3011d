package theorytab

// Clip is one normalized, time-aligned audio excerpt. Clips are value types:
// derived from a document, never mutated, and directly serializable for
// downstream dataset builders.
type Clip struct {
	DataSource string      `json:"data_source"`
	Audio      AudioSource `json:"audio_source"`
	Meter      Meter       `json:"meter"`
	Key        Key         `json:"key"`
}

// AudioSource identifies the video segment backing a clip.
// Invariant: StartTime < EndTime.
type AudioSource struct {
	VideoID   string  `json:"video_id"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

// Meter describes the clip's time signature for beat counting.
type Meter struct {
	Beats           int `json:"beats"`
	BeatsPerMeasure int `json:"beats_per_measure"`
}

// Key is the musical key: tonic pitch class 0-11 and mode 1-7
// (Ionian through Locrian).
type Key struct {
	Tonic int `json:"tonic"`
	Mode  int `json:"mode"`
}
