package theorytab

import "strings"

// Version is the theorytab schema revision of a document. The schema has only
// ever added fields, so unrecognized markers resolve to the newest known
// revision rather than failing.
type Version int

const (
	V1_0 Version = iota
	V1_1
	V1_2
	V1_3
)

// Observed cutoffs in the wild:
// version 1.1: theorytab >= 173661
// version 1.2: theorytab >= 191620
// version 1.3: theorytab >= 280191

// ResolveVersion maps a document's version marker to a Version. An absent or
// empty marker means "1.0".
func ResolveVersion(raw string) Version {
	switch strings.TrimSpace(raw) {
	case "", "1.0":
		return V1_0
	case "1.1":
		return V1_1
	case "1.2":
		return V1_2
	case "1.3":
		return V1_3
	default:
		return V1_3
	}
}

func (v Version) String() string {
	switch v {
	case V1_0:
		return "1.0"
	case V1_1:
		return "1.1"
	case V1_2:
		return "1.2"
	default:
		return "1.3"
	}
}

// multiSection reports whether this revision nests per-section blocks under a
// sections collection. From 1.2 on, each file holds at most one section.
func (v Version) multiSection() bool {
	return v <= V1_1
}
