package scoring

import "fmt"

// Decision is the indexing verdict for a facet.
type Decision int

const (
	NoIndex Decision = iota
	Index
)

// String returns the wire name of d.
func (d Decision) String() string {
	switch d {
	case Index:
		return "INDEX"
	case NoIndex:
		return "NOINDEX"
	default:
		return fmt.Sprintf("Decision(%d)", int(d))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Decision) MarshalText() ([]byte, error) {
	switch d {
	case Index, NoIndex:
		return []byte(d.String()), nil
	default:
		return nil, fmt.Errorf("invalid decision %d", int(d))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Decision) UnmarshalText(text []byte) error {
	switch string(text) {
	case "INDEX":
		*d = Index
	case "NOINDEX":
		*d = NoIndex
	default:
		return fmt.Errorf("unknown decision %q", text)
	}
	return nil
}

// Zone is the SEO action bucket derived from score and keyword difficulty.
type Zone int

const (
	Ignorer Zone = iota
	Surveiller
	Niche
	FortPotentiel
	QuickWin
)

var zoneNames = [...]string{
	Ignorer:       "IGNORER",
	Surveiller:    "SURVEILLER",
	Niche:         "NICHE",
	FortPotentiel: "FORT_POTENTIEL",
	QuickWin:      "QUICK_WIN",
}

// Zones lists every zone from the most to the least attractive.
var Zones = []Zone{QuickWin, FortPotentiel, Niche, Surveiller, Ignorer}

func (z Zone) valid() bool {
	return z >= Ignorer && z <= QuickWin
}

// String returns the wire name of z.
func (z Zone) String() string {
	if !z.valid() {
		return fmt.Sprintf("Zone(%d)", int(z))
	}
	return zoneNames[z]
}

// MarshalText implements encoding.TextMarshaler.
func (z Zone) MarshalText() ([]byte, error) {
	if !z.valid() {
		return nil, fmt.Errorf("invalid zone %d", int(z))
	}
	return []byte(zoneNames[z]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (z *Zone) UnmarshalText(text []byte) error {
	for i, name := range zoneNames {
		if name == string(text) {
			*z = Zone(i)
			return nil
		}
	}
	return fmt.Errorf("unknown zone %q", text)
}
