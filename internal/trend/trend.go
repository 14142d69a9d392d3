// Package trend compares facet outcomes with those of the previous run.
package trend

import (
	"fmt"

	"gonum.org/v1/gonum/floats/scalar"
)

// Icon is the direction band of a variation.
type Icon int

const (
	Stable Icon = iota
	StrongUp
	Up
	Down
	StrongDown
	New
)

var iconNames = [...]string{
	Stable:     "STABLE",
	StrongUp:   "STRONG_UP",
	Up:         "UP",
	Down:       "DOWN",
	StrongDown: "STRONG_DOWN",
	New:        "NEW",
}

var iconSymbols = [...]string{
	Stable:     "→",
	StrongUp:   "↑",
	Up:         "↗",
	Down:       "↘",
	StrongDown: "↓",
	New:        "nouveau",
}

func (i Icon) valid() bool {
	return i >= Stable && i <= New
}

// String returns the wire name of i.
func (i Icon) String() string {
	if !i.valid() {
		return fmt.Sprintf("Icon(%d)", int(i))
	}
	return iconNames[i]
}

// Symbol returns the arrow shown in terminal output.
func (i Icon) Symbol() string {
	if !i.valid() {
		return "?"
	}
	return iconSymbols[i]
}

// MarshalText implements encoding.TextMarshaler.
func (i Icon) MarshalText() ([]byte, error) {
	if !i.valid() {
		return nil, fmt.Errorf("invalid trend icon %d", int(i))
	}
	return []byte(iconNames[i]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Icon) UnmarshalText(text []byte) error {
	for n, name := range iconNames {
		if name == string(text) {
			*i = Icon(n)
			return nil
		}
	}
	return fmt.Errorf("unknown trend icon %q", text)
}

// Variation is a change rounded to one decimal and its band.
type Variation struct {
	Pct  float64 `json:"pct"`
	Icon Icon    `json:"icon"`
}

// Trend holds the volume variation in percent and the score variation in
// points.
type Trend struct {
	Volume Variation `json:"volume"`
	Score  Variation `json:"score"`
}

// Snapshot is the part of an outcome that trends compare.
type Snapshot struct {
	VolumeTotal int
	Score       float64
}

// IconFor bands a variation: >=20 strong up, >=5 up, >-5 stable,
// >-20 down, otherwise strong down.
func IconFor(variation float64) Icon {
	switch {
	case variation >= 20:
		return StrongUp
	case variation >= 5:
		return Up
	case variation > -5:
		return Stable
	case variation > -20:
		return Down
	default:
		return StrongDown
	}
}

// VolumeVariation is the relative change in percent. A previous volume of
// zero yields 100 for any current volume, or 0 when both are zero.
func VolumeVariation(cur, prev int) float64 {
	if prev <= 0 {
		if cur > 0 {
			return 100
		}
		return 0
	}
	return float64(cur-prev) / float64(prev) * 100
}

// Compare diffs cur against prev. A nil prev is a new facet. Icons use the
// unrounded variations.
func Compare(cur Snapshot, prev *Snapshot) Trend {
	if prev == nil {
		return Trend{
			Volume: Variation{Icon: New},
			Score:  Variation{Icon: New},
		}
	}

	volume := VolumeVariation(cur.VolumeTotal, prev.VolumeTotal)
	score := cur.Score - prev.Score
	return Trend{
		Volume: Variation{Pct: scalar.Round(volume, 1), Icon: IconFor(volume)},
		Score:  Variation{Pct: scalar.Round(score, 1), Icon: IconFor(score)},
	}
}

// Apply compares every keyed snapshot of the current run with the same key
// in the previous one. A nil previous run yields no trends.
func Apply(current, previous map[string]Snapshot) map[string]Trend {
	if previous == nil {
		return nil
	}
	trends := make(map[string]Trend, len(current))
	for key, cur := range current {
		var prev *Snapshot
		if p, ok := previous[key]; ok {
			prev = &p
		}
		trends[key] = Compare(cur, prev)
	}
	return trends
}
