package trend

import (
	"encoding/json"
	"testing"
)

func TestIconFor(t *testing.T) {
	tests := []struct {
		variation float64
		want      Icon
	}{
		{50, StrongUp},
		{20, StrongUp},
		{19.9, Up},
		{5, Up},
		{4.9, Stable},
		{0, Stable},
		{-4.9, Stable},
		{-5, Down},
		{-19.9, Down},
		{-20, StrongDown},
		{-100, StrongDown},
	}
	for _, tt := range tests {
		if got := IconFor(tt.variation); got != tt.want {
			t.Errorf("IconFor(%v) = %v, want %v", tt.variation, got, tt.want)
		}
	}
}

func TestVolumeVariation(t *testing.T) {
	tests := []struct {
		cur, prev int
		want      float64
	}{
		{150, 100, 50},
		{50, 100, -50},
		{100, 100, 0},
		{10, 0, 100},
		{0, 0, 0},
	}
	for _, tt := range tests {
		if got := VolumeVariation(tt.cur, tt.prev); got != tt.want {
			t.Errorf("VolumeVariation(%d, %d) = %v, want %v", tt.cur, tt.prev, got, tt.want)
		}
	}
}

func TestCompare(t *testing.T) {
	got := Compare(Snapshot{VolumeTotal: 150, Score: 61.5}, &Snapshot{VolumeTotal: 100, Score: 58.2})

	if got.Volume.Pct != 50 || got.Volume.Icon != StrongUp {
		t.Errorf("Volume = %+v, want 50%% STRONG_UP", got.Volume)
	}
	if got.Score.Pct != 3.3 || got.Score.Icon != Stable {
		t.Errorf("Score = %+v, want 3.3 STABLE", got.Score)
	}
}

func TestCompare_IconUsesUnroundedValue(t *testing.T) {
	// 4.96 points rounds to 5.0 but stays in the stable band
	got := Compare(Snapshot{Score: 54.96}, &Snapshot{Score: 50})
	if got.Score.Pct != 5 {
		t.Errorf("Score.Pct = %v, want 5", got.Score.Pct)
	}
	if got.Score.Icon != Stable {
		t.Errorf("Score.Icon = %v, want STABLE", got.Score.Icon)
	}
}

func TestCompare_New(t *testing.T) {
	got := Compare(Snapshot{VolumeTotal: 300, Score: 40}, nil)
	want := Trend{Volume: Variation{Icon: New}, Score: Variation{Icon: New}}
	if got != want {
		t.Errorf("Compare(nil) = %+v, want %+v", got, want)
	}
}

func TestApply(t *testing.T) {
	current := map[string]Snapshot{
		"couleur":         {VolumeTotal: 150, Score: 60},
		"couleur+matiere": {VolumeTotal: 20, Score: 10},
	}

	if got := Apply(current, nil); got != nil {
		t.Errorf("Apply without a previous run = %v, want nil", got)
	}

	got := Apply(current, map[string]Snapshot{"couleur": {VolumeTotal: 100, Score: 60}})
	if got["couleur"].Volume.Icon != StrongUp || got["couleur"].Score.Icon != Stable {
		t.Errorf("couleur trend = %+v", got["couleur"])
	}
	if got["couleur+matiere"].Volume.Icon != New {
		t.Errorf("unknown key should be NEW, got %+v", got["couleur+matiere"])
	}
}

func TestIcon_JSON(t *testing.T) {
	data, err := json.Marshal(Variation{Pct: 12.5, Icon: Up})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"pct":12.5,"icon":"UP"}` {
		t.Errorf("Marshal() = %s", data)
	}

	var v Variation
	if err := json.Unmarshal([]byte(`{"pct":-30,"icon":"STRONG_DOWN"}`), &v); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if v.Icon != StrongDown || v.Pct != -30 {
		t.Errorf("Unmarshal() = %+v", v)
	}
	if err := v.Icon.UnmarshalText([]byte("SIDEWAYS")); err == nil {
		t.Error("expected error for unknown icon")
	}
	if New.Symbol() != "nouveau" || StrongUp.Symbol() != "↑" {
		t.Errorf("unexpected symbols %q %q", New.Symbol(), StrongUp.Symbol())
	}
}
