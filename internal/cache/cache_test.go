package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemory_GetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Hour)

	if _, ok, _ := m.Get(ctx, "semrush:fr:robe femme"); ok {
		t.Fatal("empty store should miss")
	}

	if err := m.Set(ctx, "semrush:fr:robe femme", []byte(`{"volume":1200}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, ok, err := m.Get(ctx, "semrush:fr:robe femme")
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v; want hit", ok, err)
	}
	if string(got) != `{"volume":1200}` {
		t.Errorf("Get() = %s", got)
	}

	_ = m.Set(ctx, "semrush:fr:robe femme", []byte(`{"volume":5}`))
	got, _, _ = m.Get(ctx, "semrush:fr:robe femme")
	if string(got) != `{"volume":5}` {
		t.Errorf("Set should overwrite, got %s", got)
	}
}

func TestMemory_ExpiryEvicts(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	m := NewMemory(time.Hour)
	m.SetClock(func() time.Time { return now })
	_ = m.Set(ctx, "k", []byte("v"))

	now = now.Add(time.Hour)
	if _, ok, _ := m.Get(ctx, "k"); !ok {
		t.Error("entry should still be valid exactly at expiry")
	}

	now = now.Add(time.Second)
	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Error("entry should be expired")
	}
	if s, _ := m.Stats(ctx); s.EntryCount != 0 {
		t.Errorf("expired read should evict, %d entries left", s.EntryCount)
	}
}

func TestMemory_PurgeAndStats(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)

	_ = m.Set(ctx, "semrush:fr:a", []byte("12345"))
	_ = m.Set(ctx, "semrush:fr:b", []byte("123"))
	_ = m.Set(ctx, "suggest:fr:fr:a", []byte("1"))

	s, _ := m.Stats(ctx)
	if s.EntryCount != 3 || s.TotalSizeBytes != 9 {
		t.Errorf("Stats() = %+v, want 3 entries / 9 bytes", s)
	}

	n, _ := m.Purge(ctx, "semrush:")
	if n != 2 {
		t.Errorf("Purge(semrush:) = %d, want 2", n)
	}
	if keys := m.Keys(); len(keys) != 1 || keys[0] != "suggest:fr:fr:a" {
		t.Errorf("remaining keys = %v", keys)
	}

	n, _ = m.Purge(ctx, "")
	if n != 1 {
		t.Errorf("Purge(\"\") = %d, want 1", n)
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Hour)

	type metrics struct {
		Volume int     `json:"volume"`
		CPC    float64 `json:"cpc"`
	}

	if err := SetJSON(ctx, m, "k", metrics{Volume: 880, CPC: 0.45}); err != nil {
		t.Fatalf("SetJSON failed: %v", err)
	}
	var got metrics
	ok, err := GetJSON(ctx, m, "k", &got)
	if err != nil || !ok {
		t.Fatalf("GetJSON() = %v, %v", ok, err)
	}
	if got.Volume != 880 || got.CPC != 0.45 {
		t.Errorf("GetJSON() decoded %+v", got)
	}

	_ = m.Set(ctx, "bad", []byte("{"))
	if ok, _ := GetJSON(ctx, m, "bad", &got); ok {
		t.Error("undecodable value should be a miss")
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("semrush:fr:robe femme")
	if len(a) != 64 {
		t.Errorf("fingerprint length = %d, want 64", len(a))
	}
	if a != Fingerprint("semrush:fr:robe femme") {
		t.Error("fingerprint should be deterministic")
	}
	if a == Fingerprint("semrush:fr:robe homme") {
		t.Error("different keys should not collide")
	}
}
