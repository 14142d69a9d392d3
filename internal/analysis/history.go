package analysis

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"facettes/internal/storage"
)

// History stores runs and returns the latest one of a category and gender.
type History interface {
	Previous(ctx context.Context, path, gender string) (*AnalysisResult, error)
	Save(ctx context.Context, result *AnalysisResult) error
}

// StoreHistory persists results as JSON in a storage.HistoryStore.
type StoreHistory struct {
	store *storage.HistoryStore
}

// NewStoreHistory wraps store.
func NewStoreHistory(store *storage.HistoryStore) *StoreHistory {
	return &StoreHistory{store: store}
}

// Previous returns the latest saved run, or nil when there is none.
func (h *StoreHistory) Previous(ctx context.Context, path, gender string) (*AnalysisResult, error) {
	rec, err := h.store.LatestRun(ctx, path, gender)
	if err != nil || rec == nil {
		return nil, err
	}
	return decodeRun(*rec)
}

// Save stores result under its run ID and generation time.
func (h *StoreHistory) Save(ctx context.Context, result *AnalysisResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode run: %w", err)
	}
	_, err = h.store.SaveRun(ctx, storage.RunRecord{
		ID:           result.RunID,
		CategoryPath: result.CategoryPath,
		Gender:       result.Gender,
		CreatedAt:    result.GeneratedAt,
		Payload:      payload,
	})
	return err
}

// Runs returns up to limit runs of path and gender, newest first.
func (h *StoreHistory) Runs(ctx context.Context, path, gender string, limit int) ([]*AnalysisResult, error) {
	recs, err := h.store.ListRuns(ctx, path, gender, limit)
	if err != nil {
		return nil, err
	}
	return decodeRuns(recs)
}

// Latest returns the newest run of every category and gender.
func (h *StoreHistory) Latest(ctx context.Context) ([]*AnalysisResult, error) {
	recs, err := h.store.LatestRuns(ctx)
	if err != nil {
		return nil, err
	}
	return decodeRuns(recs)
}

func decodeRuns(recs []storage.RunRecord) ([]*AnalysisResult, error) {
	results := make([]*AnalysisResult, 0, len(recs))
	for _, rec := range recs {
		r, err := decodeRun(rec)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

func decodeRun(rec storage.RunRecord) (*AnalysisResult, error) {
	var r AnalysisResult
	if err := json.Unmarshal(rec.Payload, &r); err != nil {
		return nil, fmt.Errorf("failed to decode run %s: %w", rec.ID, err)
	}
	if r.RunID == "" {
		r.RunID = rec.ID
	}
	return &r, nil
}
