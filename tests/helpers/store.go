package helpers

import (
	"context"
	"fmt"
	"testing"

	"github.com/evalboard/evalboard/internal/domain"
	"github.com/evalboard/evalboard/internal/store"
)

func NewTestSQLiteStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

// SeedDatapoints inserts n sequential datapoints into the dataset.
func SeedDatapoints(t *testing.T, s *store.SQLiteStore, dataset string, n int) {
	t.Helper()

	ctx := context.Background()
	if err := s.CreateDataset(ctx, dataset); err != nil {
		t.Fatalf("CreateDataset: %v", err)
	}
	for i := 0; i < n; i++ {
		dp := &domain.Datapoint{
			ID:          fmt.Sprintf("dp_%04d", i),
			DatasetName: dataset,
			Input:       fmt.Sprintf("input %d", i),
		}
		if err := s.InsertDatapoint(ctx, dp); err != nil {
			t.Fatalf("InsertDatapoint: %v", err)
		}
	}
}
