package store_test

import (
	"context"
	"testing"

	"github.com/evalboard/evalboard/internal/domain"
	"github.com/evalboard/evalboard/internal/pagination"
	"github.com/evalboard/evalboard/tests/helpers"
)

func TestListDatapointsPaging(t *testing.T) {
	s := helpers.NewTestSQLiteStore(t)
	helpers.SeedDatapoints(t, s, "haiku-examples", 5)
	ctx := context.Background()

	page, err := s.ListDatapoints(ctx, "haiku-examples", 3, 0)
	if err != nil {
		t.Fatalf("ListDatapoints: %v", err)
	}
	if len(page) != 3 {
		t.Fatalf("expected 3 datapoints, got %d", len(page))
	}
	if page[0].ID != "dp_0000" || page[2].ID != "dp_0002" {
		t.Fatalf("unexpected ordering: %+v", page)
	}

	page, err = s.ListDatapoints(ctx, "haiku-examples", 3, 3)
	if err != nil {
		t.Fatalf("ListDatapoints: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 datapoints on last page, got %d", len(page))
	}

	page, err = s.ListDatapoints(ctx, "haiku-examples", 3, 10)
	if err != nil {
		t.Fatalf("ListDatapoints: %v", err)
	}
	if len(page) != 0 {
		t.Fatalf("expected empty page past the end, got %d", len(page))
	}
}

func TestListDatapointsScopedToDataset(t *testing.T) {
	s := helpers.NewTestSQLiteStore(t)
	helpers.SeedDatapoints(t, s, "set-a", 2)

	ctx := context.Background()
	if err := s.CreateDataset(ctx, "set-b"); err != nil {
		t.Fatalf("CreateDataset: %v", err)
	}
	if err := s.InsertDatapoint(ctx, &domain.Datapoint{
		ID: "other_0", DatasetName: "set-b", Input: "x",
	}); err != nil {
		t.Fatalf("InsertDatapoint: %v", err)
	}

	page, err := s.ListDatapoints(ctx, "set-a", 10, 0)
	if err != nil {
		t.Fatalf("ListDatapoints: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 datapoints in set-a, got %d", len(page))
	}
}

func TestDrainAllAgainstSQLite(t *testing.T) {
	s := helpers.NewTestSQLiteStore(t)
	helpers.SeedDatapoints(t, s, "haiku-examples", 7)

	all, err := pagination.DrainAll(context.Background(), 3,
		func(ctx context.Context, limit, offset int) ([]domain.Datapoint, error) {
			return s.ListDatapoints(ctx, "haiku-examples", limit, offset)
		})
	if err != nil {
		t.Fatalf("DrainAll: %v", err)
	}
	if len(all) != 7 {
		t.Fatalf("expected 7 datapoints, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].ID >= all[i].ID {
			t.Fatalf("drained items out of order at %d: %+v", i, all)
		}
	}
}
