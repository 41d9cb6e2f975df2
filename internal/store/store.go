// Package store persists datasets and their datapoints and serves the paged
// listing queries behind the datapoint endpoints.
package store

import (
	"context"

	"github.com/evalboard/evalboard/internal/domain"
)

// Store is the persistence interface for datasets and datapoints.
type Store interface {
	CreateDataset(ctx context.Context, name string) error
	InsertDatapoint(ctx context.Context, dp *domain.Datapoint) error
	ListDatapoints(ctx context.Context, dataset string, limit, offset int) ([]domain.Datapoint, error)
	Close() error
}
