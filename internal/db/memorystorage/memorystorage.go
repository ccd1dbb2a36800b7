package memorystorage

import (
	"context"

	"github.com/patric-chuzhbe/libloans/internal/db/jsondb"
)

// MemoryStorage is a JSONDB that is never persisted.
type MemoryStorage struct {
	*jsondb.JSONDB
}

func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		JSONDB: jsondb.Empty(),
	}, nil
}

func (theStorage *MemoryStorage) Close() error {
	return nil
}

func (theStorage *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}
