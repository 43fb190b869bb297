package cache

import (
	"context"
	"fmt"

	"github.com/bilgisen/faithcheck/internal/utils"
)

// Store keeps completed verifications for the current view generation.
// Entries never expire; Clear drops everything when the view changes.
type Store interface {
	Get(ctx context.Context, generation uint64, articleID string) ([]byte, bool, error)
	Put(ctx context.Context, generation uint64, articleID string, value []byte) error
	Clear(ctx context.Context) error
	Close() error
}

func entryKey(prefix string, generation uint64, articleID string) string {
	return fmt.Sprintf("%sgen:%d:%s", prefix, generation, utils.Hash(articleID))
}
