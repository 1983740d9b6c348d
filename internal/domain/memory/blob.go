package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pawdiary/pawdiary/internal/storage"
)

// blob is a JSON object of entry lists kept under one storage key.
type blob[T any] struct {
	store  storage.Store
	key    string
	logger *slog.Logger
}

// load returns the stored map. Malformed JSON is logged, deleted and read as empty.
func (b blob[T]) load(ctx context.Context) (map[string][]T, error) {
	raw, err := b.store.Get(ctx, b.key)
	if errors.Is(err, storage.ErrNotFound) {
		return map[string][]T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", b.key, err)
	}

	out := map[string][]T{}
	if err := json.Unmarshal(raw, &out); err != nil {
		b.logger.Warn("discarding corrupted usage memory", "key", b.key, "error", err)
		if derr := b.store.Delete(ctx, b.key); derr != nil {
			b.logger.Warn("failed to delete corrupted usage memory", "key", b.key, "error", derr)
		}
		return map[string][]T{}, nil
	}
	return out, nil
}

func (b blob[T]) save(ctx context.Context, m map[string][]T) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", b.key, err)
	}
	if err := b.store.Set(ctx, b.key, raw); err != nil {
		return fmt.Errorf("writing %s: %w", b.key, err)
	}
	return nil
}
