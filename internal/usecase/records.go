package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"credit2cash/internal/domain"
)

// getJSON decodes key into v. It reports false when the key is absent and
// fails with domain.ErrCorruptRecord when the stored bytes do not decode.
func getJSON(ctx context.Context, kv KeyValueStore, key string, v any) (bool, error) {
	b, err := kv.Get(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("could not read %s: %w", key, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, fmt.Errorf("%w: %s: %v", domain.ErrCorruptRecord, key, err)
	}
	return true, nil
}

func putJSON(ctx context.Context, kv KeyValueStore, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("could not encode %s: %w", key, err)
	}
	if err := kv.Put(ctx, key, b); err != nil {
		return fmt.Errorf("could not write %s: %w", key, err)
	}
	return nil
}
