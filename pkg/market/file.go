package market

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/mveldt/craftplan/pkg/errors"
)

// LoadFile reads board snapshots from a JSON file (an array of Board
// objects) and loads them into the given store. It backs the CLI's offline
// mode, where listings are exported by an external fetcher.
func LoadFile(ctx context.Context, path string, store Store, ttl time.Duration) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, errors.Wrap(errors.ErrCodeNotFound, err, "market data file %s", path)
		}
		return 0, errors.Wrap(errors.ErrCodeInternal, err, "reading market data file %s", path)
	}

	var boards []*Board
	if err := json.Unmarshal(data, &boards); err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "parsing market data file %s", path)
	}

	for _, board := range boards {
		if err := store.Put(ctx, board, ttl); err != nil {
			return 0, err
		}
	}
	return len(boards), nil
}
