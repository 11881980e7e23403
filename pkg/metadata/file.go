package metadata

import (
	"encoding/json"
	"os"

	"github.com/mveldt/craftplan/pkg/errors"
)

// LoadFile reads an item metadata table from a JSON file.
// The file holds a JSON array of item payloads in the flattened shape
// produced by Item.MarshalJSON.
func LoadFile(path string) ([]*Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "item data file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "reading item data file %s", path)
	}

	var items []*Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parsing item data file %s", path)
	}
	return items, nil
}

// LoadProvider reads an item table from disk and wraps it in a provider.
func LoadProvider(path string) (*StaticProvider, error) {
	items, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return NewStaticProvider(items), nil
}
