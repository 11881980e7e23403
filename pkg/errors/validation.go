package errors

import (
	"strings"
	"unicode"
)

// ValidateItemID validates a game item identifier.
// Item ids are positive integers assigned by the game data files; zero and
// negative values never refer to a real item.
func ValidateItemID(id int) error {
	if id <= 0 {
		return New(ErrCodeInvalidTarget, "item id must be positive, got %d", id)
	}
	return nil
}

// ValidateQuantity validates a requested item quantity.
// The upper bound is a sanity limit, not a game rule: a single plan asking
// for more than a million units is almost certainly caller error.
func ValidateQuantity(qty int) error {
	if qty <= 0 {
		return New(ErrCodeInvalidTarget, "quantity must be positive, got %d", qty)
	}
	const maxQuantity = 1_000_000
	if qty > maxQuantity {
		return New(ErrCodeInvalidTarget, "quantity too large (max %d)", maxQuantity)
	}
	return nil
}

// ValidateWorldName validates a world (server) name.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - Maximum length of 64 characters
func ValidateWorldName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidWorld, "world name cannot be empty")
	}

	if len(name) > 64 {
		return New(ErrCodeInvalidWorld, "world name too long (max 64 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidWorld, "world name contains invalid control characters")
		}
	}

	return nil
}

// ValidateRegion validates a data-center or world region identifier used as
// a market cache key component. Rejects characters that would break key
// namespacing in the cache backends.
func ValidateRegion(region string) error {
	if region == "" {
		return New(ErrCodeInvalidRegion, "region cannot be empty")
	}

	if len(region) > 64 {
		return New(ErrCodeInvalidRegion, "region too long (max 64 characters)")
	}

	for _, r := range region {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidRegion, "region contains invalid control characters")
		}
	}

	if strings.ContainsAny(region, ":/\\") {
		return New(ErrCodeInvalidRegion, "region cannot contain key separator characters")
	}

	return nil
}
