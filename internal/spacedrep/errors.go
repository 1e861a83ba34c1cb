package spacedrep

import "github.com/pkg/errors"

var (
	// ErrInvalidRating is returned for a rating outside Again..Easy.
	ErrInvalidRating = errors.New("invalid rating")
	// ErrItemNotFound is returned by ItemRepo implementations for an
	// unknown item id.
	ErrItemNotFound = errors.New("item not found")
)
