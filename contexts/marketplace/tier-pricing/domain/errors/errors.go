package errors

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrInvalidRange   = errors.New("invalid tier range")
	ErrInvalidPrice   = errors.New("invalid tier price")
	ErrUnpricedItem   = errors.New("no tier range covers item")
	ErrUnpricedTier   = errors.New("tier has no configured price")
	ErrNotOwner       = errors.New("caller is not the marketplace owner")
)
