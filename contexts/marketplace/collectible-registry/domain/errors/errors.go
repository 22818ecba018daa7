package errors

import "errors"

var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrUnknownItem      = errors.New("collectible does not exist")
	ErrNotHolder        = errors.New("caller does not hold the collectible")
	ErrNotOwner         = errors.New("caller is not the marketplace owner")
	ErrCapacityExceeded = errors.New("collectible id space exhausted")
)
