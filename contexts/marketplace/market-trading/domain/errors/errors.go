package errors

import "errors"

var (
	ErrInvalidRequest         = errors.New("invalid request")
	ErrUnknownListing         = errors.New("market item does not exist")
	ErrAlreadySold            = errors.New("market item already sold")
	ErrInsufficientPayment    = errors.New("not enough token")
	ErrInsufficientFunds      = errors.New("wallet balance too low")
	ErrMarketNotConfigured    = errors.New("market configuration incomplete")
	ErrNotOwner               = errors.New("caller is not the marketplace owner")
	ErrNotHolder              = errors.New("seller does not hold the collectible")
	ErrSettlementInProgress   = errors.New("settlement already in progress for item")
	ErrInvalidRoyaltyPercent  = errors.New("royalty percent out of range")
	ErrIdempotencyKeyRequired = errors.New("idempotency key required")
	ErrIdempotencyConflict    = errors.New("idempotency key conflict")
)
