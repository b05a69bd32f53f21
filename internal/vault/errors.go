package vault

import "errors"

var (
	ErrEmptyPool              = errors.New("vault: empty pool")
	ErrZeroAmount             = errors.New("vault: zero amount")
	ErrInvalidUnitSize        = errors.New("vault: invalid unit size")
	ErrInvalidSupply          = errors.New("vault: supply does not divide by batch size")
	ErrOpeningNotStarted      = errors.New("vault: opening window not started")
	ErrPendingOpenRequest     = errors.New("vault: open request already pending")
	ErrSupplyExceeded         = errors.New("vault: supply exceeded")
	ErrInsufficientValue      = errors.New("vault: insufficient fee value")
	ErrNoPendingRequest       = errors.New("vault: no pending request")
	ErrRandomnessNotFulfilled = errors.New("vault: randomness not fulfilled")
	ErrNotAllowed             = errors.New("vault: entry point not allowed in current mode")
	ErrNotEligible            = errors.New("vault: identity not eligible")
	ErrUnauthorized           = errors.New("vault: unauthorized")
)
