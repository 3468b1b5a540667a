package library

import "errors"

// Sentinel errors for the circulation operations. Handlers match these with
// errors.Is to decide messaging; none of them indicate partial state changes.
var (
	ErrBookNotFound        = errors.New("book not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrNoCopiesAvailable   = errors.New("no copies available")
	ErrNotCheckedOut       = errors.New("book is not checked out by this user")
	ErrInvalidRating       = errors.New("rating must be between 1 and 5")
	ErrInvalidPayment      = errors.New("payment must be a positive amount")
	ErrPaymentExceedsFines = errors.New("payment exceeds outstanding fines")
	ErrAuthFailed          = errors.New("invalid password")
)
