package payment

import "errors"

var (
	// ErrInvalidCredentials covers every authentication failure. Unknown
	// client key and wrong salt are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid client credentials")

	// ErrAccountSuspended means the client's unpaid commission balance
	// crossed its suspend threshold, or the account was suspended manually.
	ErrAccountSuspended = errors.New("account suspended")

	// ErrDuplicateOrder means the client already submitted this order_id.
	ErrDuplicateOrder = errors.New("duplicate order id")

	// ErrValidation wraps request-shape failures (amount bounds, missing
	// fields). The wrapped detail is safe to show merchants.
	ErrValidation = errors.New("validation failed")

	// ErrTransactionNotFound means the transaction id does not exist or
	// belongs to another client.
	ErrTransactionNotFound = errors.New("transaction not found")
)
