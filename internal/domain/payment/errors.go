package payment

import "errors"

var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrAlreadyApproved = errors.New("payment already approved")
)
