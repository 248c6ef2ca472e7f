package ap2

import "errors"

// Error sentinels returned by mandate verification.
var (
	ErrCartHashMismatch         = errors.New("ap2: cart_hash does not match recomputed contents hash")
	ErrPmtHashMismatch          = errors.New("ap2: pmt_hash does not match recomputed contents hash")
	ErrTransactionDataMalformed = errors.New("ap2: transaction_data malformed")
)
