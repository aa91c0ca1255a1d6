package simpleswap

import "errors"

// Error is a stable, tagged failure of a pool operation. Callers branch on
// the tag; it is part of the public contract and never changes.
type Error struct {
	Tag  string
	code int
}

func (e *Error) Error() string {
	return "SimpleSwap: " + e.Tag
}

// ErrorCode implements the go-ethereum rpc.Error interface.
func (e *Error) ErrorCode() int {
	return e.code
}

// ErrorData implements the go-ethereum rpc.DataError interface.
func (e *Error) ErrorData() interface{} {
	return e.Tag
}

var (
	ErrExpired                     = &Error{Tag: "EXPIRED", code: -32010}
	ErrIdenticalAddresses          = &Error{Tag: "IDENTICAL_ADDRESSES", code: -32011}
	ErrZeroAddress                 = &Error{Tag: "ZERO_ADDRESS", code: -32012}
	ErrInsufficientAOrB            = &Error{Tag: "INSUFFICIENT_A_OR_B", code: -32013}
	ErrNotEnoughUserLiquidity      = &Error{Tag: "NOT_ENOUGH_USER_LIQUIDITY", code: -32014}
	ErrInsufficientOutputAmount    = &Error{Tag: "INSUFFICIENT_OUTPUT_AMOUNT", code: -32015}
	ErrInvalidPath                 = &Error{Tag: "INVALID_PATH", code: -32016}
	ErrInsufficientLiquidity       = &Error{Tag: "INSUFFICIENT_LIQUIDITY", code: -32017}
	ErrInsufficientInputAmount     = &Error{Tag: "INSUFFICIENT_INPUT_AMOUNT", code: -32018}
	ErrNoLiquidity                 = &Error{Tag: "NO_LIQUIDITY", code: -32019}
	ErrOverflow                    = &Error{Tag: "OVERFLOW", code: -32020}
	ErrInvalidAmount               = &Error{Tag: "INVALID_AMOUNT", code: -32021}
	ErrInsufficientLiquidityMinted = &Error{Tag: "INSUFFICIENT_LIQUIDITY_MINTED", code: -32022}
	ErrTransferFailed              = &Error{Tag: "TRANSFER_FAILED", code: -32023}
	ErrVaultAccount                = &Error{Tag: "VAULT_ACCOUNT", code: -32024}
)

// Errors lists every tagged error in code order.
var Errors = []*Error{
	ErrExpired,
	ErrIdenticalAddresses,
	ErrZeroAddress,
	ErrInsufficientAOrB,
	ErrNotEnoughUserLiquidity,
	ErrInsufficientOutputAmount,
	ErrInvalidPath,
	ErrInsufficientLiquidity,
	ErrInsufficientInputAmount,
	ErrNoLiquidity,
	ErrOverflow,
	ErrInvalidAmount,
	ErrInsufficientLiquidityMinted,
	ErrTransferFailed,
	ErrVaultAccount,
}

// TagOf returns the tag of the first *Error in err's chain, or "" if there is none.
func TagOf(err error) string {
	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Tag
	}
	return ""
}

// AsError returns the first *Error in err's chain.
func AsError(err error) (*Error, bool) {
	var tagged *Error
	ok := errors.As(err, &tagged)
	return tagged, ok
}
