package server

import (
	"github.com/defistate/simpleswap-go/protocols/simpleswap"
)

// rpcError carries an exchange error tag to the JSON-RPC error object: the
// tag's code as "code" and the tag itself as "data".
type rpcError struct {
	err  error
	code int
	tag  string
}

func (e *rpcError) Error() string          { return e.err.Error() }
func (e *rpcError) ErrorCode() int         { return e.code }
func (e *rpcError) ErrorData() interface{} { return e.tag }
func (e *rpcError) Unwrap() error          { return e.err }

// toRPCError surfaces the tag of a wrapped *simpleswap.Error. The rpc
// package only inspects the top-level error, so wrapping hides the code.
func toRPCError(err error) error {
	if err == nil {
		return nil
	}
	if tagged, ok := simpleswap.AsError(err); ok {
		return &rpcError{err: err, code: tagged.ErrorCode(), tag: tagged.Tag}
	}
	return err
}
