package ffi

import "github.com/bridgemesh/core/errs"

func errCancelled() error {
	return errs.New("gateway", errs.CodeCancelled, "call context cancelled")
}

func errTimeout() error {
	return errs.New("gateway", errs.CodeTimeout, "call context deadline exceeded")
}
