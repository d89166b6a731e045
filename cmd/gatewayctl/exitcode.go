package main

import "github.com/bridgemesh/core/errs"

// exitCodes maps a *errs.CoreError code onto a stable, one-for-one process
// exit code per §6's "non-zero codes map one-for-one onto the error
// taxonomy" contract. 0 is reserved for success.
var exitCodes = map[errs.Code]int{
	errs.CodeInvalidParameter:           1,
	errs.CodeNotInitialized:             2,
	errs.CodeAlreadyInitialized:         3,
	errs.CodeAlreadyRegistered:          4,
	errs.CodeUnknownLanguage:            5,
	errs.CodeUnknownLayer:               6,
	errs.CodeInvalidFormat:              7,
	errs.CodeBridgeLimitExceeded:        8,
	errs.CodeQuotaExceeded:              9,
	errs.CodeTooManyScopes:              10,
	errs.CodeTooManyRoles:               11,
	errs.CodeBridgeCallFailed:           12,
	errs.CodeTypeConversionFailed:       13,
	errs.CodeThreadAffinityViolation:    14,
	errs.CodeCancelled:                  15,
	errs.CodeTimeout:                    16,
	errs.CodeAuthenticationFailed:       17,
	errs.CodeAuthorizationDenied:        18,
	errs.CodeIdentityDisabled:           19,
	errs.CodeTokenExpired:               20,
	errs.CodeTopologyCorrupt:            21,
	errs.CodeInternalInvariantViolated:  22,
}

// exitCodeFor resolves err to its exit code. A *errs.CoreError uses the
// table above; any other non-nil error is an unmapped failure (99); nil is
// success (0).
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	if ce, ok := err.(*errs.CoreError); ok {
		if code, ok := exitCodes[ce.Code]; ok {
			return code
		}
	}
	return 99
}
