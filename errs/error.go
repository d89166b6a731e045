package errs

import "fmt"

// CoreError is the typed error carried across every external surface: a
// component name, the code from the §7 taxonomy, a severity, a human
// message, and an optional wrapped cause. The human message MUST NOT leak
// policy internals or identity secrets - callers constructing one from
// policy/identity data are responsible for redaction before it reaches here.
type CoreError struct {
	Component string
	Code      Code
	Severity  Severity
	Message   string
	Cause     error
}

// New builds a CoreError with the code's default severity.
func New(component string, code Code, message string) *CoreError {
	return &CoreError{
		Component: component,
		Code:      code,
		Severity:  severityForCode(code),
		Message:   message,
	}
}

// Wrap builds a CoreError that preserves an underlying cause, per the
// gateway's BridgeCallFailed contract ("underlying cause preserved").
func Wrap(component string, code Code, message string, cause error) *CoreError {
	e := New(component, code, message)
	e.Cause = cause
	return e
}

// WithSeverity overrides the code's default severity, for cases where the
// same code carries different severities depending on call-site context
// (e.g. a QuotaExceeded during best-effort tracking vs. enforced quotas).
func (e *CoreError) WithSeverity(s Severity) *CoreError {
	e.Severity = s
	return e
}

func (e *CoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s[%s/%s]: %s: %s", e.Component, e.Code, e.Severity, e.Message, e.Cause.Error())
	}
	return fmt.Sprintf("%s[%s/%s]: %s", e.Component, e.Code, e.Severity, e.Message)
}

func (e *CoreError) Unwrap() error {
	return e.Cause
}

// Is allows errors.Is(err, errs.New(comp, code, "")) style matching on code
// alone, ignoring message and cause.
func (e *CoreError) Is(target error) bool {
	t, ok := target.(*CoreError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}
