package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Resolution errors
const (
	// ErrCodeMissingProvider indicates no provider is registered for a key.
	ErrCodeMissingProvider ErrorCode = "MISSING_PROVIDER"
	// ErrCodeCyclicDependency indicates a key depends on itself transitively.
	ErrCodeCyclicDependency ErrorCode = "CYCLIC_DEPENDENCY"
	// ErrCodeTypeMismatch indicates a resolved value cannot be used where it is injected.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"
	// ErrCodeConstructionFailed indicates a factory or initializer returned an error.
	ErrCodeConstructionFailed ErrorCode = "CONSTRUCTION_FAILED"
)

// Configuration errors
const (
	// ErrCodeInvalidInjection indicates an injection was declared on an unsuitable function.
	ErrCodeInvalidInjection ErrorCode = "INVALID_INJECTION"
	// ErrCodeInvalidInput indicates invalid configuration or arguments.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var codeStatus = map[ErrorCode]int{
	ErrCodeMissingProvider:    404,
	ErrCodeCyclicDependency:   409,
	ErrCodeTypeMismatch:       422,
	ErrCodeConstructionFailed: 500,
	ErrCodeInvalidInjection:   400,
	ErrCodeInvalidInput:       400,
	ErrCodeInternal:           500,
}

// StatusForCode returns the HTTP status used when an error with this code is
// reported over HTTP. Unknown codes map to 500.
func StatusForCode(code ErrorCode) int {
	if s, ok := codeStatus[code]; ok {
		return s
	}
	return 500
}
