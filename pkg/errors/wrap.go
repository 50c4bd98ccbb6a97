package errors

import stderrors "errors"

// As forwards to the standard library for callers importing this package as errors.
func As(err error, target any) bool { return stderrors.As(err, target) }
