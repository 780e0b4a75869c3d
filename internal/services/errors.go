package services

import "errors"

// ErrForbidden is returned when the caller is authenticated but lacks the
// rights to perform the operation.
var ErrForbidden = errors.New("insufficient permissions")
