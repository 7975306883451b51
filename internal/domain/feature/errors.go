package feature

import "errors"

// ErrUnknownColumn indicates a bundle declared a feature column this
// transform version does not produce.
var ErrUnknownColumn = errors.New("unknown feature column")
