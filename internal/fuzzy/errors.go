package fuzzy

import "errors"

var (
	ErrTooManyValues  = errors.New("more values than declared variables")
	ErrLengthMismatch = errors.New("range and value lengths differ")
	ErrUnknownInput   = errors.New("unknown input variable")
	ErrUnknownOutput  = errors.New("unknown output variable")
	ErrUnknownState   = errors.New("unknown linguistic state")
)
