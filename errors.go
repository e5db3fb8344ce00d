package anim

import "errors"

var (
	ErrEmptyCurve      = errors.New("curve has no keys")
	ErrLengthMismatch  = errors.New("parallel curve arrays differ in length")
	ErrUnsortedKeys    = errors.New("curve keys are not strictly increasing")
	ErrStaleHandle     = errors.New("handle refers to a removed object")
	ErrNotRegistered   = errors.New("curve is not registered with clip")
	ErrComponentRange  = errors.New("component index out of range")
	ErrUnknownMode     = errors.New("unknown mode")
	ErrAlreadyAttached = errors.New("curve is already attached")
)
