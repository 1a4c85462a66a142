package core

import "errors"

// Common errors.
var (
	// ErrNoSuchObject is returned when a target identifier is absent.
	ErrNoSuchObject = errors.New("no such object")
	// ErrNotAnEntity is returned on property access or mutation of a Scalar.
	ErrNotAnEntity = errors.New("not an entity")
	// ErrPathBroken is returned when an intermediate path segment does not resolve to an entity.
	ErrPathBroken = errors.New("path broken")
	// ErrMalformedTransaction is returned when a buffer cannot be decoded.
	ErrMalformedTransaction = errors.New("malformed transaction")
	// ErrConnectionIO wraps socket read/write failures.
	ErrConnectionIO = errors.New("connection i/o")
	// ErrStorageIO wraps log open/append failures. It is fatal to the executor.
	ErrStorageIO = errors.New("storage i/o")
)
