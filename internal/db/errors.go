package db

import "errors"

// Sentinel errors shared by every driver.
var (
	ErrKeyNotFound   = errors.New("db: key not found")
	ErrIndexNotFound = errors.New("db: index not found")
	ErrIndexExists   = errors.New("db: index already exists")
)

// Op names the failed command in errors. The bolt driver reuses the Valkey names
// so log lines read the same regardless of the configured driver.
const (
	OpCreateIndex = "FT.CREATE"
	OpDropIndex   = "FT.DROPINDEX"
	OpIndexInfo   = "FT.INFO"
	OpSearch      = "FT.SEARCH"
	OpDel         = "DEL"
	OpHGetAll     = "HGETALL"
	OpHSet        = "HSET"
	OpScan        = "SCAN"
	OpGet         = "GET"
	OpSet         = "SET"
	OpSetNX       = "SET NX"
	OpSwap        = "SET GET"
)

// Error wraps a driver failure with the operation that caused it.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// OpOf returns the operation of the outermost *Error in err's chain, or "".
func OpOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Op
	}
	return ""
}
