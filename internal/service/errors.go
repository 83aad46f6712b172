package service

import "errors"

var (
	// ErrNoSession is returned by schedule edits before a schedule was
	// started or opened.
	ErrNoSession = errors.New("no schedule is open")
	// ErrNoDemand is returned when the reorder view is requested before
	// requirements were synced to it.
	ErrNoDemand = errors.New("no material requirements were synced")
)
