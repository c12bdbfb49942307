package questlog

import (
	"errors"
	"fmt"
)

// ErrPersistenceWriteFailed marks a failed save or clear of tracker state. The in-memory
// transition that triggered the write has already happened and stays authoritative.
var ErrPersistenceWriteFailed = errors.New("persistence write failed")

type OpError struct {
	Op  string
	Key TimerKey
	Err error
}

func (e *OpError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s timer %s: %v", e.Op, e.Key, e.Err)
}

func (e *OpError) Unwrap() []error {
	return []error{ErrPersistenceWriteFailed, e.Err}
}

func NewPersistenceError(op string, key TimerKey, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Key: key, Err: err}
}
