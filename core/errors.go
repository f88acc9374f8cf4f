// Package core provides fundamental corpus types and interfaces for the bitext framework.
package core

import (
	"errors"
	"strconv"
)

// Sentinel errors for corpus and evaluation operations.
var (
	ErrLengthMismatch = errors.New("source and target sentence counts differ")
	ErrEmptyCorpus    = errors.New("corpus has no sentence pairs")
	ErrCorpusNotFound = errors.New("corpus not found")
	ErrRunNotFound    = errors.New("evaluation run not found")
)

// ParseError carries line-level context for corpus parsing failures.
type ParseError struct {
	Line    int
	Text    string
	Message string
}

func (e *ParseError) Error() string {
	return "line " + strconv.Itoa(e.Line) + ": " + e.Message
}
