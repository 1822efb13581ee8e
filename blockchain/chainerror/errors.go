// Copyright 2024 The ledgerchain Authors
// This file is part of the ledgerchain library.
//
// The ledgerchain library is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

// Package chainerror holds the structured error taxonomy shared by the
// state, consensus, vm and blockchain packages. Every non-fatal failure
// the core surfaces carries one of these Kinds so callers can branch on
// errors.Is/errors.As instead of matching strings.
package chainerror

import "fmt"

// Kind discriminates the error taxonomy of the ledger engine.
type Kind int

const (
	_ Kind = iota
	InvalidNumber
	InvalidParent
	InvalidPoW
	InvalidNonce
	InsufficientBalance
	InvalidTransaction
	VMError
	Revert
	MiningTimeout
)

func (k Kind) String() string {
	switch k {
	case InvalidNumber:
		return "InvalidNumber"
	case InvalidParent:
		return "InvalidParent"
	case InvalidPoW:
		return "InvalidPoW"
	case InvalidNonce:
		return "InvalidNonce"
	case InsufficientBalance:
		return "InsufficientBalance"
	case InvalidTransaction:
		return "InvalidTransaction"
	case VMError:
		return "VMError"
	case Revert:
		return "Revert"
	case MiningTimeout:
		return "MiningTimeout"
	default:
		return "Unknown"
	}
}

// Error is a structured failure carrying a Kind and a human-readable
// reason.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Is supports errors.Is(err, chainerror.Sentinel(chainerror.InvalidNonce))
// style checks: any *Error target with the same Kind matches.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New builds an *Error of the given kind. Pass a Kind alone (via
// Sentinel) to build an errors.Is-comparable target.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// Sentinel returns a bare Error of the given kind with no reason, for use
// as the target of errors.Is.
func Sentinel(kind Kind) *Error {
	return &Error{Kind: kind}
}
