// Copyright 2024 The ledgerchain Authors
// This file is part of the ledgerchain library.
//
// The ledgerchain library is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

// Package pow implements the hex-leading-zero-count proof-of-work seal
// used to finalize ledgerchain blocks.
package pow

import (
	"time"

	"github.com/coreledger/ledgerchain/blockchain/chainerror"
	"github.com/coreledger/ledgerchain/blockchain/types"
	ledgerlog "github.com/coreledger/ledgerchain/log"
)

var logger = ledgerlog.NewModuleLogger(ledgerlog.Consensus)

// MaxAttempts bounds how long Mine will spin before giving up, surfaced
// as a recoverable error rather than a process abort.
const MaxAttempts = 10_000_000

// ProgressLogInterval controls how often Mine emits a debug progress log
// line while searching for a valid nonce.
const ProgressLogInterval = 100_000

// Result carries the statistics of a completed mining run.
type Result struct {
	Attempts uint64
	Elapsed  time.Duration
}

// DefaultDifficulty is the difficulty a Sealer mines at when no
// WithDifficulty option is supplied.
const DefaultDifficulty uint32 = 1

// Sealer wraps a configured difficulty for repeated mining calls, so
// callers that seal many blocks in a row don't have to thread a
// difficulty value through every call site.
type Sealer struct {
	difficulty uint32
}

// Option configures a Sealer.
type Option func(*Sealer)

// WithDifficulty overrides the difficulty a Sealer mines at.
func WithDifficulty(difficulty uint32) Option {
	return func(s *Sealer) { s.difficulty = difficulty }
}

// NewSealer returns a Sealer mining at DefaultDifficulty unless
// overridden by an option.
func NewSealer(opts ...Option) *Sealer {
	s := &Sealer{difficulty: DefaultDifficulty}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Difficulty returns the difficulty the Sealer is configured to mine at.
func (s *Sealer) Difficulty() uint32 {
	return s.difficulty
}

// Mine seals b at the Sealer's configured difficulty.
func (s *Sealer) Mine(b *types.Block) (*Result, error) {
	return Mine(b, s.difficulty)
}

// Mine searches for a nonce on b that makes CalculateHash's hex encoding
// begin with `difficulty` leading zero characters, setting b.Nonce and
// b.Hash on success. It fails with chainerror.MiningTimeout if no such
// nonce is found within MaxAttempts tries.
func Mine(b *types.Block, difficulty uint32) (*Result, error) {
	start := time.Now()
	var attempts uint64

	logger.Debug("mining block", "number", b.Number, "difficulty", difficulty)

	for {
		hash := b.CalculateHash()
		attempts++

		if attempts%ProgressLogInterval == 0 {
			logger.Debug("mining in progress", "attempts", attempts, "hash", hash)
		}

		if hasLeadingZeroHexDigits(hash[:], difficulty) {
			b.Hash = &hash
			b.Difficulty = difficulty
			elapsed := time.Since(start)
			logger.Info("block mined", "number", b.Number, "nonce", b.Nonce,
				"hash", hash, "attempts", attempts, "elapsed", elapsed)
			return &Result{Attempts: attempts, Elapsed: elapsed}, nil
		}

		b.Nonce++

		if attempts > MaxAttempts {
			return nil, chainerror.New(chainerror.MiningTimeout,
				"mining block %d exceeded %d attempts at difficulty %d", b.Number, MaxAttempts, difficulty)
		}
	}
}

// IsValidProof reports whether b.Hash's hex encoding carries at least
// `difficulty` leading zero characters. A nil Hash never satisfies any
// difficulty.
func IsValidProof(b *types.Block, difficulty uint32) bool {
	if b.Hash == nil {
		return false
	}
	return hasLeadingZeroHexDigits(b.Hash[:], difficulty)
}

// hasLeadingZeroHexDigits reports whether the hex representation of h
// begins with at least n '0' characters, checking nibble by nibble so no
// intermediate string allocation is needed on the hot mining loop.
func hasLeadingZeroHexDigits(h []byte, n uint32) bool {
	for i := uint32(0); i < n; i++ {
		byteIdx := i / 2
		if int(byteIdx) >= len(h) {
			return false
		}
		b := h[byteIdx]
		var nibble byte
		if i%2 == 0 {
			nibble = b >> 4
		} else {
			nibble = b & 0x0f
		}
		if nibble != 0 {
			return false
		}
	}
	return true
}
