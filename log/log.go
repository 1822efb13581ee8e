// Copyright 2024 The ledgerchain Authors
// This file is part of the ledgerchain library.
//
// The ledgerchain library is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

// Package log provides module-scoped loggers built on go-ethereum/log,
// handing out a package-level logger per module instead of a single
// global one.
package log

import (
	"log/slog"
	"os"

	gethlog "github.com/ethereum/go-ethereum/log"
)

// Module identifies the subsystem a logger belongs to, used only for the
// "module" key attached to every record it emits.
type Module string

const (
	State     Module = "state"
	Chain     Module = "chain"
	Consensus Module = "consensus"
	VM        Module = "vm"
	Miner     Module = "miner"
	CLI       Module = "cli"
)

var handler = gethlog.NewTerminalHandlerWithLevel(os.Stderr, slog.LevelInfo, false)

// NewModuleLogger returns a logger that tags every record with the given
// module name.
func NewModuleLogger(m Module) gethlog.Logger {
	return gethlog.NewLogger(handler).With("module", string(m))
}

// SetLevel adjusts the verbosity of every logger created afterwards,
// used by cmd/ledgerd's --verbose flag. Loggers created before the call,
// including every package-level module logger, keep their Info level.
func SetLevel(lvl slog.Level) {
	handler = gethlog.NewTerminalHandlerWithLevel(os.Stderr, lvl, false)
	gethlog.SetDefault(gethlog.NewLogger(handler))
}
