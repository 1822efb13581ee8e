// Copyright 2024 The ledgerchain Authors
// This file is part of the ledgerchain library.
//
// The ledgerchain library is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

// ledgerd is the command-line interface to a single in-process
// ledgerchain instance: genesis funding, mining, transfers, contract
// deployment and calls, validation, and stats reporting, all against a
// chain held only in the process's own memory.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/coreledger/ledgerchain/blockchain"
	"github.com/coreledger/ledgerchain/blockchain/types"
	"github.com/coreledger/ledgerchain/internal/contracts"
	ledgerlog "github.com/coreledger/ledgerchain/log"
	"github.com/coreledger/ledgerchain/work"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/urfave/cli/v2"
)

var logger = ledgerlog.NewModuleLogger(ledgerlog.CLI)

func main() {
	app := &cli.App{
		Name:  "ledgerd",
		Usage: "a small account-based blockchain engine with proof-of-work sealing and EVM contract execution",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Usage: "enable debug logging on the default logger (module loggers stay at Info)"},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				ledgerlog.SetLevel(slog.LevelDebug)
			}
			return nil
		},
		Commands: []*cli.Command{
			genesisCommand,
			mineCommand,
			transferCommand,
			deployCommand,
			callCommand,
			setCommand,
			validateCommand,
			statsCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error("ledgerd exited with error", "err", err)
		os.Exit(1)
	}
}

// demoChain builds a fresh chain and funds a small set of well-known
// addresses, standing in for a persisted chain a long-lived daemon
// would otherwise load from disk.
func demoChain() *blockchain.Blockchain {
	chain := blockchain.New()
	chain.State.SetBalance(demoAddress(1), uint256.NewInt(1_000_000_000_000_000_000))
	chain.State.SetBalance(demoAddress(2), uint256.NewInt(1_000_000_000_000_000_000))
	return chain
}

func demoAddress(b byte) common.Address {
	var a common.Address
	for i := range a {
		a[i] = b
	}
	return a
}

var genesisCommand = &cli.Command{
	Name:  "genesis",
	Usage: "print the genesis block of a freshly created chain",
	Action: func(c *cli.Context) error {
		chain := demoChain()
		genesis := chain.Blocks[0]
		fmt.Printf("genesis block %d, hash %s, gas limit %d\n", genesis.Number, genesis.Hash, genesis.GasLimit)
		return nil
	},
}

var mineCommand = &cli.Command{
	Name:  "mine",
	Usage: "mine an empty block at the given difficulty",
	Flags: []cli.Flag{
		&cli.Uint64Flag{Name: "difficulty", Value: 1},
	},
	Action: func(c *cli.Context) error {
		chain := demoChain()
		miner := work.New(demoAddress(9))

		block, err := miner.MineBlock(chain, nil, uint32(c.Uint64("difficulty")))
		if err != nil {
			return err
		}
		fmt.Printf("mined block %d, hash %s\n", block.Number, block.Hash)
		return nil
	},
}

var transferCommand = &cli.Command{
	Name:  "transfer",
	Usage: "mine a block carrying a single value transfer from demo address 1 to demo address 2",
	Flags: []cli.Flag{
		&cli.Uint64Flag{Name: "amount", Value: 1000},
		&cli.Uint64Flag{Name: "difficulty", Value: 1},
	},
	Action: func(c *cli.Context) error {
		chain := demoChain()
		from, to := demoAddress(1), demoAddress(2)

		tx := types.NewTransfer(from, to, uint256.NewInt(c.Uint64("amount")), chain.State.NonceOf(from))
		tx.SetHash()

		miner := work.New(demoAddress(9))
		block, err := miner.MineBlock(chain, []*types.Transaction{tx}, uint32(c.Uint64("difficulty")))
		if err != nil {
			return err
		}
		fmt.Printf("mined block %d with transfer %s\n", block.Number, tx.Summary())
		return nil
	},
}

var deployCommand = &cli.Command{
	Name:  "deploy",
	Usage: "deploy the bundled SimpleStorage contract from demo address 1 (each invocation starts a fresh in-memory chain; the address it prints is not reachable by a later call/set invocation in a separate process)",
	Action: func(c *cli.Context) error {
		chain := demoChain()
		from := demoAddress(1)

		addr, outcome, err := chain.DeployContract(from, contracts.SimpleStorageBytecode(), nil, new(uint256.Int))
		if err != nil {
			return err
		}
		fmt.Printf("deployed contract at %s, gas used %d\n", addr, outcome.GasUsed)
		return nil
	},
}

var callCommand = &cli.Command{
	Name:  "call",
	Usage: "view-call get() on the bundled SimpleStorage contract at the given address (runs against a fresh in-memory chain, not the one any prior deploy/set invocation used)",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "address", Required: true},
	},
	Action: func(c *cli.Context) error {
		chain := demoChain()
		contract := common.HexToAddress(c.String("address"))

		data, err := chain.ViewCall(demoAddress(1), contract, contracts.EncodeGetCall())
		if err != nil {
			return err
		}
		fmt.Printf("returned %d bytes: %x\n", len(data), data)
		return nil
	},
}

var setCommand = &cli.Command{
	Name:  "set",
	Usage: "mine a block calling SimpleStorage.set(value) at the given address, then read it back (runs against a fresh in-memory chain, not the one any prior deploy invocation used)",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "address", Required: true},
		&cli.Uint64Flag{Name: "value", Value: 42},
		&cli.Uint64Flag{Name: "difficulty", Value: 1},
	},
	Action: func(c *cli.Context) error {
		chain := demoChain()
		from := demoAddress(1)
		contract := common.HexToAddress(c.String("address"))

		outcome, err := chain.CallContract(from, contract, contracts.EncodeSetCall(uint256.NewInt(c.Uint64("value"))), new(uint256.Int))
		if err != nil {
			return err
		}
		fmt.Printf("set() gas used %d, success %v\n", outcome.GasUsed, outcome.Success)

		data, err := chain.ViewCall(from, contract, contracts.EncodeGetCall())
		if err != nil {
			return err
		}
		fmt.Printf("get() -> %s\n", contracts.DecodeGetResult(data).String())
		return nil
	},
}

var validateCommand = &cli.Command{
	Name:  "validate",
	Usage: "mine three blocks and validate the resulting chain",
	Action: func(c *cli.Context) error {
		chain := demoChain()
		miner := work.New(demoAddress(9))
		for i := 0; i < 3; i++ {
			if _, err := miner.MineBlock(chain, nil, 1); err != nil {
				return err
			}
		}
		if err := chain.ValidateChain(); err != nil {
			return err
		}
		fmt.Println("chain valid")
		return nil
	},
}

var statsCommand = &cli.Command{
	Name:  "stats",
	Usage: "print chain-wide statistics",
	Action: func(c *cli.Context) error {
		chain := demoChain()
		chain.DebugDump(os.Stdout)
		return nil
	},
}
