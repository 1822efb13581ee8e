// Copyright 2024 The ledgerchain Authors
// This file is part of the ledgerchain library.
//
// The ledgerchain library is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

// Package work drives block assembly: a Miner prepends a coinbase
// reward to a candidate transaction set, seals the result with
// proof-of-work, and appends it to the chain.
package work

import (
	"github.com/coreledger/ledgerchain/blockchain"
	"github.com/coreledger/ledgerchain/blockchain/types"
	"github.com/coreledger/ledgerchain/consensus/pow"
	ledgerlog "github.com/coreledger/ledgerchain/log"
	"github.com/ethereum/go-ethereum/common"
)

var logger = ledgerlog.NewModuleLogger(ledgerlog.Miner)

// DefaultBlockReward is the fixed coinbase payout a Miner mints per
// sealed block.
const DefaultBlockReward = 5_000

// Miner assembles and seals blocks on behalf of a single reward address.
type Miner struct {
	MinerAddress common.Address
	BlockReward  uint64
	sealer       *pow.Sealer
}

// Option configures a Miner.
type Option func(*Miner)

// WithBlockReward overrides the coinbase reward a Miner mints per block.
func WithBlockReward(reward uint64) Option {
	return func(m *Miner) { m.BlockReward = reward }
}

// WithDifficulty overrides the proof-of-work difficulty MineNextBlock
// seals at; MineBlock's explicit difficulty argument always takes
// precedence over this setting.
func WithDifficulty(difficulty uint32) Option {
	return func(m *Miner) { m.sealer = pow.NewSealer(pow.WithDifficulty(difficulty)) }
}

// New returns a Miner paying DefaultBlockReward to minerAddress, sealing
// at pow.DefaultDifficulty unless overridden by an Option.
func New(minerAddress common.Address, opts ...Option) *Miner {
	m := &Miner{
		MinerAddress: minerAddress,
		BlockReward:  DefaultBlockReward,
		sealer:       pow.NewSealer(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MineBlock prepends the miner's coinbase transaction to txs, seals the
// resulting block at the given difficulty, and appends it to chain.
func (m *Miner) MineBlock(chain *blockchain.Blockchain, txs []*types.Transaction, difficulty uint32) (*types.Block, error) {
	return m.mine(chain, txs, pow.NewSealer(pow.WithDifficulty(difficulty)))
}

// MineNextBlock is MineBlock using the Miner's configured difficulty
// (pow.DefaultDifficulty, or whatever WithDifficulty set at
// construction) instead of an explicit argument.
func (m *Miner) MineNextBlock(chain *blockchain.Blockchain, txs []*types.Transaction) (*types.Block, error) {
	return m.mine(chain, txs, m.sealer)
}

func (m *Miner) mine(chain *blockchain.Blockchain, txs []*types.Transaction, sealer *pow.Sealer) (*types.Block, error) {
	logger.Info("starting to mine block", "miner", m.MinerAddress)

	coinbase := types.NewCoinbase(m.MinerAddress, m.BlockReward)
	allTxs := make([]*types.Transaction, 0, len(txs)+1)
	allTxs = append(allTxs, coinbase)
	allTxs = append(allTxs, txs...)

	latest := chain.LatestBlock()
	block := types.NewBlock(latest.Number+1, *latest.Hash, allTxs, types.GenesisGasLimit)

	result, err := sealer.Mine(block)
	if err != nil {
		return nil, err
	}

	if err := chain.AddBlock(block); err != nil {
		return nil, err
	}

	logger.Info("block reward paid", "amount", m.BlockReward, "to", m.MinerAddress)
	logger.Info("mining stats", "attempts", result.Attempts, "difficulty", sealer.Difficulty(), "elapsed", result.Elapsed)

	return block, nil
}
