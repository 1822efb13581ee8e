// Copyright 2024 The ledgerchain Authors
// This file is part of the ledgerchain library.
//
// The ledgerchain library is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

package types

import (
	"encoding/binary"
	"time"

	"github.com/coreledger/ledgerchain/blockchain/chainerror"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Block is a sealed batch of transactions: a coinbase reward followed by
// the transactions the miner selected, linked to its parent by hash and
// sealed with a proof-of-work nonce.
type Block struct {
	Number       uint64
	ParentHash   common.Hash
	Hash         *common.Hash
	Transactions []*Transaction
	Timestamp    int64
	GasLimit     uint64
	GasUsed      uint64
	Nonce        uint64
	Difficulty   uint32
}

// GenesisGasLimit is the fixed gas limit of block zero.
const (
	GenesisGasLimit uint64 = 30_000_000
)

// Genesis returns the chain's unsealed block zero: no parent, no
// transactions. Hash is left nil; the caller (blockchain.New) mines it
// like any other block before storing it.
func Genesis(timestamp int64) *Block {
	return &Block{
		Number:     0,
		ParentHash: common.Hash{},
		GasLimit:   GenesisGasLimit,
		Timestamp:  timestamp,
	}
}

// NewBlock assembles an unsealed block awaiting proof-of-work: Hash is
// nil until Mine (in the consensus/pow package) sets it.
func NewBlock(number uint64, parentHash common.Hash, txs []*Transaction, gasLimit uint64) *Block {
	return &Block{
		Number:       number,
		ParentHash:   parentHash,
		Transactions: txs,
		Timestamp:    time.Now().Unix(),
		GasLimit:     gasLimit,
	}
}

// CalculateHash returns the deterministic Keccak256 digest over the
// block header and its ordered transaction hashes: number_be8 ||
// parent_hash || timestamp_be8 || nonce_be8 || gas_limit_be8 ||
// gas_used_be8 || (tx_hash for every transaction that already has one,
// in order; a transaction with no Hash set yet is skipped, not computed
// on the caller's behalf).
func (b *Block) CalculateHash() common.Hash {
	var numberBytes, timestampBytes, nonceBytes, gasLimitBytes, gasUsedBytes [8]byte
	binary.BigEndian.PutUint64(numberBytes[:], b.Number)
	binary.BigEndian.PutUint64(timestampBytes[:], uint64(b.Timestamp))
	binary.BigEndian.PutUint64(nonceBytes[:], b.Nonce)
	binary.BigEndian.PutUint64(gasLimitBytes[:], b.GasLimit)
	binary.BigEndian.PutUint64(gasUsedBytes[:], b.GasUsed)

	chunks := make([][]byte, 0, 5+len(b.Transactions))
	chunks = append(chunks,
		numberBytes[:],
		b.ParentHash.Bytes(),
		timestampBytes[:],
		nonceBytes[:],
		gasLimitBytes[:],
		gasUsedBytes[:],
	)
	for _, tx := range b.Transactions {
		if tx.Hash != nil {
			chunks = append(chunks, tx.Hash.Bytes())
		}
	}
	return crypto.Keccak256Hash(chunks...)
}

// SetHash assigns Hash to the block's CalculateHash result, called after
// Nonce has been set to a value satisfying the target difficulty.
func (b *Block) SetHash() {
	h := b.CalculateHash()
	b.Hash = &h
}

// TransactionCount returns the number of transactions in the block,
// including the synthetic coinbase entry at index 0 when present.
func (b *Block) TransactionCount() int {
	return len(b.Transactions)
}

// ValidateGasUsage reports whether the block's accumulated GasUsed fits
// within GasLimit.
func (b *Block) ValidateGasUsage() error {
	if b.GasUsed > b.GasLimit {
		return chainerror.New(chainerror.InvalidTransaction,
			"block %d gas used %d exceeds gas limit %d", b.Number, b.GasUsed, b.GasLimit)
	}
	return nil
}

// IsGenesis reports whether the block is chain position zero.
func (b *Block) IsGenesis() bool {
	return b.Number == 0
}
