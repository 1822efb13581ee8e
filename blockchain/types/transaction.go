// Copyright 2024 The ledgerchain Authors
// This file is part of the ledgerchain library.
//
// The ledgerchain library is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

// Package types holds the wire-level envelopes of the ledger: the
// tagged Transaction union and the Block that carries an ordered list of
// them.
package types

import (
	"encoding/binary"
	"fmt"

	"github.com/coreledger/ledgerchain/blockchain/chainerror"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// TransactionType discriminates the three transaction shapes the engine
// understands. It is a genuine tagged union in spirit: Transaction's
// shape invariants are keyed off this field, never off sentinel values.
type TransactionType uint8

const (
	Transfer TransactionType = iota
	ContractDeployment
	ContractCall
)

func (t TransactionType) String() string {
	switch t {
	case Transfer:
		return "Transfer"
	case ContractDeployment:
		return "ContractDeployment"
	case ContractCall:
		return "ContractCall"
	default:
		return "Unknown"
	}
}

// Default gas parameters for each transaction constructor.
const (
	TransferGas        uint64 = 21_000
	ContractDeployGas   uint64 = 2_000_000
	ContractCallGas     uint64 = 500_000
	DefaultGasPriceWei  uint64 = 20_000_000_000
)

// Transaction is the tagged envelope submitted to the chain: a value
// transfer, a contract deployment, or a contract call. `To` is nil for a
// deployment; `Hash` is nil until SetHash is called.
type Transaction struct {
	From     common.Address
	To       *common.Address
	Value    *uint256.Int
	Data     []byte
	GasLimit uint64
	GasPrice *uint256.Int
	Nonce    uint64
	Hash     *common.Hash
	Type     TransactionType
}

// NewTransfer builds a value-transfer transaction with the default
// transfer gas parameters.
func NewTransfer(from, to common.Address, value *uint256.Int, nonce uint64) *Transaction {
	return &Transaction{
		From:     from,
		To:       &to,
		Value:    value,
		GasLimit: TransferGas,
		GasPrice: uint256.NewInt(DefaultGasPriceWei),
		Nonce:    nonce,
		Type:     Transfer,
	}
}

// NewContractDeployment builds a deployment transaction whose Data is the
// init bytecode (already concatenated with any constructor arguments).
func NewContractDeployment(from common.Address, bytecode []byte, value *uint256.Int, nonce uint64) *Transaction {
	return &Transaction{
		From:     from,
		Value:    value,
		Data:     bytecode,
		GasLimit: ContractDeployGas,
		GasPrice: uint256.NewInt(DefaultGasPriceWei),
		Nonce:    nonce,
		Type:     ContractDeployment,
	}
}

// NewContractCall builds a call transaction against an already-deployed
// contract.
func NewContractCall(from, to common.Address, calldata []byte, value *uint256.Int, nonce uint64) *Transaction {
	return &Transaction{
		From:     from,
		To:       &to,
		Value:    value,
		Data:     calldata,
		GasLimit: ContractCallGas,
		GasPrice: uint256.NewInt(DefaultGasPriceWei),
		Nonce:    nonce,
		Type:     ContractCall,
	}
}

// CalculateHash returns the deterministic Keccak256 digest over the
// canonical transaction encoding:
// from || to-or-zero || value_be32 || data || gas_limit_be8 ||
// gas_price_be32 || nonce_be8 || type_tag.
func (tx *Transaction) CalculateHash() common.Hash {
	var toBytes [common.AddressLength]byte
	if tx.To != nil {
		toBytes = *tx.To
	}

	valueBytes := tx.Value.Bytes32()
	gasPriceBytes := tx.GasPrice.Bytes32()

	var gasLimitBytes [8]byte
	binary.BigEndian.PutUint64(gasLimitBytes[:], tx.GasLimit)
	var nonceBytes [8]byte
	binary.BigEndian.PutUint64(nonceBytes[:], tx.Nonce)

	return crypto.Keccak256Hash(
		tx.From.Bytes(),
		toBytes[:],
		valueBytes[:],
		tx.Data,
		gasLimitBytes[:],
		gasPriceBytes[:],
		nonceBytes[:],
		[]byte{byte(tx.Type)},
	)
}

// SetHash assigns Hash to the transaction's CalculateHash result.
func (tx *Transaction) SetHash() {
	h := tx.CalculateHash()
	tx.Hash = &h
}

// IsTransfer, IsContractDeployment and IsContractCall classify the
// transaction by its tag.
func (tx *Transaction) IsTransfer() bool            { return tx.Type == Transfer }
func (tx *Transaction) IsContractDeployment() bool  { return tx.Type == ContractDeployment }
func (tx *Transaction) IsContractCall() bool        { return tx.Type == ContractCall }

// EstimatedGasCost returns gas_price * gas_limit.
func (tx *Transaction) EstimatedGasCost() *uint256.Int {
	return new(uint256.Int).Mul(tx.GasPrice, uint256.NewInt(tx.GasLimit))
}

// Validate enforces the per-type shape invariants: every type requires a
// positive gas limit and gas price; Transfer requires a recipient and no
// data; ContractDeployment requires no recipient and non-empty data;
// ContractCall requires a recipient.
func (tx *Transaction) Validate() error {
	if tx.GasLimit == 0 {
		return chainerror.New(chainerror.InvalidTransaction, "gas limit cannot be zero")
	}
	if tx.GasPrice == nil || tx.GasPrice.IsZero() {
		return chainerror.New(chainerror.InvalidTransaction, "gas price cannot be zero")
	}

	switch tx.Type {
	case Transfer:
		if tx.To == nil {
			return chainerror.New(chainerror.InvalidTransaction, "transfer must have a recipient")
		}
		if len(tx.Data) != 0 {
			return chainerror.New(chainerror.InvalidTransaction, "transfer should not have data")
		}
	case ContractDeployment:
		if tx.To != nil {
			return chainerror.New(chainerror.InvalidTransaction, "contract deployment should not have a recipient")
		}
		if len(tx.Data) == 0 {
			return chainerror.New(chainerror.InvalidTransaction, "contract deployment must have bytecode")
		}
	case ContractCall:
		if tx.To == nil {
			return chainerror.New(chainerror.InvalidTransaction, "contract call must have a recipient")
		}
	default:
		return chainerror.New(chainerror.InvalidTransaction, "unknown transaction type %d", tx.Type)
	}
	return nil
}

// Summary renders a short human-readable description of the transaction,
// used in the CLI's transfer output.
func (tx *Transaction) Summary() string {
	switch tx.Type {
	case Transfer:
		to := "None"
		if tx.To != nil {
			to = tx.To.Hex()
		}
		return fmt.Sprintf("Transfer %s wei from %s to %s", tx.Value, tx.From.Hex(), to)
	case ContractDeployment:
		return fmt.Sprintf("Deploy contract from %s with %d bytes of bytecode", tx.From.Hex(), len(tx.Data))
	case ContractCall:
		to := "None"
		if tx.To != nil {
			to = tx.To.Hex()
		}
		return fmt.Sprintf("Call contract %s from %s with %d bytes of data", to, tx.From.Hex(), len(tx.Data))
	default:
		return "unknown transaction"
	}
}

// EncodedSize estimates the envelope's wire size in bytes.
func (tx *Transaction) EncodedSize() int {
	return common.AddressLength + // from
		common.AddressLength + // to, even when absent
		32 + // value
		len(tx.Data) +
		8 + // gas limit
		32 + // gas price
		8 + // nonce
		32 + // hash
		1 // type tag
}

// IsCoinbase reports whether tx is the synthetic block-reward
// transaction: from the zero address with a recipient set.
func (tx *Transaction) IsCoinbase() bool {
	return tx.From == (common.Address{}) && tx.To != nil
}

// NewCoinbase builds the synthetic, validation-free reward transaction a
// miner prepends to every block it seals.
func NewCoinbase(miner common.Address, reward uint64) *Transaction {
	tx := &Transaction{
		From:     common.Address{},
		To:       &miner,
		Value:    uint256.NewInt(reward),
		Data:     []byte("Block reward"),
		GasLimit: 0,
		GasPrice: new(uint256.Int),
		Nonce:    0,
		Type:     Transfer,
	}
	tx.SetHash()
	return tx
}
