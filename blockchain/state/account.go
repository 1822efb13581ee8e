// Copyright 2024 The ledgerchain Authors
// This file is part of the ledgerchain library.
//
// The ledgerchain library is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

// Package state implements the in-memory, account-based world state: a
// flat map of addresses to accounts, each carrying a balance, a nonce, an
// optional contract code blob and a sparse storage map, plus a
// deterministic Keccak256 commitment over the whole map.
package state

import (
	"encoding/binary"
	"sort"

	"github.com/coreledger/ledgerchain/blockchain/chainerror"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// Account is a single entry of the world state: balance, nonce, optional
// contract code and a sparse slot->value storage map. A zero Account is a
// valid externally-owned, empty account.
type Account struct {
	Balance  *uint256.Int
	Nonce    uint64
	Code     []byte
	CodeHash common.Hash
	Storage  map[uint256.Int]uint256.Int
}

// NewAccount returns a freshly materialized, empty account.
func NewAccount() *Account {
	return &Account{
		Balance: new(uint256.Int),
		Storage: make(map[uint256.Int]uint256.Int),
	}
}

// Empty reports whether the account satisfies the Empty predicate: zero
// balance, zero nonce, no code and no storage slots.
func (a *Account) Empty() bool {
	return a.Balance.IsZero() && a.Nonce == 0 && len(a.Code) == 0 && len(a.Storage) == 0
}

// IsContract reports whether the account carries contract code.
func (a *Account) IsContract() bool {
	return len(a.Code) > 0
}

// AddBalance credits amount to the account's balance.
func (a *Account) AddBalance(amount *uint256.Int) {
	a.Balance.Add(a.Balance, amount)
}

// SubBalance debits amount from the account's balance, failing with
// InsufficientBalance if amount exceeds the current balance.
func (a *Account) SubBalance(amount *uint256.Int) error {
	if a.Balance.Lt(amount) {
		return chainerror.New(chainerror.InsufficientBalance,
			"balance %s is less than requested %s", a.Balance, amount)
	}
	a.Balance.Sub(a.Balance, amount)
	return nil
}

// IncrementNonce bumps the account's nonce by one outgoing action.
func (a *Account) IncrementNonce() {
	a.Nonce++
}

// SetCode installs contract bytecode and recomputes CodeHash. Setting
// empty code resets CodeHash to the zero hash.
func (a *Account) SetCode(code []byte) {
	a.Code = code
	if len(code) == 0 {
		a.CodeHash = common.Hash{}
		return
	}
	a.CodeHash = crypto.Keccak256Hash(code)
}

// GetStorage returns the value stored at key, or zero if the slot is
// absent.
func (a *Account) GetStorage(key uint256.Int) uint256.Int {
	return a.Storage[key]
}

// SetStorage writes value at key. A zero value deletes the slot instead
// of storing it, preserving the invariant that a materially-present slot
// is never zero.
func (a *Account) SetStorage(key, value uint256.Int) {
	if value.IsZero() {
		delete(a.Storage, key)
		return
	}
	a.Storage[key] = value
}

// ClearStorage removes every slot from the account.
func (a *Account) ClearStorage() {
	a.Storage = make(map[uint256.Int]uint256.Int)
}

// DeepCopy returns an independent copy of the account, used by
// WorldState.Snapshot.
func (a *Account) DeepCopy() *Account {
	cp := &Account{
		Balance:  new(uint256.Int).Set(a.Balance),
		Nonce:    a.Nonce,
		CodeHash: a.CodeHash,
		Storage:  make(map[uint256.Int]uint256.Int, len(a.Storage)),
	}
	if len(a.Code) > 0 {
		cp.Code = append([]byte(nil), a.Code...)
	}
	for k, v := range a.Storage {
		cp.Storage[k] = v
	}
	return cp
}

// StorageRoot computes the per-account storage commitment: the zero hash
// when storage is empty, otherwise the Keccak256 digest of the
// ascending-by-key (key_be32 || value_be32) pairs.
func (a *Account) StorageRoot() common.Hash {
	if len(a.Storage) == 0 {
		return common.Hash{}
	}

	keys := make([]uint256.Int, 0, len(a.Storage))
	for k := range a.Storage {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Lt(&keys[j]) })

	chunks := make([][]byte, 0, len(keys)*2)
	for _, k := range keys {
		kb := k.Bytes32()
		v := a.Storage[k]
		vb := v.Bytes32()
		chunks = append(chunks, kb[:], vb[:])
	}
	return crypto.Keccak256Hash(chunks...)
}

// innerHash returns keccak256(balance_be32 || nonce_be8 || code_hash ||
// storage_root), the per-account digest folded into the world-state root.
func (a *Account) innerHash() common.Hash {
	balanceBytes := a.Balance.Bytes32()
	var nonceBytes [8]byte
	binary.BigEndian.PutUint64(nonceBytes[:], a.Nonce)
	storageRoot := a.StorageRoot()
	return crypto.Keccak256Hash(balanceBytes[:], nonceBytes[:], a.CodeHash.Bytes(), storageRoot.Bytes())
}
