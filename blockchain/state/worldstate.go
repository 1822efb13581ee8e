// Copyright 2024 The ledgerchain Authors
// This file is part of the ledgerchain library.
//
// The ledgerchain library is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

package state

import (
	"fmt"
	"io"
	"sort"

	"github.com/coreledger/ledgerchain/blockchain/chainerror"
	ledgerlog "github.com/coreledger/ledgerchain/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

var logger = ledgerlog.NewModuleLogger(ledgerlog.State)

// WorldState is the flat map from addresses to accounts, plus its
// deterministic commitment root. It is NOT a Merkle-Patricia trie: the
// root is an order-determined digest over the sorted account map, by
// design (see SPEC_FULL.md).
type WorldState struct {
	accounts  map[common.Address]*Account
	stateRoot common.Hash
	cache     *AccountCache
}

// accountCacheSize bounds the read-through cache every WorldState keeps
// over its own account map.
const accountCacheSize = 256

// New returns an empty world state with the zero state root.
func New() *WorldState {
	return &WorldState{
		accounts: make(map[common.Address]*Account),
		cache:    NewAccountCache(accountCacheSize),
	}
}

// StateRoot returns the current commitment root.
func (w *WorldState) StateRoot() common.Hash {
	return w.stateRoot
}

// AccountCount returns the number of materialized accounts.
func (w *WorldState) AccountCount() int {
	return len(w.accounts)
}

// Get returns the account at address without materializing it: a missing
// account yields zero-valued fields. Lookups are served from a bounded
// cache keyed by the current state root, so a hot read path (repeated
// balance queries against an unchanged root) avoids re-walking the map.
func (w *WorldState) Get(addr common.Address) *Account {
	if cached, ok := w.cache.Lookup(w.stateRoot, addr); ok {
		return cached
	}
	acc, ok := w.accounts[addr]
	if !ok {
		return NewAccount()
	}
	w.cache.Snapshot(w.stateRoot, addr, acc)
	return acc
}

// GetOrCreate materializes a default account at addr if absent and
// returns a mutable pointer to it. Callers MUST follow any mutation
// through this pointer with UpdateStateRoot; every exported mutating
// method on WorldState already does so.
func (w *WorldState) GetOrCreate(addr common.Address) *Account {
	acc, ok := w.accounts[addr]
	if !ok {
		acc = NewAccount()
		w.accounts[addr] = acc
	}
	return acc
}

// BalanceOf returns the balance of addr, zero if the account is absent.
func (w *WorldState) BalanceOf(addr common.Address) *uint256.Int {
	return new(uint256.Int).Set(w.Get(addr).Balance)
}

// NonceOf returns the nonce of addr, zero if the account is absent.
func (w *WorldState) NonceOf(addr common.Address) uint64 {
	return w.Get(addr).Nonce
}

// CodeOf returns the contract code of addr, nil if the account is absent
// or has no code.
func (w *WorldState) CodeOf(addr common.Address) []byte {
	return w.Get(addr).Code
}

// StorageAt returns the storage slot value at (addr, key).
func (w *WorldState) StorageAt(addr common.Address, key uint256.Int) uint256.Int {
	return w.Get(addr).GetStorage(key)
}

// IsContract reports whether addr carries contract code.
func (w *WorldState) IsContract(addr common.Address) bool {
	return w.Get(addr).IsContract()
}

// AddBalance credits amount to addr, materializing the account if absent.
func (w *WorldState) AddBalance(addr common.Address, amount *uint256.Int) {
	w.GetOrCreate(addr).AddBalance(amount)
	w.UpdateStateRoot()
}

// SubBalance debits amount from addr.
func (w *WorldState) SubBalance(addr common.Address, amount *uint256.Int) error {
	if err := w.GetOrCreate(addr).SubBalance(amount); err != nil {
		return err
	}
	w.UpdateStateRoot()
	return nil
}

// SetBalance overwrites addr's balance outright (used by tests and the
// CLI's genesis faucet step).
func (w *WorldState) SetBalance(addr common.Address, amount *uint256.Int) {
	w.GetOrCreate(addr).Balance = new(uint256.Int).Set(amount)
	w.UpdateStateRoot()
}

// SetCode installs bytecode at addr.
func (w *WorldState) SetCode(addr common.Address, code []byte) {
	w.GetOrCreate(addr).SetCode(code)
	w.UpdateStateRoot()
}

// SetStorage writes a single slot at addr.
func (w *WorldState) SetStorage(addr common.Address, key, value uint256.Int) {
	w.GetOrCreate(addr).SetStorage(key, value)
	w.UpdateStateRoot()
}

// Transfer moves amount from from to to, incrementing from's nonce by
// one. It is the low-level state primitive; the chain-level transaction
// pipeline wraps it with gas accounting.
func (w *WorldState) Transfer(from, to common.Address, amount *uint256.Int) error {
	sender := w.GetOrCreate(from)
	if sender.Balance.Lt(amount) {
		return chainerror.New(chainerror.InsufficientBalance,
			"sender %s balance %s is less than transfer amount %s", from, sender.Balance, amount)
	}
	if err := sender.SubBalance(amount); err != nil {
		return err
	}
	sender.IncrementNonce()
	w.GetOrCreate(to).AddBalance(amount)
	w.UpdateStateRoot()
	logger.Debug("transferred value", "from", from, "to", to, "amount", amount)
	return nil
}

// RemoveEmptyAccounts deletes every account satisfying the Empty
// predicate; accounts are otherwise never deleted.
func (w *WorldState) RemoveEmptyAccounts() int {
	removed := 0
	for addr, acc := range w.accounts {
		if acc.Empty() {
			delete(w.accounts, addr)
			removed++
		}
	}
	if removed > 0 {
		w.UpdateStateRoot()
		logger.Debug("swept empty accounts", "removed", removed)
	}
	return removed
}

// UpdateStateRoot recomputes the world-state commitment root. Every
// mutating WorldState method ends with this call; omitting it is a
// correctness bug per the package's contract.
func (w *WorldState) UpdateStateRoot() {
	if len(w.accounts) == 0 {
		w.stateRoot = common.Hash{}
		return
	}

	addrs := make([]common.Address, 0, len(w.accounts))
	for addr := range w.accounts {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool {
		return bytesLess(addrs[i].Bytes(), addrs[j].Bytes())
	})

	chunks := make([][]byte, 0, len(addrs)*2)
	for _, addr := range addrs {
		inner := w.accounts[addr].innerHash()
		chunks = append(chunks, addr.Bytes(), inner.Bytes())
	}
	w.stateRoot = crypto.Keccak256Hash(chunks...)
}

func bytesLess(a, b []byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// Snapshot returns a deep, independent clone of the world state.
func (w *WorldState) Snapshot() *WorldState {
	clone := &WorldState{
		accounts:  make(map[common.Address]*Account, len(w.accounts)),
		stateRoot: w.stateRoot,
		cache:     NewAccountCache(accountCacheSize),
	}
	for addr, acc := range w.accounts {
		clone.accounts[addr] = acc.DeepCopy()
	}
	return clone
}

// Restore replaces the receiver's accounts and state root wholesale with
// those of snap.
func (w *WorldState) Restore(snap *WorldState) {
	w.accounts = make(map[common.Address]*Account, len(snap.accounts))
	for addr, acc := range snap.accounts {
		w.accounts[addr] = acc.DeepCopy()
	}
	w.stateRoot = snap.stateRoot
	w.cache.Purge()
}

// ForEachAccount visits every materialized account in address order.
func (w *WorldState) ForEachAccount(fn func(common.Address, *Account)) {
	addrs := make([]common.Address, 0, len(w.accounts))
	for addr := range w.accounts {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return bytesLess(addrs[i].Bytes(), addrs[j].Bytes()) })
	for _, addr := range addrs {
		fn(addr, w.accounts[addr])
	}
}

// DebugDumpContracts writes one line per contract account to w.
func (w *WorldState) DebugDumpContracts(out io.Writer) {
	w.ForEachAccount(func(addr common.Address, acc *Account) {
		if !acc.IsContract() {
			return
		}
		fmt.Fprintf(out, "%s: %d bytes, %d storage slots\n", addr.Hex(), len(acc.Code), len(acc.Storage))
	})
}
