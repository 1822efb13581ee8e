// Copyright 2024 The ledgerchain Authors
// This file is part of the ledgerchain library.
//
// The ledgerchain library is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

// Package vm seams a real contract VM onto the flat account-based world
// state: the stateDB type adapts state.WorldState into the StateDB shape
// core/vm.EVM expects.
package vm

import (
	"math/big"

	"github.com/coreledger/ledgerchain/blockchain/state"
	"github.com/ethereum/go-ethereum/common"
	coretypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

type account struct {
	balance         *big.Int
	nonce           uint64
	code            []byte
	codeHash        common.Hash
	storage         map[common.Hash]common.Hash
	transient       map[common.Hash]common.Hash
	created         bool
	selfDestructed  bool
}

func newAccount() *account {
	return &account{
		balance:   new(big.Int),
		storage:   make(map[common.Hash]common.Hash),
		transient: make(map[common.Hash]common.Hash),
	}
}

func (a *account) clone() *account {
	cp := &account{
		balance:        new(big.Int).Set(a.balance),
		nonce:          a.nonce,
		codeHash:       a.codeHash,
		storage:        make(map[common.Hash]common.Hash, len(a.storage)),
		transient:      make(map[common.Hash]common.Hash, len(a.transient)),
		created:        a.created,
		selfDestructed: a.selfDestructed,
	}
	if len(a.code) > 0 {
		cp.code = append([]byte(nil), a.code...)
	}
	for k, v := range a.storage {
		cp.storage[k] = v
	}
	for k, v := range a.transient {
		cp.transient[k] = v
	}
	return cp
}

// stateDB implements the vm.StateDB interface go-ethereum's core/vm.EVM
// drives execution against, backed by an in-memory working set that is
// explicitly loaded from and saved back to a state.WorldState, never
// reading or writing it directly mid-execution.
type stateDB struct {
	accounts map[common.Address]*account

	snapshots []map[common.Address]*account

	refund uint64

	accessListAddrs map[common.Address]bool
	accessListSlots map[common.Address]map[common.Hash]bool

	logs []*coretypes.Log

	preimages map[common.Hash][]byte
}

func newStateDB() *stateDB {
	return &stateDB{
		accounts:        make(map[common.Address]*account),
		accessListAddrs: make(map[common.Address]bool),
		accessListSlots: make(map[common.Address]map[common.Hash]bool),
		preimages:       make(map[common.Hash][]byte),
	}
}

func (s *stateDB) get(addr common.Address) *account {
	acc, ok := s.accounts[addr]
	if !ok {
		acc = newAccount()
		s.accounts[addr] = acc
	}
	return acc
}

// loadFromWorld populates the working set from a WorldState snapshot.
func (s *stateDB) loadFromWorld(w *state.WorldState) {
	w.ForEachAccount(func(addr common.Address, acc *state.Account) {
		dst := newAccount()
		dst.balance = acc.Balance.ToBig()
		dst.nonce = acc.Nonce
		dst.codeHash = acc.CodeHash
		if len(acc.Code) > 0 {
			dst.code = append([]byte(nil), acc.Code...)
		}
		for k, v := range acc.Storage {
			kb := k.Bytes32()
			vb := v.Bytes32()
			dst.storage[common.BytesToHash(kb[:])] = common.BytesToHash(vb[:])
		}
		s.accounts[addr] = dst
	})
}

// saveToWorld copies every account in the working set back into w,
// including every storage slot touched during execution, so no dirty
// slot is ever silently dropped.
func (s *stateDB) saveToWorld(w *state.WorldState) {
	for addr, acc := range s.accounts {
		if acc.selfDestructed {
			continue
		}
		balance, overflow := uint256.FromBig(acc.balance)
		if overflow {
			balance = new(uint256.Int)
		}
		w.SetBalance(addr, balance)
		dst := w.GetOrCreate(addr)
		for dst.Nonce < acc.nonce {
			dst.IncrementNonce()
		}
		w.UpdateStateRoot()
		if len(acc.code) > 0 {
			w.SetCode(addr, acc.code)
		}
		for k, v := range acc.storage {
			var key, value uint256.Int
			key.SetBytes(k.Bytes())
			value.SetBytes(v.Bytes())
			w.SetStorage(addr, key, value)
		}
	}
}

func (s *stateDB) CreateAccount(addr common.Address) {
	acc := newAccount()
	acc.created = true
	s.accounts[addr] = acc
}

func (s *stateDB) SubBalance(addr common.Address, amount *big.Int) {
	acc := s.get(addr)
	acc.balance = new(big.Int).Sub(acc.balance, amount)
}

func (s *stateDB) AddBalance(addr common.Address, amount *big.Int) {
	acc := s.get(addr)
	acc.balance = new(big.Int).Add(acc.balance, amount)
}

func (s *stateDB) GetBalance(addr common.Address) *big.Int {
	return new(big.Int).Set(s.get(addr).balance)
}

func (s *stateDB) GetNonce(addr common.Address) uint64 {
	return s.get(addr).nonce
}

func (s *stateDB) SetNonce(addr common.Address, nonce uint64) {
	s.get(addr).nonce = nonce
}

func (s *stateDB) GetCodeHash(addr common.Address) common.Hash {
	return s.get(addr).codeHash
}

func (s *stateDB) GetCode(addr common.Address) []byte {
	return s.get(addr).code
}

func (s *stateDB) SetCode(addr common.Address, code []byte) {
	acc := s.get(addr)
	acc.code = code
	acc.codeHash = crypto.Keccak256Hash(code)
}

func (s *stateDB) GetCodeSize(addr common.Address) int {
	return len(s.get(addr).code)
}

func (s *stateDB) AddRefund(gas uint64) {
	s.refund += gas
}

func (s *stateDB) SubRefund(gas uint64) {
	if gas > s.refund {
		s.refund = 0
		return
	}
	s.refund -= gas
}

func (s *stateDB) GetRefund() uint64 {
	return s.refund
}

func (s *stateDB) GetCommittedState(addr common.Address, key common.Hash) common.Hash {
	return s.get(addr).storage[key]
}

func (s *stateDB) GetState(addr common.Address, key common.Hash) common.Hash {
	return s.get(addr).storage[key]
}

func (s *stateDB) SetState(addr common.Address, key, value common.Hash) {
	s.get(addr).storage[key] = value
}

func (s *stateDB) GetTransientState(addr common.Address, key common.Hash) common.Hash {
	return s.get(addr).transient[key]
}

func (s *stateDB) SetTransientState(addr common.Address, key, value common.Hash) {
	s.get(addr).transient[key] = value
}

func (s *stateDB) SelfDestruct(addr common.Address) {
	s.get(addr).selfDestructed = true
}

func (s *stateDB) HasSelfDestructed(addr common.Address) bool {
	return s.get(addr).selfDestructed
}

func (s *stateDB) Exist(addr common.Address) bool {
	_, ok := s.accounts[addr]
	return ok
}

func (s *stateDB) Empty(addr common.Address) bool {
	acc, ok := s.accounts[addr]
	if !ok {
		return true
	}
	return acc.nonce == 0 && acc.balance.Sign() == 0 && len(acc.code) == 0
}

func (s *stateDB) AddressInAccessList(addr common.Address) bool {
	return s.accessListAddrs[addr]
}

func (s *stateDB) SlotInAccessList(addr common.Address, slot common.Hash) (bool, bool) {
	addrOk := s.accessListAddrs[addr]
	slots, ok := s.accessListSlots[addr]
	if !ok {
		return addrOk, false
	}
	return addrOk, slots[slot]
}

func (s *stateDB) AddAddressToAccessList(addr common.Address) {
	s.accessListAddrs[addr] = true
}

func (s *stateDB) AddSlotToAccessList(addr common.Address, slot common.Hash) {
	s.accessListAddrs[addr] = true
	slots, ok := s.accessListSlots[addr]
	if !ok {
		slots = make(map[common.Hash]bool)
		s.accessListSlots[addr] = slots
	}
	slots[slot] = true
}

func (s *stateDB) Snapshot() int {
	cp := make(map[common.Address]*account, len(s.accounts))
	for addr, acc := range s.accounts {
		cp[addr] = acc.clone()
	}
	s.snapshots = append(s.snapshots, cp)
	return len(s.snapshots) - 1
}

func (s *stateDB) RevertToSnapshot(id int) {
	s.accounts = s.snapshots[id]
	s.snapshots = s.snapshots[:id]
}

func (s *stateDB) AddLog(log *coretypes.Log) {
	s.logs = append(s.logs, log)
}

func (s *stateDB) AddPreimage(hash common.Hash, preimage []byte) {
	s.preimages[hash] = append([]byte(nil), preimage...)
}
