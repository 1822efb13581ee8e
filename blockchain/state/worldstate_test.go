// Copyright 2024 The ledgerchain Authors
// This file is part of the ledgerchain library.

package state

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func addrOf(b byte) common.Address {
	var a common.Address
	for i := range a {
		a[i] = b
	}
	return a
}

func TestGetOnMissingAccountDoesNotMaterialize(t *testing.T) {
	w := New()
	acc := w.Get(addrOf(1))
	require.True(t, acc.Empty())
	require.Equal(t, 0, w.AccountCount())
}

func TestStateRootDeterminism(t *testing.T) {
	w1 := New()
	w1.SetBalance(addrOf(1), uint256.NewInt(1000))

	w2 := New()
	w2.SetBalance(addrOf(1), uint256.NewInt(1000))

	require.Equal(t, w1.StateRoot(), w2.StateRoot())
	require.NotEqual(t, w1.StateRoot(), common.Hash{})
}

func TestEmptyStateRootIsZero(t *testing.T) {
	w := New()
	require.Equal(t, common.Hash{}, w.StateRoot())
}

func TestZeroStorageSlotIsAbsent(t *testing.T) {
	w := New()
	addr := addrOf(1)
	w.SetStorage(addr, *uint256.NewInt(5), *uint256.NewInt(42))
	require.Len(t, w.Get(addr).Storage, 1)

	w.SetStorage(addr, *uint256.NewInt(5), *uint256.NewInt(0))
	require.Len(t, w.Get(addr).Storage, 0)
}

func TestSnapshotRestore(t *testing.T) {
	w := New()
	addr := addrOf(1)
	w.SetBalance(addr, uint256.NewInt(1000))

	snap := w.Snapshot()
	w.SetBalance(addr, uint256.NewInt(2000))
	require.Equal(t, uint256.NewInt(2000), w.BalanceOf(addr))

	w.Restore(snap)
	require.Equal(t, uint256.NewInt(1000), w.BalanceOf(addr))
}

func TestSweepEmptyAccounts(t *testing.T) {
	w := New()
	addr := addrOf(1)
	w.SetBalance(addr, uint256.NewInt(1000))
	require.Equal(t, 1, w.AccountCount())

	w.SetBalance(addr, uint256.NewInt(0))
	require.Equal(t, 1, w.AccountCount())

	removed := w.RemoveEmptyAccounts()
	require.Equal(t, 1, removed)
	require.Equal(t, 0, w.AccountCount())
}

func TestTransferHappyPath(t *testing.T) {
	w := New()
	alice, bob := addrOf(1), addrOf(2)
	w.SetBalance(alice, uint256.NewInt(1000))

	require.NoError(t, w.Transfer(alice, bob, uint256.NewInt(300)))
	require.Equal(t, uint256.NewInt(700), w.BalanceOf(alice))
	require.Equal(t, uint256.NewInt(300), w.BalanceOf(bob))
	require.Equal(t, uint64(1), w.NonceOf(alice))
}

func TestTransferInsufficientBalance(t *testing.T) {
	w := New()
	alice, bob := addrOf(1), addrOf(2)
	w.SetBalance(alice, uint256.NewInt(100))

	err := w.Transfer(alice, bob, uint256.NewInt(200))
	require.Error(t, err)
	require.Equal(t, uint64(0), w.NonceOf(alice))
}

func TestCodeHashMirrorsCodeEmptiness(t *testing.T) {
	w := New()
	addr := addrOf(1)
	require.Equal(t, common.Hash{}, w.Get(addr).CodeHash)

	w.SetCode(addr, []byte{0x60, 0x80})
	require.NotEqual(t, common.Hash{}, w.Get(addr).CodeHash)

	w.SetCode(addr, nil)
	require.Equal(t, common.Hash{}, w.Get(addr).CodeHash)
}

func TestStorageRootOrderIndependent(t *testing.T) {
	a := NewAccount()
	a.SetStorage(*uint256.NewInt(2), *uint256.NewInt(20))
	a.SetStorage(*uint256.NewInt(1), *uint256.NewInt(10))

	b := NewAccount()
	b.SetStorage(*uint256.NewInt(1), *uint256.NewInt(10))
	b.SetStorage(*uint256.NewInt(2), *uint256.NewInt(20))

	require.Equal(t, a.StorageRoot(), b.StorageRoot())
}
