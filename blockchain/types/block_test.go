// Copyright 2024 The ledgerchain Authors
// This file is part of the ledgerchain library.

package types

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestGenesisIsUnsealed(t *testing.T) {
	g := Genesis(0)
	require.True(t, g.IsGenesis())
	require.Nil(t, g.Hash)
	require.Equal(t, uint64(0), g.Number)
	require.Equal(t, common.Hash{}, g.ParentHash)
}

func TestBlockHashChangesWithNonce(t *testing.T) {
	tx := NewTransfer(addrOf(1), addrOf(2), uint256.NewInt(10), 0)
	b := NewBlock(1, Genesis(0).CalculateHash(), []*Transaction{tx}, GenesisGasLimit)

	b.Nonce = 1
	h1 := b.CalculateHash()
	b.Nonce = 2
	h2 := b.CalculateHash()
	require.NotEqual(t, h1, h2)
}

func TestBlockHashDeterministic(t *testing.T) {
	tx := NewTransfer(addrOf(1), addrOf(2), uint256.NewInt(10), 0)
	parent := Genesis(0).CalculateHash()
	b1 := NewBlock(1, parent, []*Transaction{tx}, GenesisGasLimit)
	b1.Timestamp = 100
	b2 := NewBlock(1, parent, []*Transaction{tx}, GenesisGasLimit)
	b2.Timestamp = 100
	require.Equal(t, b1.CalculateHash(), b2.CalculateHash())
}

func TestValidateGasUsageRejectsOverLimit(t *testing.T) {
	b := NewBlock(1, Genesis(0).CalculateHash(), nil, 100)
	b.GasUsed = 101
	require.Error(t, b.ValidateGasUsage())
}

func TestValidateGasUsageAcceptsAtLimit(t *testing.T) {
	b := NewBlock(1, Genesis(0).CalculateHash(), nil, 100)
	b.GasUsed = 100
	require.NoError(t, b.ValidateGasUsage())
}
