// Copyright 2024 The ledgerchain Authors
// This file is part of the ledgerchain library.

package work

import (
	"testing"

	"github.com/coreledger/ledgerchain/blockchain"
	"github.com/coreledger/ledgerchain/blockchain/types"
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

func TestMineBlockPaysReward(t *testing.T) {
	chain := blockchain.New()
	miner := New(addrOf(99))

	block, err := miner.MineBlock(chain, nil, 1)
	require.NoError(t, err)
	require.Equal(t, uint64(1), block.Number)
	require.Equal(t, 2, chain.BlockCount())
	require.Equal(t, uint64(DefaultBlockReward), chain.State.BalanceOf(addrOf(99)).Uint64())
}

func TestMineNextBlockUsesConfiguredOptions(t *testing.T) {
	chain := blockchain.New()
	miner := New(addrOf(99), WithBlockReward(777), WithDifficulty(1))

	block, err := miner.MineNextBlock(chain, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(1), block.Number)
	require.Equal(t, uint64(777), chain.State.BalanceOf(addrOf(99)).Uint64())
}

func TestMineBlockIncludesSuppliedTransactions(t *testing.T) {
	chain := blockchain.New()
	alice, bob := addrOf(1), addrOf(2)
	chain.State.SetBalance(alice, uint256.NewInt(1_000_000_000_000_000))

	tx := types.NewTransfer(alice, bob, uint256.NewInt(100), 0)
	tx.SetHash()

	miner := New(addrOf(99))
	block, err := miner.MineBlock(chain, []*types.Transaction{tx}, 1)
	require.NoError(t, err)
	require.Len(t, block.Transactions, 2)
	require.Equal(t, uint256.NewInt(100), chain.State.BalanceOf(bob))
}
