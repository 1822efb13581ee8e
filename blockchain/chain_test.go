// Copyright 2024 The ledgerchain Authors
// This file is part of the ledgerchain library.

package blockchain

import (
	"testing"

	"github.com/coreledger/ledgerchain/blockchain/types"
	"github.com/coreledger/ledgerchain/consensus/pow"
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

func mineAndAppend(t *testing.T, c *Blockchain, txs []*types.Transaction, difficulty uint32) *types.Block {
	t.Helper()
	b := types.NewBlock(c.LatestBlock().Number+1, *c.LatestBlock().Hash, txs, types.GenesisGasLimit)
	_, err := pow.Mine(b, difficulty)
	require.NoError(t, err)
	require.NoError(t, c.AddBlock(b))
	return b
}

func TestNewChainHasOnlyGenesis(t *testing.T) {
	c := New()
	require.Equal(t, 1, c.BlockCount())
	require.Equal(t, uint64(0), c.LatestBlock().Number)
	require.Equal(t, uint64(DefaultChainID), c.ChainID)
}

func TestGenesisIsMined(t *testing.T) {
	c := New()
	genesis := c.LatestBlock()
	require.NotNil(t, genesis.Hash)
	require.True(t, pow.IsValidProof(genesis, GenesisDifficulty))
}

func TestAddValidBlock(t *testing.T) {
	c := New()
	alice, bob := addrOf(1), addrOf(2)
	c.State.SetBalance(alice, uint256.NewInt(1_000_000_000_000_000))

	tx := types.NewTransfer(alice, bob, uint256.NewInt(100), 0)
	tx.SetHash()

	mineAndAppend(t, c, []*types.Transaction{tx}, 1)
	require.Equal(t, 2, c.BlockCount())
	require.Equal(t, uint256.NewInt(100), c.State.BalanceOf(bob))
}

func TestAddBlockRejectsWrongParentHash(t *testing.T) {
	c := New()
	b := types.NewBlock(1, common.HexToHash("0xdeadbeef"), nil, types.GenesisGasLimit)
	_, err := pow.Mine(b, 1)
	require.NoError(t, err)
	require.Error(t, c.AddBlock(b))
}

func TestAddBlockRejectsWrongNumber(t *testing.T) {
	c := New()
	b := types.NewBlock(5, *c.LatestBlock().Hash, nil, types.GenesisGasLimit)
	_, err := pow.Mine(b, 1)
	require.NoError(t, err)
	require.Error(t, c.AddBlock(b))
}

func TestCoinbaseMintBypassesNonceAndValidation(t *testing.T) {
	c := New()
	miner := addrOf(9)
	coinbase := types.NewCoinbase(miner, 5000)

	mineAndAppend(t, c, []*types.Transaction{coinbase}, 1)
	require.Equal(t, uint256.NewInt(5000), c.State.BalanceOf(miner))
	require.Equal(t, uint64(0), c.State.NonceOf(miner))
}

func TestValidateChainAcrossDifficultyTiers(t *testing.T) {
	c := New()
	alice, bob := addrOf(1), addrOf(2)
	c.State.SetBalance(alice, uint256.NewInt(10_000_000_000_000_000))

	for i := uint64(1); i <= 3; i++ {
		tx := types.NewTransfer(alice, bob, uint256.NewInt(10), i-1)
		tx.SetHash()

		difficulty := uint32(2)
		if i > 2 {
			difficulty = 3
		}
		mineAndAppend(t, c, []*types.Transaction{tx}, difficulty)
	}

	require.NoError(t, c.ValidateChain())
}

func TestTransactionsForAddress(t *testing.T) {
	c := New()
	alice, bob := addrOf(1), addrOf(2)
	c.State.SetBalance(alice, uint256.NewInt(10_000_000_000_000_000))

	for i := uint64(0); i < 3; i++ {
		tx := types.NewTransfer(alice, bob, uint256.NewInt(100), i)
		tx.SetHash()
		mineAndAppend(t, c, []*types.Transaction{tx}, 1)
	}

	require.Len(t, c.TransactionsForAddress(alice), 3)
	require.Len(t, c.TransactionsForAddress(bob), 3)
}

func TestInsufficientBalanceRejectsTransfer(t *testing.T) {
	c := New()
	alice, bob := addrOf(1), addrOf(2)
	c.State.SetBalance(alice, uint256.NewInt(50))

	tx := types.NewTransfer(alice, bob, uint256.NewInt(100), 0)
	tx.SetHash()

	b := types.NewBlock(1, *c.LatestBlock().Hash, []*types.Transaction{tx}, types.GenesisGasLimit)
	_, err := pow.Mine(b, 1)
	require.NoError(t, err)
	require.Error(t, c.AddBlock(b))
}

func TestAddBlockRejectsOverGasLimit(t *testing.T) {
	c := New()
	alice, bob := addrOf(1), addrOf(2)
	c.State.SetBalance(alice, uint256.NewInt(10_000_000_000_000_000))

	tx := types.NewTransfer(alice, bob, uint256.NewInt(100), 0)
	tx.SetHash()

	b := types.NewBlock(1, *c.LatestBlock().Hash, []*types.Transaction{tx}, 1_000)
	_, err := pow.Mine(b, 1)
	require.NoError(t, err)
	require.Error(t, c.AddBlock(b))
}

func TestStatsReflectsChainActivity(t *testing.T) {
	c := New()
	alice, bob := addrOf(1), addrOf(2)
	c.State.SetBalance(alice, uint256.NewInt(10_000_000_000_000_000))

	tx := types.NewTransfer(alice, bob, uint256.NewInt(100), 0)
	tx.SetHash()
	mineAndAppend(t, c, []*types.Transaction{tx}, 1)

	stats := c.Stats()
	require.Equal(t, 2, stats.BlockCount)
	require.Equal(t, 1, stats.TransactionCount)
	require.Equal(t, uint64(DefaultChainID), stats.ChainID)
}
