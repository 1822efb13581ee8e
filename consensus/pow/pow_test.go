// Copyright 2024 The ledgerchain Authors
// This file is part of the ledgerchain library.

package pow

import (
	"testing"

	"github.com/coreledger/ledgerchain/blockchain/types"
	"github.com/stretchr/testify/require"
)

func TestMineProducesValidProof(t *testing.T) {
	b := types.NewBlock(1, types.Genesis(0).CalculateHash(), nil, types.GenesisGasLimit)
	result, err := Mine(b, 1)
	require.NoError(t, err)
	require.Greater(t, result.Attempts, uint64(0))
	require.True(t, IsValidProof(b, 1))
}

func TestIsValidProofRejectsUnsealedBlock(t *testing.T) {
	b := types.NewBlock(1, types.Genesis(0).CalculateHash(), nil, types.GenesisGasLimit)
	require.False(t, IsValidProof(b, 1))
}

func TestHasLeadingZeroHexDigitsOddCount(t *testing.T) {
	h := []byte{0x00, 0x05}
	require.True(t, hasLeadingZeroHexDigits(h, 3))
	require.False(t, hasLeadingZeroHexDigits(h, 4))
}

func TestDifficultyZeroAlwaysValid(t *testing.T) {
	b := types.NewBlock(1, types.Genesis(0).CalculateHash(), nil, types.GenesisGasLimit)
	h := b.CalculateHash()
	b.Hash = &h
	require.True(t, IsValidProof(b, 0))
}

func TestSealerUsesConfiguredDifficulty(t *testing.T) {
	s := NewSealer(WithDifficulty(2))
	require.Equal(t, uint32(2), s.Difficulty())

	b := types.NewBlock(1, types.Genesis(0).CalculateHash(), nil, types.GenesisGasLimit)
	_, err := s.Mine(b)
	require.NoError(t, err)
	require.True(t, IsValidProof(b, 2))
}

func TestNewSealerDefaultsToDefaultDifficulty(t *testing.T) {
	s := NewSealer()
	require.Equal(t, DefaultDifficulty, s.Difficulty())
}
