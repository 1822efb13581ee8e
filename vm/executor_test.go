// Copyright 2024 The ledgerchain Authors
// This file is part of the ledgerchain library.

package vm

import (
	"testing"

	"github.com/coreledger/ledgerchain/blockchain/state"
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

func TestExecuteTransferMovesBalance(t *testing.T) {
	w := state.New()
	alice, bob := addrOf(1), addrOf(2)
	w.SetBalance(alice, uint256.NewInt(1_000_000_000_000_000_000))

	e := New(1, 0, addrOf(9), 30_000_000)
	e.LoadStateFromWorld(w)

	outcome, err := e.ExecuteTransaction(alice, &bob, uint256.NewInt(500), nil, 21_000, uint256.NewInt(1_000_000_000), 0)
	require.NoError(t, err)
	require.True(t, outcome.Success)
	require.Equal(t, "Success", outcome.Reason)

	e.SaveStateToWorld(w)
	require.Equal(t, uint256.NewInt(500), w.BalanceOf(bob))
}

func TestExecuteTransactionRevertSetsReason(t *testing.T) {
	w := state.New()
	alice := addrOf(1)
	w.SetBalance(alice, uint256.NewInt(1_000_000_000_000_000_000))

	e := New(1, 0, addrOf(9), 30_000_000)
	e.LoadStateFromWorld(w)

	// Init code that returns a 5-byte runtime body of PUSH1 0 PUSH1 0
	// REVERT, so every call into the deployed contract reverts.
	initCode := []byte{
		0x60, 0x05, 0x60, 0x0c, 0x60, 0x00, 0x39, 0x60, 0x05, 0x60, 0x00, 0xf3,
		0x60, 0x00, 0x60, 0x00, 0xfd,
	}
	deployOutcome, err := e.ExecuteTransaction(alice, nil, new(uint256.Int), initCode, 1_000_000, uint256.NewInt(1_000_000_000), 0)
	require.NoError(t, err)
	require.True(t, deployOutcome.Success)

	contract := *deployOutcome.ContractAddress
	e.SaveStateToWorld(w)
	e.LoadStateFromWorld(w)

	callOutcome, err := e.ExecuteTransaction(alice, &contract, new(uint256.Int), nil, 100_000, uint256.NewInt(1_000_000_000), 1)
	require.NoError(t, err)
	require.False(t, callOutcome.Success)
	require.True(t, callOutcome.Reverted)
	require.Equal(t, "Revert", callOutcome.Reason)
}

func TestCalculateCreateAddressIsDeterministic(t *testing.T) {
	deployer := addrOf(1)
	a1, err := CalculateCreateAddress(deployer, 0)
	require.NoError(t, err)
	a2, err := CalculateCreateAddress(deployer, 0)
	require.NoError(t, err)
	require.Equal(t, a1, a2)

	a3, err := CalculateCreateAddress(deployer, 1)
	require.NoError(t, err)
	require.NotEqual(t, a1, a3)
}

func TestEncodeDecodeUint256RoundTrip(t *testing.T) {
	v := uint256.NewInt(424242)
	encoded := EncodeUint256(v)
	require.Len(t, encoded, 32)
	require.Equal(t, v, DecodeUint256(encoded))
}

func TestParseBytecodeAcceptsWithAndWithoutPrefix(t *testing.T) {
	b1, err := ParseBytecode("0x6080")
	require.NoError(t, err)
	b2, err := ParseBytecode("6080")
	require.NoError(t, err)
	require.Equal(t, b1, b2)
}

func TestEncodeFunctionCallSelectorLength(t *testing.T) {
	calldata := EncodeFunctionCall("set(uint256)", EncodeUint256(uint256.NewInt(1)))
	require.Len(t, calldata, 4+32)
}
