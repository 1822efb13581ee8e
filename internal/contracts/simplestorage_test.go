// Copyright 2024 The ledgerchain Authors
// This file is part of the ledgerchain library.

package contracts

import (
	"testing"

	"github.com/coreledger/ledgerchain/blockchain"
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

func TestSimpleStorageDeploySetGet(t *testing.T) {
	chain := blockchain.New()
	deployer := addrOf(1)
	chain.State.SetBalance(deployer, uint256.NewInt(1_000_000_000_000_000_000))

	contractAddr, deployOutcome, err := chain.DeployContract(deployer, SimpleStorageBytecode(), nil, new(uint256.Int))
	require.NoError(t, err)
	require.True(t, deployOutcome.Success)
	require.True(t, chain.State.IsContract(contractAddr))

	setOutcome, err := chain.CallContract(deployer, contractAddr, EncodeSetCall(uint256.NewInt(99)), new(uint256.Int))
	require.NoError(t, err)
	require.True(t, setOutcome.Success)

	returnData, err := chain.ViewCall(deployer, contractAddr, EncodeGetCall())
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(99), DecodeGetResult(returnData))
}
