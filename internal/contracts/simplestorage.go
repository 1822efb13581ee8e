// Copyright 2024 The ledgerchain Authors
// This file is part of the ledgerchain library.
//
// The ledgerchain library is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

// Package contracts bundles sample Solidity bytecode the CLI and tests
// deploy against a running chain.
package contracts

import (
	"github.com/coreledger/ledgerchain/vm"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// simpleStorageHex is the compiled bytecode of:
//
//	contract SimpleStorage {
//	    uint256 private storedData;
//	    function store(uint256 x) public { storedData = x; }
//	    function get() public view returns (uint256) { return storedData; }
//	}
const simpleStorageHex = "608060405234801561001057600080fd5b50610150806100206000396000f3fe608060405234801561001057600080fd5b50600436106100365760003560e01c80636057361d1461003b5780636d4ce63c14610057575b600080fd5b61005560048036038101906100509190610094565b610075565b005b61005f6100a8565b60405161006c91906100cf565b60405180910390f35b8060008190555050565b60008054905090565b60008135905061009d81610102565b92915050565b6000602082840312156100b557600080fd5b60006100c38482850161008e565b91505092915050565b6100d5816100f8565b82525050565b60006020820190506100f060008301846100cc565b92915050565b6000819050919050565b61010b816100f8565b811461011657600080fd5b5056fea2646970667358221220abcdef1234567890abcdef1234567890abcdef1234567890abcdef123456789064736f6c63430008070033"

var setSelector = [4]byte{0x60, 0x57, 0x36, 0x1d}  // store(uint256)
var getSelector = [4]byte{0x6d, 0x4c, 0xe6, 0x3c}  // get()

// SimpleStorageBytecode returns the SimpleStorage contract's init
// bytecode, ready to be used as a ContractDeployment transaction's data.
func SimpleStorageBytecode() []byte {
	b, err := hexutil.Decode("0x" + simpleStorageHex)
	if err != nil {
		// The embedded constant is a fixed, known-good hex string.
		panic("contracts: invalid embedded bytecode: " + err.Error())
	}
	return b
}

// EncodeSetCall builds calldata for SimpleStorage.set(value).
func EncodeSetCall(value *uint256.Int) []byte {
	calldata := append([]byte(nil), setSelector[:]...)
	return append(calldata, vm.EncodeUint256(value)...)
}

// EncodeGetCall builds calldata for SimpleStorage.get().
func EncodeGetCall() []byte {
	return append([]byte(nil), getSelector[:]...)
}

// DecodeGetResult decodes the uint256 returned by SimpleStorage.get().
func DecodeGetResult(returnData []byte) *uint256.Int {
	return vm.DecodeUint256(returnData)
}
