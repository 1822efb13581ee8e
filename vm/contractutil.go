// Copyright 2024 The ledgerchain Authors
// This file is part of the ledgerchain library.
//
// The ledgerchain library is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

package vm

import (
	"strings"

	"github.com/coreledger/ledgerchain/blockchain/chainerror"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

// CalculateCreateAddress derives the address a CREATE from deployer at
// nonce would produce: keccak256(rlp([deployer, nonce]))[12:].
func CalculateCreateAddress(deployer common.Address, nonce uint64) (common.Address, error) {
	enc, err := rlp.EncodeToBytes([]interface{}{deployer, nonce})
	if err != nil {
		return common.Address{}, chainerror.New(chainerror.VMError, "rlp encode failed: %v", err)
	}
	return common.BytesToAddress(crypto.Keccak256(enc)[12:]), nil
}

// CalculateCreate2Address derives the address a CREATE2 from deployer
// with the given salt and init-code hash would produce:
// keccak256(0xff ++ deployer ++ salt ++ codeHash)[12:].
func CalculateCreate2Address(deployer common.Address, salt, codeHash common.Hash) common.Address {
	return crypto.CreateAddress2(deployer, salt, codeHash.Bytes())
}

// EncodeFunctionCall builds ABI-style calldata: the first four bytes of
// keccak256(signature) followed by the already-encoded parameters.
func EncodeFunctionCall(signature string, params ...[]byte) []byte {
	selector := crypto.Keccak256([]byte(signature))[:4]
	calldata := append([]byte(nil), selector...)
	for _, p := range params {
		calldata = append(calldata, p...)
	}
	return calldata
}

// EncodeUint256 big-endian pads value to a 32-byte ABI word.
func EncodeUint256(value *uint256.Int) []byte {
	b := value.Bytes32()
	return b[:]
}

// DecodeUint256 reads a 32-byte ABI word as a U256, zero if data is too
// short.
func DecodeUint256(data []byte) *uint256.Int {
	v := new(uint256.Int)
	if len(data) < 32 {
		return v
	}
	v.SetBytes(data[:32])
	return v
}

// ParseBytecode strips an optional 0x prefix and hex-decodes s.
func ParseBytecode(s string) ([]byte, error) {
	clean := strings.TrimPrefix(s, "0x")
	b, err := hexutil.Decode("0x" + clean)
	if err != nil {
		return nil, chainerror.New(chainerror.VMError, "invalid bytecode hex: %v", err)
	}
	return b, nil
}
