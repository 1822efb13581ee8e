// Copyright 2024 The ledgerchain Authors
// This file is part of the ledgerchain library.
//
// The ledgerchain library is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

package vm

import (
	"errors"
	"math/big"

	"github.com/coreledger/ledgerchain/blockchain/chainerror"
	"github.com/coreledger/ledgerchain/blockchain/state"
	ledgerlog "github.com/coreledger/ledgerchain/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core"
	gethvm "github.com/ethereum/go-ethereum/core/vm"
	coretypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"
	"github.com/holiman/uint256"
)

var logger = ledgerlog.NewModuleLogger(ledgerlog.VM)

// ChainID is the fixed chain identifier the executor reports to the EVM.
const ChainID = 1337

// chainConfig activates every stable fork from genesis; this engine has
// no hard-fork schedule of its own, only a single always-current ruleset.
var chainConfig = &params.ChainConfig{
	ChainID:             big.NewInt(ChainID),
	HomesteadBlock:      big.NewInt(0),
	EIP150Block:         big.NewInt(0),
	EIP155Block:         big.NewInt(0),
	EIP158Block:         big.NewInt(0),
	ByzantiumBlock:      big.NewInt(0),
	ConstantinopleBlock: big.NewInt(0),
	PetersburgBlock:     big.NewInt(0),
	IstanbulBlock:       big.NewInt(0),
	MuirGlacierBlock:    big.NewInt(0),
	BerlinBlock:         big.NewInt(0),
	LondonBlock:         big.NewInt(0),
}

// ExecutionOutcome reports the result of running a single transaction
// through the EVM.
type ExecutionOutcome struct {
	Success         bool
	Reverted        bool
	Reason          string
	GasUsed         uint64
	GasRefunded     uint64
	ReturnData      []byte
	ContractAddress *common.Address
	Logs            []*coretypes.Log
	Err             error
}

// VMExecutor is the seam between the chain's transaction pipeline and a
// real contract VM. It owns no permanent state: callers must
// LoadStateFromWorld before executing and SaveStateToWorld afterward.
type VMExecutor struct {
	db          *stateDB
	blockNumber uint64
	blockTime   uint64
	coinbase    common.Address
	gasLimit    uint64
}

// New builds an executor scoped to a single block's context.
func New(blockNumber, blockTimestamp uint64, coinbase common.Address, gasLimit uint64) *VMExecutor {
	return &VMExecutor{
		db:          newStateDB(),
		blockNumber: blockNumber,
		blockTime:   blockTimestamp,
		coinbase:    coinbase,
		gasLimit:    gasLimit,
	}
}

// LoadStateFromWorld replaces the executor's working set with a copy of
// w's accounts and storage.
func (e *VMExecutor) LoadStateFromWorld(w *state.WorldState) {
	e.db = newStateDB()
	e.db.loadFromWorld(w)
}

// SaveStateToWorld copies the executor's working set back into w.
func (e *VMExecutor) SaveStateToWorld(w *state.WorldState) {
	e.db.saveToWorld(w)
}

func (e *VMExecutor) getHash(n uint64) common.Hash {
	return common.Hash{}
}

func (e *VMExecutor) blockContext() gethvm.BlockContext {
	return gethvm.BlockContext{
		CanTransfer: core.CanTransfer,
		Transfer:    core.Transfer,
		GetHash:     e.getHash,
		Coinbase:    e.coinbase,
		BlockNumber: new(big.Int).SetUint64(e.blockNumber),
		Time:        e.blockTime,
		Difficulty:  big.NewInt(0),
		BaseFee:     big.NewInt(1_000_000_000),
		GasLimit:    e.gasLimit,
	}
}

// ExecuteTransaction runs a transfer, deployment, or call through the
// EVM against the currently loaded working set and returns its outcome.
// to is nil for a contract deployment.
func (e *VMExecutor) ExecuteTransaction(from common.Address, to *common.Address, value *uint256.Int, data []byte, gasLimit uint64, gasPrice *uint256.Int, nonce uint64) (*ExecutionOutcome, error) {
	msg := &core.Message{
		To:                to,
		From:              from,
		Nonce:             nonce,
		Value:             value.ToBig(),
		GasLimit:          gasLimit,
		GasPrice:          gasPrice.ToBig(),
		GasFeeCap:         gasPrice.ToBig(),
		GasTipCap:         gasPrice.ToBig(),
		Data:              data,
		SkipAccountChecks: true,
	}

	evm := gethvm.NewEVM(e.blockContext(), core.NewEVMTxContext(msg), e.db, chainConfig, gethvm.Config{})

	gp := new(core.GasPool).AddGas(msg.GasLimit)
	result, err := core.ApplyMessage(evm, msg, gp)
	if err != nil {
		return nil, chainerror.New(chainerror.VMError, "evm apply message failed: %v", err)
	}

	outcome := &ExecutionOutcome{
		GasUsed:    result.UsedGas,
		ReturnData: result.ReturnData,
		Logs:       e.db.logs,
	}

	if result.Failed() {
		outcome.Success = false
		outcome.Err = result.Err
		outcome.Reverted = errors.Is(result.Err, gethvm.ErrExecutionReverted)
		if outcome.Reverted {
			outcome.Reason = "Revert"
		} else {
			outcome.Reason = result.Err.Error()
		}
		logger.Debug("transaction execution failed", "from", from, "to", to, "err", result.Err)
		return outcome, nil
	}

	outcome.Success = true
	outcome.Reason = "Success"
	outcome.GasRefunded = e.db.GetRefund()
	if to == nil {
		addr := crypto.CreateAddress(from, nonce)
		outcome.ContractAddress = &addr
	}
	return outcome, nil
}

// ViewCall runs a read-only call against the currently loaded working
// set and returns its return data, discarding any state changes the
// call would otherwise have produced (the caller must not call
// SaveStateToWorld after a ViewCall it wants to discard).
func (e *VMExecutor) ViewCall(caller, contract common.Address, calldata []byte) ([]byte, error) {
	snapshot := e.db.Snapshot()
	defer e.db.RevertToSnapshot(snapshot)

	outcome, err := e.ExecuteTransaction(caller, &contract, new(uint256.Int), calldata, 10_000_000, new(uint256.Int), e.db.GetNonce(caller))
	if err != nil {
		return nil, err
	}
	if !outcome.Success {
		return nil, chainerror.New(chainerror.Revert, "view call reverted: %v", outcome.Err)
	}
	return outcome.ReturnData, nil
}
