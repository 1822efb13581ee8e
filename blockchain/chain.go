// Copyright 2024 The ledgerchain Authors
// This file is part of the ledgerchain library.
//
// The ledgerchain library is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

// Package blockchain ties the world state, transaction pipeline and
// proof-of-work seal together into the Blockchain type.
package blockchain

import (
	"fmt"
	"io"

	"github.com/coreledger/ledgerchain/blockchain/chainerror"
	"github.com/coreledger/ledgerchain/blockchain/state"
	"github.com/coreledger/ledgerchain/blockchain/types"
	"github.com/coreledger/ledgerchain/consensus/pow"
	ledgerlog "github.com/coreledger/ledgerchain/log"
	"github.com/coreledger/ledgerchain/vm"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var logger = ledgerlog.NewModuleLogger(ledgerlog.Chain)

// DefaultChainID is the chain identifier assigned by New.
const DefaultChainID = 1337

// GenesisDifficulty is the proof-of-work difficulty the genesis block is
// mined at.
const GenesisDifficulty = 2

// perTxExecutionGasLimit is the gas limit given to the internal VM
// instance used to execute a single contract deployment or call; it is
// independent of the enclosing block's own GasLimit.
const perTxExecutionGasLimit = 50_000_000

// transferGasUsed is the fixed gas cost attributed to a plain transfer
// or a coinbase mint, neither of which runs through the VM.
const transferGasUsed = 21_000

// Blockchain is the append-only sequence of sealed blocks plus the
// world state they have collectively produced.
type Blockchain struct {
	Blocks  []*types.Block
	State   *state.WorldState
	ChainID uint64
}

// New returns a fresh chain holding only the genesis block, mined at
// GenesisDifficulty like any other block.
func New() *Blockchain {
	genesis := types.Genesis(0)
	if _, err := pow.Mine(genesis, GenesisDifficulty); err != nil {
		panic(fmt.Sprintf("blockchain: failed to mine genesis block: %v", err))
	}
	logger.Info("creating blockchain", "genesis_hash", genesis.Hash)
	return &Blockchain{
		Blocks:  []*types.Block{genesis},
		State:   state.New(),
		ChainID: DefaultChainID,
	}
}

// NewWithChainID returns a fresh chain with a custom chain identifier.
func NewWithChainID(chainID uint64) *Blockchain {
	c := New()
	c.ChainID = chainID
	return c
}

// LatestBlock returns the most recently appended block.
func (c *Blockchain) LatestBlock() *types.Block {
	return c.Blocks[len(c.Blocks)-1]
}

// BlockCount returns the number of blocks in the chain, genesis included.
func (c *Blockchain) BlockCount() int {
	return len(c.Blocks)
}

// BlockByNumber returns the block at the given height, if any.
func (c *Blockchain) BlockByNumber(number uint64) (*types.Block, bool) {
	if number >= uint64(len(c.Blocks)) {
		return nil, false
	}
	return c.Blocks[number], true
}

// BlockByHash linearly searches for the block carrying the given hash.
func (c *Blockchain) BlockByHash(hash common.Hash) (*types.Block, bool) {
	for _, b := range c.Blocks {
		if b.Hash != nil && *b.Hash == hash {
			return b, true
		}
	}
	return nil, false
}

// AddBlock appends block to the chain after validating its number,
// parentage and (if already sealed) its proof of work, then replays its
// transactions against the world state and fills in GasUsed. A block
// without a Hash is accepted unsealed and its hash is computed in place
// — AddBlock never mines on the caller's behalf.
func (c *Blockchain) AddBlock(block *types.Block) error {
	expected := c.LatestBlock().Number + 1
	if block.Number != expected {
		return chainerror.New(chainerror.InvalidNumber,
			"invalid block number: expected %d, got %d", expected, block.Number)
	}

	latestHash := c.LatestBlock().Hash
	if latestHash == nil || block.ParentHash != *latestHash {
		return chainerror.New(chainerror.InvalidParent, "invalid parent hash for block %d", block.Number)
	}

	if block.Hash != nil && !pow.IsValidProof(block, 1) {
		return chainerror.New(chainerror.InvalidPoW, "invalid proof of work for block %d", block.Number)
	}

	var totalGasUsed uint64
	for _, tx := range block.Transactions {
		outcome, err := c.ExecuteTransaction(tx)
		if err != nil {
			return err
		}
		if outcome != nil {
			totalGasUsed += outcome.GasUsed
		} else {
			totalGasUsed += transferGasUsed
		}
	}
	block.GasUsed = totalGasUsed
	if err := block.ValidateGasUsage(); err != nil {
		return err
	}

	if block.Hash == nil {
		block.SetHash()
	}

	logger.Info("added block", "number", block.Number, "hash", block.Hash, "txs", len(block.Transactions))
	c.Blocks = append(c.Blocks, block)
	return nil
}

// ExecuteTransaction applies a single transaction to the world state. A
// from-zero-address coinbase mint bypasses validation and nonce
// bookkeeping entirely and returns a nil outcome, as does a plain
// transfer (which carries no VM execution result); contract deployments
// and calls return a populated *vm.ExecutionOutcome.
func (c *Blockchain) ExecuteTransaction(tx *types.Transaction) (*vm.ExecutionOutcome, error) {
	if tx.From == (common.Address{}) && tx.To != nil {
		c.State.AddBalance(*tx.To, tx.Value)
		logger.Debug("minted coinbase reward", "to", tx.To, "amount", tx.Value)
		return nil, nil
	}

	if err := tx.Validate(); err != nil {
		return nil, err
	}

	if tx.IsContractDeployment() || tx.IsContractCall() {
		return c.executeWithVM(tx)
	}

	expectedNonce := c.State.NonceOf(tx.From)
	if tx.Nonce != expectedNonce {
		return nil, chainerror.New(chainerror.InvalidNonce,
			"invalid nonce for %s: expected %d, got %d", tx.From, expectedNonce, tx.Nonce)
	}

	totalCost := new(uint256.Int).Add(tx.Value, tx.EstimatedGasCost())
	if c.State.BalanceOf(tx.From).Lt(totalCost) {
		return nil, chainerror.New(chainerror.InsufficientBalance,
			"insufficient balance for %s to cover value and gas", tx.From)
	}

	if err := c.State.Transfer(tx.From, *tx.To, tx.Value); err != nil {
		return nil, err
	}
	if err := c.State.SubBalance(tx.From, tx.EstimatedGasCost()); err != nil {
		return nil, err
	}

	logger.Debug("transfer executed", "from", tx.From, "to", tx.To, "value", tx.Value)
	return nil, nil
}

// executeWithVM runs a deployment or call transaction through the
// VMExecutor seam, persisting the resulting world state and installing
// deployed contract code on success.
func (c *Blockchain) executeWithVM(tx *types.Transaction) (*vm.ExecutionOutcome, error) {
	latest := c.LatestBlock()
	nonceBefore := c.State.NonceOf(tx.From)
	executor := vm.New(latest.Number+1, uint64(latest.Timestamp), common.Address{}, perTxExecutionGasLimit)
	executor.LoadStateFromWorld(c.State)

	outcome, err := executor.ExecuteTransaction(tx.From, tx.To, tx.Value, tx.Data, tx.GasLimit, tx.GasPrice, tx.Nonce)
	if err != nil {
		return nil, err
	}

	executor.SaveStateToWorld(c.State)
	// The EVM advances the sender's nonce on its own; the sender ends one
	// step past its pre-execution nonce, however many steps the VM took.
	c.State.GetOrCreate(tx.From).Nonce = nonceBefore + 1
	c.State.UpdateStateRoot()

	if !outcome.Success {
		logger.Debug("vm execution failed", "from", tx.From, "to", tx.To, "err", outcome.Err)
		return outcome, nil
	}

	switch tx.Type {
	case types.ContractDeployment:
		if outcome.ContractAddress != nil && len(outcome.ReturnData) > 0 {
			c.State.SetCode(*outcome.ContractAddress, outcome.ReturnData)
			logger.Info("contract deployed", "address", outcome.ContractAddress, "from", tx.From)
		}
	case types.ContractCall:
		logger.Debug("contract call executed", "to", tx.To, "return_bytes", len(outcome.ReturnData))
	}

	return outcome, nil
}

// DeployContract builds and executes a contract-deployment
// transaction on its own, returning the resulting contract address and
// execution outcome. It does not mine or append a block; callers drive
// the PoW seal through work.Miner.
func (c *Blockchain) DeployContract(deployer common.Address, bytecode, constructorArgs []byte, value *uint256.Int) (common.Address, *vm.ExecutionOutcome, error) {
	nonce := c.State.NonceOf(deployer)
	contractAddr, err := vm.CalculateCreateAddress(deployer, nonce)
	if err != nil {
		return common.Address{}, nil, err
	}

	data := append(append([]byte(nil), bytecode...), constructorArgs...)
	tx := types.NewContractDeployment(deployer, data, value, nonce)
	tx.SetHash()

	outcome, err := c.ExecuteTransaction(tx)
	if err != nil {
		return common.Address{}, nil, err
	}
	if !outcome.Success {
		return common.Address{}, outcome, chainerror.New(chainerror.Revert, "contract deployment failed: %v", outcome.Err)
	}
	return contractAddr, outcome, nil
}

// CallContract builds, executes and returns the outcome of a
// state-changing contract call.
func (c *Blockchain) CallContract(caller, contract common.Address, calldata []byte, value *uint256.Int) (*vm.ExecutionOutcome, error) {
	nonce := c.State.NonceOf(caller)
	tx := types.NewContractCall(caller, contract, calldata, value, nonce)
	tx.SetHash()
	return c.ExecuteTransaction(tx)
}

// ViewCall executes a read-only call against the current world state
// without mutating it or consuming a nonce.
func (c *Blockchain) ViewCall(caller, contract common.Address, calldata []byte) ([]byte, error) {
	latest := c.LatestBlock()
	executor := vm.New(latest.Number+1, uint64(latest.Timestamp), common.Address{}, perTxExecutionGasLimit)
	executor.LoadStateFromWorld(c.State)
	return executor.ViewCall(caller, contract, calldata)
}

// ValidateChain walks the full chain checking genesis shape, block
// numbering, parent linkage and proof of work. Blocks at height 1 and 2
// are checked against difficulty 2, every later block against
// difficulty 3 — a stricter bar than the difficulty-1 check AddBlock
// itself applies.
func (c *Blockchain) ValidateChain() error {
	if len(c.Blocks) == 0 {
		return chainerror.New(chainerror.InvalidNumber, "empty blockchain")
	}

	genesis := c.Blocks[0]
	if genesis.Number != 0 || genesis.ParentHash != (common.Hash{}) {
		return chainerror.New(chainerror.InvalidNumber, "invalid genesis block")
	}

	for i := 1; i < len(c.Blocks); i++ {
		current := c.Blocks[i]
		previous := c.Blocks[i-1]

		if current.Number != previous.Number+1 {
			return chainerror.New(chainerror.InvalidNumber, "invalid block number at position %d", i)
		}
		if previous.Hash == nil || current.ParentHash != *previous.Hash {
			return chainerror.New(chainerror.InvalidParent, "invalid parent hash at block %d", current.Number)
		}

		difficulty := uint32(3)
		if current.Number <= 2 {
			difficulty = 2
		}
		if !pow.IsValidProof(current, difficulty) {
			return chainerror.New(chainerror.InvalidPoW, "invalid proof of work at block %d", current.Number)
		}
	}

	logger.Info("chain validated", "blocks", len(c.Blocks))
	return nil
}

// TotalSupply sums every block's coinbase reward.
func (c *Blockchain) TotalSupply() uint64 {
	var total uint64
	for _, b := range c.Blocks {
		if b.Number == 0 || len(b.Transactions) == 0 {
			continue
		}
		coinbase := b.Transactions[0]
		if coinbase.From == (common.Address{}) {
			total += coinbase.Value.Uint64()
		}
	}
	return total
}

// TransactionCount returns the current nonce of addr, the number of
// outgoing transactions it has sent.
func (c *Blockchain) TransactionCount(addr common.Address) uint64 {
	return c.State.NonceOf(addr)
}

// TransactionsForAddress collects, in chain order, every transaction
// where addr appears as sender or recipient.
func (c *Blockchain) TransactionsForAddress(addr common.Address) []*types.Transaction {
	var txs []*types.Transaction
	for _, b := range c.Blocks {
		for _, tx := range b.Transactions {
			if tx.From == addr || (tx.To != nil && *tx.To == addr) {
				txs = append(txs, tx)
			}
		}
	}
	return txs
}

// Stats summarizes chain-wide counters.
type Stats struct {
	BlockCount       int
	TransactionCount int
	TotalGasUsed     uint64
	TotalSupply      uint64
	ContractCount    int
	ChainID          uint64
}

// Stats computes a fresh Stats snapshot.
func (c *Blockchain) Stats() Stats {
	var txCount int
	var gasUsed uint64
	for _, b := range c.Blocks {
		txCount += len(b.Transactions)
		gasUsed += b.GasUsed
	}

	var contractCount int
	c.State.ForEachAccount(func(_ common.Address, acc *state.Account) {
		if acc.IsContract() {
			contractCount++
		}
	})

	return Stats{
		BlockCount:       len(c.Blocks),
		TransactionCount: txCount,
		TotalGasUsed:     gasUsed,
		TotalSupply:      c.TotalSupply(),
		ContractCount:    contractCount,
		ChainID:          c.ChainID,
	}
}

// DebugDump writes a human-readable summary of the chain to out.
func (c *Blockchain) DebugDump(out io.Writer) {
	stats := c.Stats()
	fmt.Fprintf(out, "=== BLOCKCHAIN INFO ===\n")
	fmt.Fprintf(out, "Chain ID: %d\n", c.ChainID)
	fmt.Fprintf(out, "Total blocks: %d\n", stats.BlockCount)
	fmt.Fprintf(out, "Latest block: %d\n", c.LatestBlock().Number)
	fmt.Fprintf(out, "Total supply: %d wei\n\n", stats.TotalSupply)

	fmt.Fprintf(out, "=== BLOCKS ===\n")
	for _, b := range c.Blocks {
		fmt.Fprintf(out, "Block %d: %s (%d txs, %d gas used)\n", b.Number, b.Hash, len(b.Transactions), b.GasUsed)
	}

	fmt.Fprintf(out, "\n=== CONTRACTS ===\n")
	c.State.DebugDumpContracts(out)
}
