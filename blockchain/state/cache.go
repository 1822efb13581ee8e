// Copyright 2024 The ledgerchain Authors
// This file is part of the ledgerchain library.
//
// The ledgerchain library is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

package state

import (
	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru"
)

// AccountCache bounds the memory a read-mostly query path (an RPC
// front-end servicing eth_getBalance-style calls against a released
// snapshot) spends caching account lookups.
type AccountCache struct {
	cache *lru.Cache
}

// NewAccountCache builds a cache holding up to size snapshot entries.
func NewAccountCache(size int) *AccountCache {
	c, err := lru.New(size)
	if err != nil {
		// lru.New only errors on a non-positive size; a fixed default wins.
		c, _ = lru.New(128)
	}
	return &AccountCache{cache: c}
}

// Snapshot caches a deep copy of acc for addr as of a given state root,
// so a reader holding a stale root still observes a consistent view.
func (c *AccountCache) Snapshot(root common.Hash, addr common.Address, acc *Account) {
	c.cache.Add(cacheKey{root, addr}, acc.DeepCopy())
}

// Lookup returns the cached account for (root, addr), if present.
func (c *AccountCache) Lookup(root common.Hash, addr common.Address) (*Account, bool) {
	v, ok := c.cache.Get(cacheKey{root, addr})
	if !ok {
		return nil, false
	}
	return v.(*Account), true
}

// Purge discards every cached entry; WorldState.Restore calls it when it
// replaces the account map wholesale.
func (c *AccountCache) Purge() {
	c.cache.Purge()
}

type cacheKey struct {
	root common.Hash
	addr common.Address
}
