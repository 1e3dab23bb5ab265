// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package xref caches cross-references from DBpedia resources to authority
// files (VIAF for people, GeoNames for places).
//
// A Cache is created by the caller and handed to every resource of a
// session. Concurrent lookups of the same key share one resolution, and
// results (including "not found") are kept for the life of the Cache. An
// optional Store persists results between runs.
package xref

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Authority names an authority file.
type Authority string

const (
	VIAF     Authority = "viaf"
	GeoNames Authority = "geonames"
)

// Ref identifies a record in an authority file.
type Ref struct {
	ID  string `json:"id" yaml:"id"`
	URI string `json:"uri" yaml:"uri"`
}

// Entry is a cached resolution. Found is false for a negative result.
type Entry struct {
	Ref   Ref
	Found bool
}

// Store persists entries across runs.
type Store interface {
	Lookup(ctx context.Context, auth Authority, uri string) (Entry, bool, error)
	Save(ctx context.Context, auth Authority, uri string, e Entry) error
}

// ResolveFunc looks up a cross-reference. It returns found=false when the
// authority has no matching record; an error means the lookup itself
// failed and nothing is cached.
type ResolveFunc func(ctx context.Context) (ref Ref, found bool, err error)

type key struct {
	auth Authority
	uri  string
}

// Cache is an in-memory cross-reference cache, optionally backed by a Store.
type Cache struct {
	store Store

	entries map[key]Entry
	mu      sync.RWMutex
	group   singleflight.Group
}

// NewCache returns an empty cache. store may be nil.
func NewCache(store Store) *Cache {
	return &Cache{
		store:   store,
		entries: make(map[key]Entry),
	}
}

func (c *Cache) cached(k key) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[k]
	return e, ok
}

func (c *Cache) put(k key, e Entry) {
	c.mu.Lock()
	c.entries[k] = e
	c.mu.Unlock()
}

// Resolve returns the cached entry for (auth, uri) or calls resolve once to
// fill it. Store failures are not fatal: the memory tier still answers.
func (c *Cache) Resolve(ctx context.Context, auth Authority, uri string, resolve ResolveFunc) (Entry, error) {
	k := key{auth, uri}
	if e, ok := c.cached(k); ok {
		return e, nil
	}

	v, err, _ := c.group.Do(string(auth)+" "+uri, func() (any, error) {
		if e, ok := c.cached(k); ok {
			return e, nil
		}
		if c.store != nil {
			if e, ok, err := c.store.Lookup(ctx, auth, uri); err == nil && ok {
				c.put(k, e)
				return e, nil
			}
		}

		ref, found, err := resolve(ctx)
		if err != nil {
			return Entry{}, err
		}
		e := Entry{Ref: ref, Found: found}
		c.put(k, e)
		if c.store != nil {
			// a failed write only costs a lookup next run
			_ = c.store.Save(ctx, auth, uri, e)
		}
		return e, nil
	})
	if err != nil {
		return Entry{}, err
	}
	return v.(Entry), nil
}

// Len returns the number of entries held in memory.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
