// Package params implements the parameter module (spec.md §4.10, part of
// C10): subspaces of typed key/value parameters, each module owning its
// own byte-prefixed region with a validating setter.
package params

import (
	"encoding/json"
	"fmt"

	"github.com/synnergy-chain/framework/store/rootmulti"
	"github.com/synnergy-chain/framework/types"
)

// StoreKey names the params module's own sub-store.
const StoreKey rootmulti.StoreKey = "params"

// Validator rejects a malformed raw value before it is written.
type Validator func(raw []byte) error

// Subspace is one module's typed parameter region: a byte prefix plus,
// per key, an optional validator.
type Subspace struct {
	name       string
	validators map[string]Validator
}

// NewSubspace returns a handle scoped to name; name becomes the byte
// prefix every key in this subspace is stored under.
func NewSubspace(name string) *Subspace {
	return &Subspace{name: name, validators: make(map[string]Validator)}
}

// WithValidator registers a validation callback for key, checked on
// every Set.
func (s *Subspace) WithValidator(key string, v Validator) *Subspace {
	s.validators[key] = v
	return s
}

func (s *Subspace) storeKey(key string) []byte {
	return []byte(s.name + "/" + key)
}

// Set JSON-encodes value, validates it if a validator is registered for
// key, and persists it.
func (s *Subspace) Set(ctx types.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("params: marshal %s.%s: %w", s.name, key, err)
	}
	return s.SetRaw(ctx, key, raw)
}

// SetRaw validates and persists a pre-encoded JSON value, without
// wrapping it in another marshal pass. Used by callers such as
// governance proposals that already carry the parameter's intended
// wire representation as text.
func (s *Subspace) SetRaw(ctx types.Context, key string, raw []byte) error {
	if v, ok := s.validators[key]; ok {
		if err := v(raw); err != nil {
			return types.ErrInvalidRequest(fmt.Sprintf("params: %s.%s: %v", s.name, key, err))
		}
	}
	ctx.KVStore(StoreKey).Set(s.storeKey(key), raw)
	return nil
}

// Get JSON-decodes key's value into dst, returning false if unset.
func (s *Subspace) Get(ctx types.Context, key string, dst interface{}) bool {
	raw := ctx.KVStore(StoreKey).Get(s.storeKey(key))
	if raw == nil {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		panic(fmt.Sprintf("params: corrupt value for %s.%s: %v", s.name, key, err))
	}
	return true
}

// GetUint64 is a convenience wrapper around Get for the common case of a
// single numeric parameter, falling back to def if unset.
func (s *Subspace) GetUint64(ctx types.Context, key string, def uint64) uint64 {
	var v uint64
	if s.Get(ctx, key, &v) {
		return v
	}
	return def
}

func (s *Subspace) GetInt(ctx types.Context, key string, def int) int {
	var v int
	if s.Get(ctx, key, &v) {
		return v
	}
	return def
}
