package types

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/ripemd160" //lint:ignore SA1019 address hashing only, matches core/wallet.go
)

// MaxAddressLength is the bound spec.md §3/§8 fixes for any address form.
const MaxAddressLength = 255

// AddressKind tags which key-space an address belongs to, per spec.md §3.
type AddressKind uint8

const (
	AddressAccount AddressKind = iota
	AddressValidator
	AddressConsensus
)

// Bech32RootPrefix is the chain-wide human-readable prefix root. Validator
// and consensus addresses append "valoper"/"valcons" per spec.md §6.
var Bech32RootPrefix = "syn"

func hrpFor(kind AddressKind) string {
	switch kind {
	case AddressValidator:
		return Bech32RootPrefix + "valoper"
	case AddressConsensus:
		return Bech32RootPrefix + "valcons"
	default:
		return Bech32RootPrefix
	}
}

// Address is a bounded, uninterpreted byte string naming an account,
// validator operator, or validator consensus key, per spec.md §3.
type Address struct {
	bytes []byte
	kind  AddressKind
}

// NewAddress validates and wraps raw bytes as an Address of the given kind.
func NewAddress(raw []byte, kind AddressKind) (Address, error) {
	if len(raw) == 0 {
		return Address{}, fmt.Errorf("address: empty byte string")
	}
	if len(raw) > MaxAddressLength {
		return Address{}, fmt.Errorf("invalid-length{max: %d, found: %d}", MaxAddressLength, len(raw))
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return Address{bytes: out, kind: kind}, nil
}

// AccAddressFromPubKey derives an account address from a compressed
// secp256k1 public key: sha256 then ripemd160, mirroring core/wallet.go's
// derivation chain.
func AccAddressFromPubKey(pubKey []byte) (Address, error) {
	sum := sha256.Sum256(pubKey)
	h := ripemd160.New()
	_, _ = h.Write(sum[:])
	return NewAddress(h.Sum(nil), AddressAccount)
}

// ModuleAddress derives a deterministic address for a named module account,
// per spec.md §3's "Module account addresses are deterministic from module
// name."
func ModuleAddress(name string) Address {
	sum := sha256.Sum256([]byte("module/" + name))
	h := ripemd160.New()
	_, _ = h.Write(sum[:])
	addr, _ := NewAddress(h.Sum(nil), AddressAccount)
	return addr
}

// Bytes returns the raw address bytes.
func (a Address) Bytes() []byte { return a.bytes }

// Empty reports whether the address carries no bytes (the zero value).
func (a Address) Empty() bool { return len(a.bytes) == 0 }

// Equal reports byte-for-byte and kind equality.
func (a Address) Equal(o Address) bool {
	return a.kind == o.kind && bytes.Equal(a.bytes, o.bytes)
}

// String renders the address in its bech32 external form.
func (a Address) String() string {
	if a.Empty() {
		return ""
	}
	s, err := bech32Encode(hrpFor(a.kind), a.bytes)
	if err != nil {
		return fmt.Sprintf("<invalid address: %v>", err)
	}
	return s
}

// MarshalJSON renders the address as its bech32 string.
func (a Address) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON parses a bech32-string address.
func (a *Address) UnmarshalJSON(data []byte) error {
	if len(data) < 2 {
		*a = Address{}
		return nil
	}
	s := string(data[1 : len(data)-1])
	if s == "" {
		*a = Address{}
		return nil
	}
	addr, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// ParseAddress decodes a bech32 address string, inferring its AddressKind
// from the human-readable prefix suffix.
func ParseAddress(s string) (Address, error) {
	hrp, raw, err := bech32Decode(s)
	if err != nil {
		return Address{}, fmt.Errorf("parse address: %w", err)
	}
	kind := AddressAccount
	switch {
	case hasSuffix(hrp, "valoper"):
		kind = AddressValidator
	case hasSuffix(hrp, "valcons"):
		kind = AddressConsensus
	}
	return NewAddress(raw, kind)
}

func hasSuffix(s, suf string) bool {
	return len(s) >= len(suf) && s[len(s)-len(suf):] == suf
}
