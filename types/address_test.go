package types

import (
	"bytes"
	"strings"
	"testing"
)

func TestAddressBech32RoundTrip(t *testing.T) {
	raw := bytes.Repeat([]byte{0xAB}, 20)
	addr, err := NewAddress(raw, AddressAccount)
	if err != nil {
		t.Fatalf("NewAddress: %v", err)
	}

	encoded := addr.String()
	if !strings.HasPrefix(encoded, Bech32RootPrefix) {
		t.Fatalf("encoded address %q does not carry the root prefix %q", encoded, Bech32RootPrefix)
	}

	decoded, err := ParseAddress(encoded)
	if err != nil {
		t.Fatalf("ParseAddress(%q): %v", encoded, err)
	}
	if !decoded.Equal(addr) {
		t.Fatalf("round trip mismatch: got %x, want %x", decoded.Bytes(), addr.Bytes())
	}
}

func TestAddressValidatorConsensusSuffixes(t *testing.T) {
	raw := bytes.Repeat([]byte{0x01}, 20)
	valAddr, err := NewAddress(raw, AddressValidator)
	if err != nil {
		t.Fatalf("NewAddress(validator): %v", err)
	}
	if !hasSuffix(hrpFor(AddressValidator), "valoper") {
		t.Fatalf("validator hrp does not carry valoper suffix")
	}

	decoded, err := ParseAddress(valAddr.String())
	if err != nil {
		t.Fatalf("ParseAddress(validator): %v", err)
	}
	if decoded.kind != AddressValidator {
		t.Fatalf("ParseAddress did not infer AddressValidator from the hrp suffix")
	}
}

func TestAddressMaxLengthBoundary(t *testing.T) {
	ok := bytes.Repeat([]byte{0x02}, MaxAddressLength)
	if _, err := NewAddress(ok, AddressAccount); err != nil {
		t.Fatalf("NewAddress at exactly MaxAddressLength bytes: %v", err)
	}

	tooLong := bytes.Repeat([]byte{0x02}, MaxAddressLength+1)
	if _, err := NewAddress(tooLong, AddressAccount); err == nil {
		t.Fatalf("NewAddress accepted a %d-byte address", MaxAddressLength+1)
	}
}

func TestAddressEmpty(t *testing.T) {
	var a Address
	if !a.Empty() {
		t.Fatalf("zero-value Address is not reported Empty")
	}
	if a.String() != "" {
		t.Fatalf("empty address String() = %q, want \"\"", a.String())
	}
	if _, err := NewAddress(nil, AddressAccount); err == nil {
		t.Fatalf("NewAddress accepted an empty byte string")
	}
}

func TestModuleAddressDeterministic(t *testing.T) {
	a1 := ModuleAddress("fee_collector")
	a2 := ModuleAddress("fee_collector")
	if !a1.Equal(a2) {
		t.Fatalf("ModuleAddress is not deterministic for the same name")
	}
	if a1.Equal(ModuleAddress("mint")) {
		t.Fatalf("ModuleAddress produced the same address for two different module names")
	}
}

func TestAccAddressFromPubKey(t *testing.T) {
	pub := bytes.Repeat([]byte{0x03}, 33)
	addr, err := AccAddressFromPubKey(pub)
	if err != nil {
		t.Fatalf("AccAddressFromPubKey: %v", err)
	}
	again, err := AccAddressFromPubKey(pub)
	if err != nil {
		t.Fatalf("AccAddressFromPubKey: %v", err)
	}
	if !addr.Equal(again) {
		t.Fatalf("AccAddressFromPubKey is not deterministic for the same key")
	}
}
