package testutil

import (
	"crypto/sha256"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/gogo/protobuf/proto"
	"github.com/tyler-smith/go-bip39"

	"github.com/synnergy-chain/framework/types"
)

// Signer is a mnemonic-derived secp256k1 key pair standing in for a
// wallet in end-to-end tests: it produces the address the ante handler
// will expect and signs the canonical signing document over a
// transaction's body/auth-info bytes, mirroring baseapp.signingDoc.
type Signer struct {
	priv   *secp256k1.PrivateKey
	pubKey []byte
}

// NewSigner derives a Signer deterministically from a BIP-39 mnemonic
// with an empty passphrase: seed -> sha256 -> secp256k1 private scalar.
func NewSigner(mnemonic string) *Signer {
	seed := bip39.NewSeed(mnemonic, "")
	sum := sha256.Sum256(seed)
	priv := secp256k1.PrivKeyFromBytes(sum[:])
	return &Signer{priv: priv, pubKey: priv.PubKey().SerializeCompressed()}
}

// NewRandomSigner generates a fresh 12-word mnemonic and derives a Signer
// from it, for tests that don't care about a fixed key.
func NewRandomSigner() (*Signer, error) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return nil, err
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, err
	}
	return NewSigner(mnemonic), nil
}

// PubKey returns the signer's compressed secp256k1 public key.
func (s *Signer) PubKey() []byte { return s.pubKey }

// Address derives the signer's account address from its public key.
func (s *Signer) Address() types.Address {
	addr, err := types.AccAddressFromPubKey(s.pubKey)
	if err != nil {
		panic("testutil: derive address: " + err.Error())
	}
	return addr
}

// signingDoc mirrors baseapp.signingDoc exactly; duplicated here because
// that helper is unexported and end-to-end tests need to produce the
// same bytes a real client would sign.
func signingDoc(bodyBytes, authInfoBytes []byte, chainID string, accountNumber uint64) []byte {
	buf := proto.NewBuffer(nil)
	_ = buf.EncodeRawBytes(bodyBytes)
	_ = buf.EncodeRawBytes(authInfoBytes)
	_ = buf.EncodeRawBytes([]byte(chainID))
	_ = buf.EncodeVarint(accountNumber)
	return buf.Bytes()
}

// Sign produces the 64-byte (r || s) signature baseapp's ante handler
// verifies, over the canonical (body_bytes, auth_info_bytes, chain_id,
// account_number) signing document.
func (s *Signer) Sign(bodyBytes, authInfoBytes []byte, chainID string, accountNumber uint64) []byte {
	doc := signingDoc(bodyBytes, authInfoBytes, chainID, accountNumber)
	hash := sha256.Sum256(doc)
	sig := ecdsa.Sign(s.priv, hash[:])
	r, ss := sig.R(), sig.S()
	rBytes, sBytes := r.Bytes(), ss.Bytes()
	out := make([]byte, 64)
	copy(out[0:32], rBytes[:])
	copy(out[32:64], sBytes[:])
	return out
}
