package types

import (
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// Header is the subset of consensus block-header fields the application
// layer needs. Wire parsing of the full consensus header is out of scope
// (the driver is handed an already-decoded Header); this mirrors the
// teacher's own BlockHeader shape.
type Header struct {
	ChainID         string
	Height          int64
	Time            int64 // unix seconds
	ProposerAddress []byte
}

// rlpHeader is the deterministic encoding of Header used by Hash; kept as
// its own type so the wire shape stays stable even if Header ever grows
// fields that should not affect the hash.
type rlpHeader struct {
	ChainID         string
	Height          int64
	Time            int64
	ProposerAddress []byte
}

// Hash returns the deterministic, RLP-encoded Keccak256 digest of the
// header, matching core/ledger.go's use of go-ethereum's rlp+crypto pair
// for block-header hashing. Used for logging/diagnostics around
// BeginBlock/Commit; it is not part of the app-hash computation, which is
// the multi-store's own root aggregation (store/rootmulti).
func (h Header) Hash() []byte {
	enc, err := rlp.EncodeToBytes(rlpHeader{
		ChainID:         h.ChainID,
		Height:          h.Height,
		Time:            h.Time,
		ProposerAddress: h.ProposerAddress,
	})
	if err != nil {
		panic("types: header rlp encoding failed: " + err.Error())
	}
	return crypto.Keccak256(enc)
}
