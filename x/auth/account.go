// Package auth implements the accounts module (spec.md §4.10, part of
// component C10): address -> account records and the global account
// number counter the ante handler and fee logic depend on.
package auth

import (
	"fmt"

	"github.com/gogo/protobuf/proto"

	"github.com/synnergy-chain/framework/types"
)

// Account is (address, public-key option, account-number, sequence),
// spec.md §3. Sequence is the replay-protection counter; account-number
// is assigned once, at creation, from the module's global counter.
type Account struct {
	Address       types.Address
	PublicKey     []byte // raw compressed secp256k1 pubkey; empty if unset
	AccountNumber uint64
	Sequence      uint64
}

func (a Account) marshal() []byte {
	buf := proto.NewBuffer(nil)
	_ = buf.EncodeRawBytes(a.Address.Bytes())
	_ = buf.EncodeRawBytes(a.PublicKey)
	_ = buf.EncodeVarint(a.AccountNumber)
	_ = buf.EncodeVarint(a.Sequence)
	return buf.Bytes()
}

func unmarshalAccount(data []byte) (Account, error) {
	buf := proto.NewBuffer(data)
	rawAddr, err := buf.DecodeRawBytes(true)
	if err != nil {
		return Account{}, fmt.Errorf("auth: decode account.address: %w", err)
	}
	addr, err := types.NewAddress(rawAddr, types.AddressAccount)
	if err != nil {
		return Account{}, fmt.Errorf("auth: rebuild account.address: %w", err)
	}
	pubKey, err := buf.DecodeRawBytes(true)
	if err != nil {
		return Account{}, fmt.Errorf("auth: decode account.public_key: %w", err)
	}
	accNum, err := buf.DecodeVarint()
	if err != nil {
		return Account{}, fmt.Errorf("auth: decode account.account_number: %w", err)
	}
	seq, err := buf.DecodeVarint()
	if err != nil {
		return Account{}, fmt.Errorf("auth: decode account.sequence: %w", err)
	}
	return Account{Address: addr, PublicKey: pubKey, AccountNumber: accNum, Sequence: seq}, nil
}
