package bank

import (
	"fmt"

	"github.com/gogo/protobuf/proto"

	"github.com/synnergy-chain/framework/codec"
	"github.com/synnergy-chain/framework/types"
)

// MsgSendTypeURL is the type URL MsgSend travels under in a tx body and
// registers against in the module router.
const MsgSendTypeURL = "/framework.bank.v1.MsgSend"

// MsgSend moves coins from one account to another.
type MsgSend struct {
	FromAddress types.Address
	ToAddress   types.Address
	Amount      types.Coins
}

func (m MsgSend) TypeURL() string { return MsgSendTypeURL }

// ValidateBasic checks structural validity independent of state: both
// addresses present, amount is a canonical, non-empty coin set.
func (m MsgSend) ValidateBasic() error {
	if m.FromAddress.Empty() {
		return types.ErrInvalidRequest("bank: MsgSend.from_address is empty")
	}
	if m.ToAddress.Empty() {
		return types.ErrInvalidRequest("bank: MsgSend.to_address is empty")
	}
	if err := m.Amount.Validate(); err != nil {
		return err
	}
	return nil
}

func (m MsgSend) GetSigners() []types.Address { return []types.Address{m.FromAddress} }

func (m MsgSend) Marshal() []byte {
	buf := proto.NewBuffer(nil)
	_ = buf.EncodeRawBytes(m.FromAddress.Bytes())
	_ = buf.EncodeRawBytes(m.ToAddress.Bytes())
	_ = buf.EncodeRawBytes([]byte(m.Amount.String()))
	return buf.Bytes()
}

// DecodeMsgSend is the codec.MsgDecoder registered for MsgSendTypeURL.
func DecodeMsgSend(value []byte) (codec.Msg, error) {
	buf := proto.NewBuffer(value)
	fromRaw, err := buf.DecodeRawBytes(true)
	if err != nil {
		return nil, fmt.Errorf("bank: decode MsgSend.from_address: %w", err)
	}
	toRaw, err := buf.DecodeRawBytes(true)
	if err != nil {
		return nil, fmt.Errorf("bank: decode MsgSend.to_address: %w", err)
	}
	amountRaw, err := buf.DecodeRawBytes(true)
	if err != nil {
		return nil, fmt.Errorf("bank: decode MsgSend.amount: %w", err)
	}
	from, err := types.NewAddress(fromRaw, types.AddressAccount)
	if err != nil {
		return nil, fmt.Errorf("bank: MsgSend.from_address: %w", err)
	}
	to, err := types.NewAddress(toRaw, types.AddressAccount)
	if err != nil {
		return nil, fmt.Errorf("bank: MsgSend.to_address: %w", err)
	}
	var amount types.Coins
	if len(amountRaw) > 0 {
		amount, err = types.ParseCoins(string(amountRaw))
		if err != nil {
			return nil, fmt.Errorf("bank: MsgSend.amount: %w", err)
		}
	}
	return MsgSend{FromAddress: from, ToAddress: to, Amount: amount}, nil
}

// HandleMsgSend is the module router handler for MsgSendTypeURL.
func HandleMsgSend(keeper Keeper) func(ctx types.Context, msg codec.Msg) error {
	return func(ctx types.Context, msg codec.Msg) error {
		send, ok := msg.(MsgSend)
		if !ok {
			return types.ErrInvalidRequest("bank: unexpected message type for MsgSend handler")
		}
		return keeper.SendCoins(ctx, send.FromAddress, send.ToAddress, send.Amount)
	}
}
