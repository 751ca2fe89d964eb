package codec

import (
	"fmt"
	"math"

	"github.com/gogo/protobuf/proto"

	"github.com/synnergy-chain/framework/types"
)

// TxBody is the signable body of a transaction: the message list, memo,
// timeout height, and extension options (always rejected non-empty, per
// spec.md §4.6).
type TxBody struct {
	Messages         []Any
	Memo             string
	TimeoutHeight    uint64
	ExtensionOptions []Any
}

func (b TxBody) marshal() []byte {
	buf := proto.NewBuffer(nil)
	_ = buf.EncodeVarint(uint64(len(b.Messages)))
	for _, m := range b.Messages {
		_ = encodeAny(buf, m)
	}
	_ = buf.EncodeRawBytes([]byte(b.Memo))
	_ = buf.EncodeVarint(b.TimeoutHeight)
	_ = buf.EncodeVarint(uint64(len(b.ExtensionOptions)))
	for _, e := range b.ExtensionOptions {
		_ = encodeAny(buf, e)
	}
	return buf.Bytes()
}

func unmarshalTxBody(data []byte) (TxBody, error) {
	buf := proto.NewBuffer(data)
	nMsgs, err := buf.DecodeVarint()
	if err != nil {
		return TxBody{}, fmt.Errorf("codec: decode body.messages count: %w", err)
	}
	var body TxBody
	for i := uint64(0); i < nMsgs; i++ {
		a, err := decodeAny(buf)
		if err != nil {
			return TxBody{}, fmt.Errorf("codec: decode body.messages[%d]: %w", i, err)
		}
		body.Messages = append(body.Messages, a)
	}
	memo, err := buf.DecodeRawBytes(true)
	if err != nil {
		return TxBody{}, fmt.Errorf("codec: decode body.memo: %w", err)
	}
	body.Memo = string(memo)
	timeout, err := buf.DecodeVarint()
	if err != nil {
		return TxBody{}, fmt.Errorf("codec: decode body.timeout_height: %w", err)
	}
	body.TimeoutHeight = timeout
	nExt, err := buf.DecodeVarint()
	if err != nil {
		return TxBody{}, fmt.Errorf("codec: decode body.extension_options count: %w", err)
	}
	for i := uint64(0); i < nExt; i++ {
		a, err := decodeAny(buf)
		if err != nil {
			return TxBody{}, fmt.Errorf("codec: decode body.extension_options[%d]: %w", i, err)
		}
		body.ExtensionOptions = append(body.ExtensionOptions, a)
	}
	return body, nil
}

// SignerInfo carries one signer's public key (absent until the ante
// handler attaches or confirms it) and current sequence number.
type SignerInfo struct {
	PublicKey *Any
	Sequence  uint64
}

// Fee is the transaction's declared fee: amount, a gas limit, and an
// optional explicit payer.
type Fee struct {
	Amount   types.Coins
	GasLimit uint64
	Payer    []byte // address bytes; empty means "first required signer"
}

// AuthInfo is the signable auth metadata: per-signer info plus the fee.
type AuthInfo struct {
	SignerInfos []SignerInfo
	Fee         Fee
}

func (a AuthInfo) marshal() []byte {
	buf := proto.NewBuffer(nil)
	_ = buf.EncodeVarint(uint64(len(a.SignerInfos)))
	for _, si := range a.SignerInfos {
		if si.PublicKey != nil {
			_ = buf.EncodeVarint(1)
			_ = encodeAny(buf, *si.PublicKey)
		} else {
			_ = buf.EncodeVarint(0)
		}
		_ = buf.EncodeVarint(si.Sequence)
	}
	_ = buf.EncodeRawBytes([]byte(a.Fee.Amount.String()))
	_ = buf.EncodeVarint(a.Fee.GasLimit)
	_ = buf.EncodeRawBytes(a.Fee.Payer)
	return buf.Bytes()
}

func unmarshalAuthInfo(data []byte) (AuthInfo, error) {
	buf := proto.NewBuffer(data)
	nSigners, err := buf.DecodeVarint()
	if err != nil {
		return AuthInfo{}, fmt.Errorf("codec: decode auth_info.signer_infos count: %w", err)
	}
	var ai AuthInfo
	for i := uint64(0); i < nSigners; i++ {
		hasKey, err := buf.DecodeVarint()
		if err != nil {
			return AuthInfo{}, fmt.Errorf("codec: decode signer_infos[%d].has_key: %w", i, err)
		}
		var si SignerInfo
		if hasKey == 1 {
			a, err := decodeAny(buf)
			if err != nil {
				return AuthInfo{}, fmt.Errorf("codec: decode signer_infos[%d].public_key: %w", i, err)
			}
			si.PublicKey = &a
		}
		seq, err := buf.DecodeVarint()
		if err != nil {
			return AuthInfo{}, fmt.Errorf("codec: decode signer_infos[%d].sequence: %w", i, err)
		}
		si.Sequence = seq
		ai.SignerInfos = append(ai.SignerInfos, si)
	}
	feeStr, err := buf.DecodeRawBytes(true)
	if err != nil {
		return AuthInfo{}, fmt.Errorf("codec: decode fee.amount: %w", err)
	}
	if len(feeStr) > 0 {
		coins, err := types.ParseCoins(string(feeStr))
		if err != nil {
			return AuthInfo{}, fmt.Errorf("codec: parse fee.amount: %w", err)
		}
		ai.Fee.Amount = coins
	}
	gasLimit, err := buf.DecodeVarint()
	if err != nil {
		return AuthInfo{}, fmt.Errorf("codec: decode fee.gas_limit: %w", err)
	}
	ai.Fee.GasLimit = gasLimit
	payer, err := buf.DecodeRawBytes(true)
	if err != nil {
		return AuthInfo{}, fmt.Errorf("codec: decode fee.payer: %w", err)
	}
	ai.Fee.Payer = payer
	return ai, nil
}

// MarshalTxBody and MarshalAuthInfo expose the exact bytes a client must
// sign over before a transaction has signatures to embed: a wallet builds
// the body and auth-info first, computes its signature(s) against these
// bytes and the chain-id/account-number, then calls EncodeTx with the
// completed signature list.
func MarshalTxBody(body TxBody) []byte     { return body.marshal() }
func MarshalAuthInfo(info AuthInfo) []byte { return info.marshal() }

// Tx is a fully decoded transaction: the structured body/auth-info plus
// the exact bytes each was encoded from, which the ante handler's
// signing document is built over verbatim.
type Tx struct {
	Body          TxBody
	AuthInfo      AuthInfo
	Signatures    [][]byte
	BodyBytes     []byte
	AuthInfoBytes []byte
}

// EncodeTx produces the raw wire form (body_bytes, auth_info_bytes,
// signatures), the TxRaw envelope every signed transaction is broadcast
// as.
func EncodeTx(body TxBody, authInfo AuthInfo, signatures [][]byte) []byte {
	bodyBytes := body.marshal()
	authInfoBytes := authInfo.marshal()
	buf := proto.NewBuffer(nil)
	_ = buf.EncodeRawBytes(bodyBytes)
	_ = buf.EncodeRawBytes(authInfoBytes)
	_ = buf.EncodeVarint(uint64(len(signatures)))
	for _, sig := range signatures {
		_ = buf.EncodeRawBytes(sig)
	}
	return buf.Bytes()
}

// DecodeTx parses the TxRaw envelope, decodes its body and auth-info,
// validates every message against registry, and enforces every rejection
// condition spec.md §4.6 lists. It returns the decoded Tx and the
// decoded, already validate-basic'd message list, in order.
func DecodeTx(data []byte, registry *Registry) (*Tx, []Msg, error) {
	buf := proto.NewBuffer(data)

	bodyBytes, err := buf.DecodeRawBytes(true)
	if err != nil {
		return nil, nil, types.ErrTxDecode(fmt.Sprintf("decode body_bytes: %v", err))
	}
	if len(bodyBytes) == 0 {
		return nil, nil, types.ErrTxDecode("tx body is absent")
	}

	authInfoBytes, err := buf.DecodeRawBytes(true)
	if err != nil {
		return nil, nil, types.ErrTxDecode(fmt.Sprintf("decode auth_info_bytes: %v", err))
	}
	if len(authInfoBytes) == 0 {
		return nil, nil, types.ErrTxDecode("auth info is absent")
	}

	nSigs, err := buf.DecodeVarint()
	if err != nil {
		return nil, nil, types.ErrTxDecode(fmt.Sprintf("decode signatures count: %v", err))
	}
	signatures := make([][]byte, 0, nSigs)
	for i := uint64(0); i < nSigs; i++ {
		sig, err := buf.DecodeRawBytes(true)
		if err != nil {
			return nil, nil, types.ErrTxDecode(fmt.Sprintf("decode signatures[%d]: %v", i, err))
		}
		signatures = append(signatures, sig)
	}

	body, err := unmarshalTxBody(bodyBytes)
	if err != nil {
		return nil, nil, types.ErrTxDecode(err.Error())
	}
	if len(body.ExtensionOptions) != 0 {
		return nil, nil, types.ErrTxDecode("body.extension_options must be empty")
	}
	if len(body.Messages) == 0 {
		return nil, nil, types.ErrTxDecode("tx must contain at least one message")
	}

	authInfo, err := unmarshalAuthInfo(authInfoBytes)
	if err != nil {
		return nil, nil, types.ErrTxDecode(err.Error())
	}
	if authInfo.Fee.GasLimit > uint64(math.MaxInt64) {
		return nil, nil, types.ErrTxDecode("fee.gas_limit exceeds (1<<63)-1")
	}

	if len(signatures) != len(authInfo.SignerInfos) {
		return nil, nil, types.ErrTxValidation(
			fmt.Sprintf("signature count %d does not match signer count %d", len(signatures), len(authInfo.SignerInfos)))
	}

	msgs := make([]Msg, 0, len(body.Messages))
	for i, a := range body.Messages {
		msg, err := registry.Decode(a)
		if err != nil {
			return nil, nil, fmt.Errorf("message[%d]: %w", i, err)
		}
		msgs = append(msgs, msg)
	}

	return &Tx{
		Body:          body,
		AuthInfo:      authInfo,
		Signatures:    signatures,
		BodyBytes:     bodyBytes,
		AuthInfoBytes: authInfoBytes,
	}, msgs, nil
}
