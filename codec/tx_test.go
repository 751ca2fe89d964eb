package codec

import (
	"bytes"
	"testing"

	"github.com/gogo/protobuf/proto"

	"github.com/synnergy-chain/framework/types"
)

const testMsgTypeURL = "/test.v1.MsgPing"

// testMsg is a minimal Msg used only to exercise the tx codec's
// encode/decode/registry path without pulling in a real module.
type testMsg struct {
	Signer  types.Address
	Payload string
}

func (m testMsg) TypeURL() string { return testMsgTypeURL }
func (m testMsg) ValidateBasic() error {
	if m.Signer.Empty() {
		return types.ErrInvalidRequest("testMsg: empty signer")
	}
	return nil
}
func (m testMsg) GetSigners() []types.Address { return []types.Address{m.Signer} }

func decodeTestMsg(value []byte) (Msg, error) {
	buf := proto.NewBuffer(value)
	addrRaw, err := buf.DecodeRawBytes(true)
	if err != nil {
		return nil, err
	}
	payload, err := buf.DecodeRawBytes(true)
	if err != nil {
		return nil, err
	}
	addr, err := types.NewAddress(addrRaw, types.AddressAccount)
	if err != nil {
		return nil, err
	}
	return testMsg{Signer: addr, Payload: string(payload)}, nil
}

func (m testMsg) marshal() []byte {
	buf := proto.NewBuffer(nil)
	_ = buf.EncodeRawBytes(m.Signer.Bytes())
	_ = buf.EncodeRawBytes([]byte(m.Payload))
	return buf.Bytes()
}

func newTestRegistry() *Registry {
	r := NewRegistry()
	r.Register(testMsgTypeURL, decodeTestMsg)
	return r
}

func newTestAddress(b byte) types.Address {
	addr, err := types.NewAddress(bytes.Repeat([]byte{b}, 20), types.AddressAccount)
	if err != nil {
		panic(err)
	}
	return addr
}

func buildTx(t *testing.T, msg testMsg, memo string, gasLimit uint64, nSigs int) []byte {
	t.Helper()
	body := TxBody{Messages: []Any{{TypeURL: testMsgTypeURL, Value: msg.marshal()}}, Memo: memo}
	authInfo := AuthInfo{
		SignerInfos: make([]SignerInfo, 0),
		Fee:         Fee{GasLimit: gasLimit},
	}
	for i := 0; i < nSigs; i++ {
		authInfo.SignerInfos = append(authInfo.SignerInfos, SignerInfo{Sequence: uint64(i)})
	}
	sigs := make([][]byte, nSigs)
	for i := range sigs {
		sigs[i] = bytes.Repeat([]byte{0xAA}, 64)
	}
	return EncodeTx(body, authInfo, sigs)
}

func TestDecodeTxRoundTrip(t *testing.T) {
	registry := newTestRegistry()
	msg := testMsg{Signer: newTestAddress(0x01), Payload: "hello"}
	raw := buildTx(t, msg, "memo", 100000, 1)

	tx, msgs, err := DecodeTx(raw, registry)
	if err != nil {
		t.Fatalf("DecodeTx: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("len(msgs) = %d, want 1", len(msgs))
	}
	decoded, ok := msgs[0].(testMsg)
	if !ok {
		t.Fatalf("msgs[0] has unexpected type %T", msgs[0])
	}
	if decoded.Payload != "hello" || !decoded.Signer.Equal(msg.Signer) {
		t.Fatalf("decoded message mismatch: %+v", decoded)
	}
	if tx.Body.Memo != "memo" {
		t.Fatalf("decoded memo = %q, want memo", tx.Body.Memo)
	}
	if len(tx.BodyBytes) == 0 || len(tx.AuthInfoBytes) == 0 {
		t.Fatalf("DecodeTx did not preserve raw body/auth-info bytes")
	}
}

func TestDecodeTxRejectsEmptyBody(t *testing.T) {
	registry := newTestRegistry()
	authInfo := AuthInfo{Fee: Fee{GasLimit: 1000}}
	buf := proto.NewBuffer(nil)
	_ = buf.EncodeRawBytes(nil)
	_ = buf.EncodeRawBytes(authInfo.marshal())
	_ = buf.EncodeVarint(0)
	if _, _, err := DecodeTx(buf.Bytes(), registry); err == nil {
		t.Fatalf("DecodeTx accepted an absent tx body")
	}
}

func TestDecodeTxRejectsEmptyAuthInfo(t *testing.T) {
	registry := newTestRegistry()
	body := TxBody{Messages: []Any{{TypeURL: testMsgTypeURL, Value: nil}}}
	buf := proto.NewBuffer(nil)
	_ = buf.EncodeRawBytes(body.marshal())
	_ = buf.EncodeRawBytes(nil)
	_ = buf.EncodeVarint(0)
	if _, _, err := DecodeTx(buf.Bytes(), registry); err == nil {
		t.Fatalf("DecodeTx accepted an absent auth info")
	}
}

func TestDecodeTxRejectsNonEmptyExtensionOptions(t *testing.T) {
	registry := newTestRegistry()
	msg := testMsg{Signer: newTestAddress(0x02), Payload: "x"}
	body := TxBody{
		Messages:         []Any{{TypeURL: testMsgTypeURL, Value: msg.marshal()}},
		ExtensionOptions: []Any{{TypeURL: "/test.v1.Ext", Value: []byte("x")}},
	}
	authInfo := AuthInfo{Fee: Fee{GasLimit: 1000}}
	raw := EncodeTx(body, authInfo, nil)
	if _, _, err := DecodeTx(raw, registry); err == nil {
		t.Fatalf("DecodeTx accepted non-empty extension_options")
	}
}

func TestDecodeTxRejectsEmptyMessageList(t *testing.T) {
	registry := newTestRegistry()
	body := TxBody{Memo: "no messages"}
	authInfo := AuthInfo{Fee: Fee{GasLimit: 1000}}
	raw := EncodeTx(body, authInfo, nil)
	if _, _, err := DecodeTx(raw, registry); err == nil {
		t.Fatalf("DecodeTx accepted a message-less tx")
	}
}

func TestDecodeTxRejectsSignatureSignerMismatch(t *testing.T) {
	registry := newTestRegistry()
	msg := testMsg{Signer: newTestAddress(0x03), Payload: "x"}
	body := TxBody{Messages: []Any{{TypeURL: testMsgTypeURL, Value: msg.marshal()}}}
	authInfo := AuthInfo{SignerInfos: []SignerInfo{{}, {}}, Fee: Fee{GasLimit: 1000}}
	mismatched := EncodeTx(body, authInfo, [][]byte{bytes.Repeat([]byte{0xAA}, 64)})
	if _, _, err := DecodeTx(mismatched, registry); err == nil {
		t.Fatalf("DecodeTx accepted a signature count that does not match signer count")
	}
}

func TestDecodeTxRejectsGasLimitOverflow(t *testing.T) {
	registry := newTestRegistry()
	msg := testMsg{Signer: newTestAddress(0x04), Payload: "x"}
	body := TxBody{Messages: []Any{{TypeURL: testMsgTypeURL, Value: msg.marshal()}}}
	authInfo := AuthInfo{Fee: Fee{GasLimit: 1<<64 - 1}}
	raw := EncodeTx(body, authInfo, nil)
	if _, _, err := DecodeTx(raw, registry); err == nil {
		t.Fatalf("DecodeTx accepted a gas_limit beyond (1<<63)-1")
	}
}

func TestDecodeTxRejectsUnknownMessageType(t *testing.T) {
	registry := NewRegistry() // nothing registered
	msg := testMsg{Signer: newTestAddress(0x05), Payload: "x"}
	raw := buildTx(t, msg, "", 1000, 1)
	if _, _, err := DecodeTx(raw, registry); err == nil {
		t.Fatalf("DecodeTx accepted a message type with no registered decoder")
	}
}
