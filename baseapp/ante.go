package baseapp

import (
	"crypto/sha256"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/gogo/protobuf/proto"

	storetypes "github.com/synnergy-chain/framework/store/types"

	"github.com/synnergy-chain/framework/codec"
	"github.com/synnergy-chain/framework/types"
	"github.com/synnergy-chain/framework/x/auth"
	"github.com/synnergy-chain/framework/x/bank"
	"github.com/synnergy-chain/framework/x/params"
)

// FeeCollectorName is the module account every tx's declared fee is
// transferred into during ante step 4.
const FeeCollectorName = "fee_collector"

// AnteHandler is the fixed, ordered seven-step pipeline of spec.md §4.7.
// Any step's failure aborts the entire transaction.
type AnteHandler struct {
	auth       auth.Keeper
	bank       bank.Keeper
	authParams *params.Subspace
}

func NewAnteHandler(authKeeper auth.Keeper, bankKeeper bank.Keeper, authParams *params.Subspace) *AnteHandler {
	return &AnteHandler{auth: authKeeper, bank: bankKeeper, authParams: authParams}
}

// requiredSigners flattens every message's signer list, deduplicating by
// address while preserving first-seen order.
func requiredSigners(msgs []codec.Msg) []types.Address {
	seen := make(map[string]bool)
	var out []types.Address
	for _, m := range msgs {
		for _, s := range m.GetSigners() {
			key := string(s.Bytes())
			if !seen[key] {
				seen[key] = true
				out = append(out, s)
			}
		}
	}
	return out
}

// signingDoc builds the canonical (body_bytes, auth_info_bytes, chain_id,
// account_number) encoding a signature is computed over, per spec.md §6.
func signingDoc(bodyBytes, authInfoBytes []byte, chainID string, accountNumber uint64) []byte {
	buf := proto.NewBuffer(nil)
	_ = buf.EncodeRawBytes(bodyBytes)
	_ = buf.EncodeRawBytes(authInfoBytes)
	_ = buf.EncodeRawBytes([]byte(chainID))
	_ = buf.EncodeVarint(accountNumber)
	return buf.Bytes()
}

// Handle runs the ante pipeline against tx/msgs under ctx, mutating
// accounts/balances as each step requires.
func (a *AnteHandler) Handle(ctx types.Context, tx *codec.Tx, msgs []codec.Msg) error {
	signers := requiredSigners(msgs)

	// 1. basic validation
	if len(tx.Signatures) == 0 {
		return types.ErrTxValidation("tx has no signatures")
	}
	if len(tx.Signatures) != len(signers) {
		return types.ErrTxValidation(
			fmt.Sprintf("signature count %d does not match required signer count %d", len(tx.Signatures), len(signers)))
	}
	if len(tx.AuthInfo.SignerInfos) != len(signers) {
		return types.ErrTxValidation("signer_infos count does not match required signer count")
	}

	// 2. timeout
	if tx.Body.TimeoutHeight != 0 && uint64(ctx.Height()) > tx.Body.TimeoutHeight {
		return types.ErrTimeout(tx.Body.TimeoutHeight, uint64(ctx.Height()))
	}

	// 3. memo length
	maxMemo := a.authParams.GetInt(ctx, "max_memo_characters", 256)
	if len(tx.Body.Memo) > maxMemo {
		return types.ErrMemoTooLong(maxMemo)
	}

	// 4. fee deduction
	var payer types.Address
	if len(tx.AuthInfo.Fee.Payer) > 0 {
		var err error
		payer, err = types.NewAddress(tx.AuthInfo.Fee.Payer, types.AddressAccount)
		if err != nil {
			return types.ErrInvalidRequest(fmt.Sprintf("fee payer: %v", err))
		}
	} else {
		payer = signers[0]
	}
	if !a.auth.HasAccount(ctx, payer) {
		return types.ErrAccountNotFound(payer.String())
	}
	if len(tx.AuthInfo.Fee.Amount) > 0 {
		if err := a.bank.SendCoinsFromAccountToModule(ctx, payer, FeeCollectorName, tx.AuthInfo.Fee.Amount); err != nil {
			return err
		}
	}

	// 5. public-key attachment
	for i, signer := range signers {
		acc, ok := a.auth.GetAccount(ctx, signer)
		if !ok {
			acc = a.auth.CreateNewBaseAccount(ctx, signer)
		}
		si := tx.AuthInfo.SignerInfos[i]
		if si.PublicKey != nil {
			derived, err := types.AccAddressFromPubKey(si.PublicKey.Value)
			if err != nil {
				return types.ErrInvalidPublicKey(err.Error())
			}
			if !derived.Equal(signer) {
				return types.ErrInvalidPublicKey("public key does not derive the signer address")
			}
			if len(acc.PublicKey) == 0 {
				acc.PublicKey = si.PublicKey.Value
				a.auth.SetAccount(ctx, acc)
			}
		}
	}

	// 6. signature verification
	for i, signer := range signers {
		acc, _ := a.auth.GetAccount(ctx, signer)
		si := tx.AuthInfo.SignerInfos[i]
		if si.Sequence != acc.Sequence {
			return types.ErrTxValidation(
				fmt.Sprintf("incorrect tx sequence; expected %d, got %d", acc.Sequence, si.Sequence))
		}
		if len(acc.PublicKey) == 0 {
			return types.ErrInvalidPublicKey("no public key available for signer " + signer.String())
		}
		if err := ctx.GasMeter().TryConsumeGas(storetypes.GasSigVerify, "ante/sigverify"); err != nil {
			switch err.(type) {
			case storetypes.ErrorGasOverflow:
				return types.ErrGasOverflow()
			default:
				return types.ErrGasExceeded(ctx.GasMeter().Limit(), ctx.GasMeter().GasConsumed())
			}
		}
		doc := signingDoc(tx.BodyBytes, tx.AuthInfoBytes, ctx.ChainID(), acc.AccountNumber)
		hash := sha256.Sum256(doc)
		pubKey, err := secp256k1.ParsePubKey(acc.PublicKey)
		if err != nil {
			return types.ErrInvalidPublicKey("malformed stored public key")
		}
		if len(tx.Signatures[i]) != 64 {
			return types.ErrTxValidation("invalid signature")
		}
		var r, s secp256k1.ModNScalar
		r.SetByteSlice(tx.Signatures[i][:32])
		s.SetByteSlice(tx.Signatures[i][32:64])
		sig := ecdsa.NewSignature(&r, &s)
		if !sig.Verify(hash[:], pubKey) {
			return types.ErrTxValidation("invalid signature")
		}
	}

	// 7. sequence increment
	for _, signer := range signers {
		acc, _ := a.auth.GetAccount(ctx, signer)
		acc.Sequence++
		a.auth.SetAccount(ctx, acc)
	}

	return nil
}
