package types

import "fmt"

// Kind identifies one of the distinct error variants a transaction or query
// can fail with. Every ABCI response surfaces the pair (code, codespace)
// verbatim, per spec.md §6/§7.
type Kind uint32

const (
	KindTxDecode Kind = iota + 1
	KindTxValidation
	KindUnknownMessage
	KindAccountNotFound
	KindInvalidPublicKey
	KindInsufficientFunds
	KindTimeout
	KindMemoTooLong
	KindGasOverflow
	KindGasExceeded
	KindInvalidRequest
	KindStoreCorruption
	KindSend
	KindCoins
	KindIBC
	KindCustom
)

var kindNames = map[Kind]string{
	KindTxDecode:          "tx-decode",
	KindTxValidation:      "tx-validation",
	KindUnknownMessage:    "unknown-message",
	KindAccountNotFound:   "account-not-found",
	KindInvalidPublicKey:  "invalid-public-key",
	KindInsufficientFunds: "insufficient-funds",
	KindTimeout:           "timeout",
	KindMemoTooLong:       "memo-too-long",
	KindGasOverflow:       "gas-overflow",
	KindGasExceeded:       "gas-exceeded",
	KindInvalidRequest:    "invalid-request",
	KindStoreCorruption:   "store-corruption",
	KindSend:              "send",
	KindCoins:             "coins",
	KindIBC:               "ibc",
	KindCustom:            "custom",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// Codespace is the module name an Error is emitted from, surfaced verbatim
// in ABCI responses alongside the numeric code (spec.md §6).
const Codespace = "framework"

// Error is the framework's single error type. It carries a Kind (mapped to
// a stable numeric code), the emitting codespace, and a human string that
// becomes the ABCI response's `log` field.
type Error struct {
	Kind      Kind
	Codespace string
	Msg       string
	Wrapped   error
}

func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Wrapped)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Wrapped }

// Code returns the ABCI response code for this error. Codes are stable and
// equal to the Kind's ordinal so that two nodes running the same binary
// always agree on the wire value.
func (e *Error) Code() uint32 { return uint32(e.Kind) }

func newErr(k Kind, msg string) *Error {
	return &Error{Kind: k, Codespace: Codespace, Msg: msg}
}

func Wrap(k Kind, err error, msg string) *Error {
	return &Error{Kind: k, Codespace: Codespace, Msg: msg, Wrapped: err}
}

func ErrTxDecode(msg string) *Error        { return newErr(KindTxDecode, msg) }
func ErrTxValidation(msg string) *Error    { return newErr(KindTxValidation, msg) }
func ErrUnknownMessage(typeURL string) *Error {
	return newErr(KindUnknownMessage, fmt.Sprintf("unrecognized message type: %s", typeURL))
}
func ErrAccountNotFound(addr string) *Error {
	return newErr(KindAccountNotFound, fmt.Sprintf("account %s not found", addr))
}
func ErrInvalidPublicKey(msg string) *Error { return newErr(KindInvalidPublicKey, msg) }
func ErrInsufficientFunds(msg string) *Error {
	return newErr(KindInsufficientFunds, fmt.Sprintf("insufficient funds: %s", msg))
}

// ErrTimeout reports that the tx's timeout height has already elapsed.
func ErrTimeout(timeoutHeight, currentHeight uint64) *Error {
	return newErr(KindTimeout, fmt.Sprintf("tx timeout height (%d) less than current height (%d)",
		timeoutHeight, currentHeight))
}

// ErrMemoTooLong reports a memo exceeding max_memo_characters.
func ErrMemoTooLong(max int) *Error {
	return newErr(KindMemoTooLong, fmt.Sprintf("memo too large; got: exceeds max %d", max))
}

var errGasOverflow = newErr(KindGasOverflow, "gas overflow")

func ErrGasOverflow() *Error { return errGasOverflow }

func ErrGasExceeded(limit, attempted uint64) *Error {
	return newErr(KindGasExceeded, fmt.Sprintf("out of gas: attempted %d, limit %d", attempted, limit))
}

func ErrInvalidRequest(msg string) *Error  { return newErr(KindInvalidRequest, msg) }
func ErrStoreCorruption(msg string) *Error { return newErr(KindStoreCorruption, msg) }
func ErrSend(msg string) *Error            { return newErr(KindSend, msg) }
func ErrCoins(msg string) *Error           { return newErr(KindCoins, msg) }
func ErrIBC(msg string) *Error             { return newErr(KindIBC, msg) }
func ErrCustom(msg string) *Error          { return newErr(KindCustom, msg) }

// AsError extracts *Error from any error, wrapping unknown errors as
// KindCustom so every abort path still has a (code, codespace) pair.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return &Error{Kind: KindCustom, Codespace: Codespace, Msg: err.Error()}
}
