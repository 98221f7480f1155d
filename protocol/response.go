package protocol

import (
	"bytes"
	"encoding/json"
	"errors"

	"birdeyeflow/models"
)

// Envelope is an inbound message before its payload is decoded.
type Envelope struct {
	Type ResponseType    `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Event is a decoded inbound message. The set of implementations is closed.
type Event interface {
	Type() ResponseType
	event()
}

type PriceEvent struct{ models.PriceData }
type TxsEvent struct{ models.TransactionData }
type TokenListingEvent struct{ models.TokenListingData }
type NewPairEvent struct{ models.NewPairData }
type WalletTxsEvent struct{ models.WalletTxData }
type BaseQuotePriceEvent struct{ models.BaseQuotePriceData }
type LargeTradeEvent struct{ models.LargeTradeData }

// ErrorEvent carries an error reported by the peer. Data is passed through
// untouched.
type ErrorEvent struct {
	Data json.RawMessage
}

// Err converts the event into a KindPeer error.
func (e ErrorEvent) Err() error {
	return &Error{Kind: KindPeer, Op: "peer", Payload: e.Data}
}

func (PriceEvent) Type() ResponseType          { return PriceData }
func (TxsEvent) Type() ResponseType            { return TxsData }
func (TokenListingEvent) Type() ResponseType   { return TokenNewListing }
func (NewPairEvent) Type() ResponseType        { return NewPair }
func (WalletTxsEvent) Type() ResponseType      { return WalletTxsData }
func (BaseQuotePriceEvent) Type() ResponseType { return BaseQuotePriceData }
func (LargeTradeEvent) Type() ResponseType     { return TxsLargeTradeData }
func (ErrorEvent) Type() ResponseType          { return ErrorData }

func (PriceEvent) event()          {}
func (TxsEvent) event()            {}
func (TokenListingEvent) event()   {}
func (NewPairEvent) event()        {}
func (WalletTxsEvent) event()      {}
func (BaseQuotePriceEvent) event() {}
func (LargeTradeEvent) event()     {}
func (ErrorEvent) event()          {}

type decodeFunc func(json.RawMessage) (Event, error)

var dispatchTable = map[ResponseType]decodeFunc{
	PriceData: func(d json.RawMessage) (Event, error) {
		v, err := models.ParsePriceData(d)
		return PriceEvent{v}, err
	},
	TxsData: func(d json.RawMessage) (Event, error) {
		v, err := models.ParseTransactionData(d)
		return TxsEvent{v}, err
	},
	TokenNewListing: func(d json.RawMessage) (Event, error) {
		v, err := models.ParseTokenListingData(d)
		return TokenListingEvent{v}, err
	},
	NewPair: func(d json.RawMessage) (Event, error) {
		v, err := models.ParseNewPairData(d)
		return NewPairEvent{v}, err
	},
	WalletTxsData: func(d json.RawMessage) (Event, error) {
		v, err := models.ParseWalletTxData(d)
		return WalletTxsEvent{v}, err
	},
	BaseQuotePriceData: func(d json.RawMessage) (Event, error) {
		v, err := models.ParseBaseQuotePriceData(d)
		return BaseQuotePriceEvent{v}, err
	},
	TxsLargeTradeData: func(d json.RawMessage) (Event, error) {
		v, err := models.ParseLargeTradeData(d)
		return LargeTradeEvent{v}, err
	},
	ErrorData: func(d json.RawMessage) (Event, error) {
		return ErrorEvent{Data: append(json.RawMessage(nil), d...)}, nil
	},
}

// ResponseTypes lists every known inbound discriminant.
func ResponseTypes() []ResponseType {
	return []ResponseType{
		PriceData, TxsData, TokenNewListing, NewPair,
		WalletTxsData, BaseQuotePriceData, TxsLargeTradeData, ErrorData,
	}
}

// Known reports whether t is a recognised inbound discriminant.
func (t ResponseType) Known() bool {
	_, ok := dispatchTable[t]
	return ok
}

// ParseEnvelope splits a raw inbound message into its type and payload.
func ParseEnvelope(raw []byte) (Envelope, error) {
	const op = "parse_envelope"
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return Envelope{}, newError(KindSchema, op, err)
		}
		return Envelope{}, newError(KindSyntax, op, err)
	}

	rawType, ok := fields["type"]
	if !ok || isNull(rawType) {
		return Envelope{}, &Error{Kind: KindSchema, Op: op, Field: "type", Err: errors.New("missing message type")}
	}
	var t ResponseType
	if err := json.Unmarshal(rawType, &t); err != nil {
		return Envelope{}, &Error{Kind: KindSchema, Op: op, Field: "type", Err: err}
	}
	if !t.Known() {
		return Envelope{}, &Error{Kind: KindUnknownType, Op: op, Field: "type", Err: errors.New(string(t))}
	}

	data, ok := fields["data"]
	if !ok || isNull(data) {
		return Envelope{}, &Error{Kind: KindSchema, Op: op, Field: "data", Err: errors.New("missing message data")}
	}
	return Envelope{Type: t, Data: data}, nil
}

// Dispatch decodes the payload of env into the record of its type.
func Dispatch(env Envelope) (Event, error) {
	const op = "dispatch"
	decode, ok := dispatchTable[env.Type]
	if !ok {
		return nil, &Error{Kind: KindUnknownType, Op: op, Field: "type", Err: errors.New(string(env.Type))}
	}
	if len(bytes.TrimSpace(env.Data)) == 0 || isNull(env.Data) {
		return nil, &Error{Kind: KindSchema, Op: op + " " + string(env.Type), Field: "data", Err: errors.New("missing message data")}
	}
	ev, err := decode(env.Data)
	if err != nil {
		return nil, schemaError(op, env.Type, err)
	}
	return ev, nil
}

// Decode parses and dispatches one raw inbound message.
func Decode(raw []byte) (Event, error) {
	env, err := ParseEnvelope(raw)
	if err != nil {
		return nil, err
	}
	return Dispatch(env)
}

func schemaError(op string, t ResponseType, err error) error {
	e := &Error{Kind: KindSchema, Op: op + " " + string(t), Err: err}
	var missing *models.MissingFieldError
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &missing):
		e.Field = missing.Field
	case errors.As(err, &typeErr):
		e.Field = typeErr.Field
	case errors.As(err, &syntaxErr):
		e.Kind = KindSyntax
	}
	return e
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
