package protocol

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	cases := []struct {
		err      error
		kind     ErrorKind
		sentinel error
	}{
		{TransportError("read", io.ErrUnexpectedEOF), KindTransport, ErrTransport},
		{URLError("dial", errors.New("bad url")), KindURL, ErrURL},
		{HTTPError("ohlcv", errors.New("status 500")), KindHTTP, ErrHTTP},
		{ValidationError("op", "min_volume", "too small"), KindValidation, ErrValidation},
		{ErrorEvent{Data: []byte(`{}`)}.Err(), KindPeer, ErrPeer},
	}
	for _, c := range cases {
		t.Run(c.kind.String(), func(t *testing.T) {
			assert.Equal(t, c.kind, KindOf(c.err))
			assert.True(t, errors.Is(c.err, c.sentinel))
			assert.False(t, errors.Is(c.err, ErrSchema))

			wrapped := fmt.Errorf("reader: %w", c.err)
			assert.Equal(t, c.kind, KindOf(wrapped))
			assert.True(t, errors.Is(wrapped, c.sentinel))
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	err := TransportError("read", io.ErrUnexpectedEOF)
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.Nil(t, TransportError("read", nil))
	assert.Equal(t, KindUnknown, KindOf(io.EOF))
}

func TestErrorMatchesTemplate(t *testing.T) {
	err := ValidationError("large_trade_options", "max_volume", "bad")
	assert.True(t, errors.Is(err, &Error{Kind: KindValidation, Field: "max_volume"}))
	assert.False(t, errors.Is(err, &Error{Kind: KindValidation, Field: "min_volume"}))
	assert.Equal(t, "large_trade_options: validation (max_volume): bad", err.Error())
}
