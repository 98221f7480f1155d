package birdeye

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"birdeyeflow/protocol"
)

func testUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		Subprotocols: []string{Subprotocol},
		CheckOrigin:  func(*http.Request) bool { return true },
	}
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestEndpointURL(t *testing.T) {
	got, err := EndpointURL("wss://public-api.birdeye.so/socket", "solana", "KEY")
	require.NoError(t, err)
	assert.Equal(t, "wss://public-api.birdeye.so/socket/solana?x-api-key=KEY", got)

	got, err = EndpointURL("ws://localhost:8080/socket/", "base", "a b")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/socket/base?x-api-key=a+b", got)

	for _, bad := range []struct{ base, chain string }{
		{"https://public-api.birdeye.so/socket", "solana"},
		{"wss://", "solana"},
		{"://nope", "solana"},
		{"wss://public-api.birdeye.so/socket", ""},
	} {
		_, err := EndpointURL(bad.base, bad.chain, "KEY")
		assert.ErrorIs(t, err, protocol.ErrURL, bad.base)
	}
}

func TestDialSendsHandshake(t *testing.T) {
	seen := make(chan *http.Request, 1)
	upgrader := testUpgrader()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.Clone(context.Background())
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		conn.ReadMessage()
	}))
	defer srv.Close()

	stream, err := Dial(context.Background(), DialOptions{URL: wsURL(srv), Chain: "solana", APIKey: "KEY", HandshakeTimeout: time.Second})
	require.NoError(t, err)
	defer stream.Close()

	assert.NotEmpty(t, stream.Session())
	assert.Equal(t, Subprotocol, stream.conn.Subprotocol())

	req := <-seen
	assert.Equal(t, "/solana", req.URL.Path)
	assert.Equal(t, "KEY", req.URL.Query().Get("x-api-key"))
	assert.Equal(t, Origin, req.Header.Get("Origin"))
	assert.Equal(t, Origin, req.Header.Get("Sec-WebSocket-Origin"))
}

func TestDialFailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := Dial(context.Background(), DialOptions{URL: wsURL(srv), Chain: "solana", APIKey: "bad"})
	require.Error(t, err)
	assert.Equal(t, protocol.KindTransport, protocol.KindOf(err))
	assert.Contains(t, err.Error(), "403")
}

func TestDialMalformedURL(t *testing.T) {
	_, err := Dial(context.Background(), DialOptions{URL: "not a url", Chain: "solana"})
	assert.Equal(t, protocol.KindURL, protocol.KindOf(err))
}

func TestStreamSingleBaseQuoteSubscription(t *testing.T) {
	received := make(chan string, 8)
	upgrader := testUpgrader()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			received <- string(msg)
		}
	}))
	defer srv.Close()

	stream, err := Dial(context.Background(), DialOptions{URL: wsURL(srv), Chain: "solana", APIKey: "KEY"})
	require.NoError(t, err)
	defer stream.Close()

	first, err := protocol.NewBaseQuoteSubscription("SOL", "USDC", protocol.Chart1m)
	require.NoError(t, err)
	second, err := protocol.NewBaseQuoteSubscription("BONK", "SOL", protocol.Chart5m)
	require.NoError(t, err)
	unsub, err := protocol.NewUnsubscribe(protocol.FeedBaseQuotePrice)
	require.NoError(t, err)

	require.NoError(t, stream.Subscribe(first))
	err = stream.Subscribe(second)
	assert.ErrorIs(t, err, protocol.ErrValidation)

	require.NoError(t, stream.Subscribe(unsub))
	require.NoError(t, stream.Subscribe(second))

	want := []string{
		`{"type":"SUBSCRIBE_BASE_QUOTE_PRICE","data":{"baseAddress":"SOL","quoteAddress":"USDC","chartType":"1m"}}`,
		`{"type":"UNSUBSCRIBE_BASE_QUOTE_PRICE","data":{}}`,
		`{"type":"SUBSCRIBE_BASE_QUOTE_PRICE","data":{"baseAddress":"BONK","quoteAddress":"SOL","chartType":"5m"}}`,
	}
	for _, w := range want {
		select {
		case got := <-received:
			assert.JSONEq(t, w, got)
		case <-time.After(time.Second):
			t.Fatalf("message %s not received", w)
		}
	}
}

func TestStreamReadFrameSequence(t *testing.T) {
	upgrader := testUpgrader()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ERROR","data":"a"}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ERROR","data":"b"}`))
		conn.ReadMessage()
	}))
	defer srv.Close()

	stream, err := Dial(context.Background(), DialOptions{URL: wsURL(srv), Chain: "solana", APIKey: "KEY"})
	require.NoError(t, err)
	defer stream.Close()
	require.NoError(t, stream.KeepAlive(time.Second))

	for i := uint64(1); i <= 2; i++ {
		frame, err := stream.ReadFrame()
		require.NoError(t, err)
		assert.Equal(t, i, frame.Seq)
		assert.Equal(t, stream.Session(), frame.Session)
		assert.False(t, frame.ReceivedAt.IsZero())
	}
}
