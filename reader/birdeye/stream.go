package birdeye

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"birdeyeflow/models"
	"birdeyeflow/protocol"
)

const (
	// Subprotocol is negotiated on every stream connection.
	Subprotocol = "echo-protocol"
	// Origin is sent both as Origin and Sec-WebSocket-Origin.
	Origin = "ws://public-api.birdeye.so"
)

// DialOptions describes one stream connection.
type DialOptions struct {
	URL              string
	Chain            string
	APIKey           string
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	LocalIP          string
}

// EndpointURL appends the chain to the socket base and carries the API key as
// the x-api-key query parameter.
func EndpointURL(base, chain, apiKey string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", protocol.URLError("endpoint", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return "", protocol.URLError("endpoint", fmt.Errorf("unsupported scheme %q", u.Scheme))
	}
	if u.Host == "" {
		return "", protocol.URLError("endpoint", fmt.Errorf("missing host in %q", base))
	}
	if chain == "" {
		return "", protocol.URLError("endpoint", fmt.Errorf("chain is required"))
	}

	u.Path = strings.TrimRight(u.Path, "/") + "/" + url.PathEscape(chain)
	q := u.Query()
	q.Set("x-api-key", apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func handshakeHeader() http.Header {
	h := http.Header{}
	h.Set("Origin", Origin)
	h.Set("Sec-WebSocket-Origin", Origin)
	return h
}

// Stream is a single websocket connection. Writes may come from any
// goroutine; ReadFrame must be called from one goroutine only.
type Stream struct {
	conn         *websocket.Conn
	session      string
	writeTimeout time.Duration

	writeMu   sync.Mutex
	baseQuote bool

	seq uint64
}

// Dial opens a stream connection. A malformed endpoint is a URL error; every
// network or handshake failure is a transport error.
func Dial(ctx context.Context, opts DialOptions) (*Stream, error) {
	target, err := EndpointURL(opts.URL, opts.Chain, opts.APIKey)
	if err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: opts.HandshakeTimeout,
		Subprotocols:     []string{Subprotocol},
	}
	if opts.LocalIP != "" {
		if ip := net.ParseIP(opts.LocalIP); ip != nil {
			dialer.NetDialContext = (&net.Dialer{LocalAddr: &net.TCPAddr{IP: ip}}).DialContext
		}
	}

	conn, resp, err := dialer.DialContext(ctx, target, handshakeHeader())
	if err != nil {
		if resp != nil {
			err = fmt.Errorf("%w (status %d)", err, resp.StatusCode)
		}
		return nil, protocol.TransportError("dial", err)
	}

	return &Stream{
		conn:         conn,
		session:      uuid.NewString(),
		writeTimeout: opts.WriteTimeout,
	}, nil
}

// Session returns the identifier stamped on every frame read from this
// connection.
func (s *Stream) Session() string {
	return s.session
}

// Subscribe sends a control message. Only one base-quote subscription may be
// active per connection; a second one is refused until the base-quote feed is
// unsubscribed.
func (s *Stream) Subscribe(sub protocol.Subscription) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if sub.Type() == protocol.SubscribeBaseQuotePrice && s.baseQuote {
		return protocol.ValidationError("subscribe", "type", "a base-quote subscription is already active on this connection")
	}

	payload, err := protocol.Encode(sub)
	if err != nil {
		return err
	}
	if err := s.write(websocket.TextMessage, payload); err != nil {
		return protocol.TransportError("subscribe", err)
	}

	switch sub.Type() {
	case protocol.SubscribeBaseQuotePrice:
		s.baseQuote = true
	case protocol.UnsubscribeBaseQuotePrice:
		s.baseQuote = false
	}
	return nil
}

// Ping sends a websocket ping control frame.
func (s *Stream) Ping() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return protocol.TransportError("ping", s.write(websocket.PingMessage, nil))
}

func (s *Stream) write(messageType int, data []byte) error {
	if s.writeTimeout > 0 {
		if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
			return err
		}
	}
	return s.conn.WriteMessage(messageType, data)
}

// KeepAlive arms a read deadline that every pong pushes forward.
func (s *Stream) KeepAlive(readTimeout time.Duration) error {
	if readTimeout <= 0 {
		return nil
	}
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(readTimeout))
	})
	return s.conn.SetReadDeadline(time.Now().Add(readTimeout))
}

// ReadFrame blocks until the next data frame arrives.
func (s *Stream) ReadFrame() (models.RawFrame, error) {
	_, data, err := s.conn.ReadMessage()
	if err != nil {
		return models.RawFrame{}, protocol.TransportError("read", err)
	}
	s.seq++
	return models.RawFrame{
		Session:    s.session,
		Seq:        s.seq,
		Data:       data,
		ReceivedAt: time.Now(),
	}, nil
}

// Close sends a close frame and releases the connection.
func (s *Stream) Close() error {
	s.writeMu.Lock()
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	s.writeMu.Unlock()
	return s.conn.Close()
}
