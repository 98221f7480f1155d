package models

import "time"

// RawFrame is one inbound websocket text frame as read from the connection.
type RawFrame struct {
	// Session identifies the connection the frame arrived on. It changes on
	// every reconnect.
	Session    string
	Seq        uint64
	Data       []byte
	ReceivedAt time.Time
}
