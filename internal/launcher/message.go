package launcher

import (
	"github.com/tidwall/gjson"
)

// Events node-inspector reports over the IPC channel.
const (
	EventServerListening = "SERVER.LISTENING"
	EventServerError     = "SERVER.ERROR"
)

// Message is a structured message received from the child.
type Message struct {
	// Event is the message's "event" field; empty for messages without one.
	Event string
	// URL is "address.url" of SERVER.LISTENING.
	URL string
	// Code is "error.code" of SERVER.ERROR.
	Code string
}

// ParseMessage decodes one newline-delimited JSON message. ok is false for
// anything that is not a JSON object.
func ParseMessage(line []byte) (Message, bool) {
	if !gjson.ValidBytes(line) {
		return Message{}, false
	}
	result := gjson.ParseBytes(line)
	if !result.IsObject() {
		return Message{}, false
	}

	return Message{
		Event: result.Get("event").String(),
		URL:   result.Get("address.url").String(),
		Code:  result.Get("error.code").String(),
	}, true
}
