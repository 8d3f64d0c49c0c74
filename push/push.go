// Package push talks to the external push-delivery provider. Destination
// tokens are opaque strings; the only validation performed locally is a
// format check, never a provider round-trip.
package push

import (
	"context"
	"encoding/json"
	"strings"
)

// Message is one push notification handed to the provider.
type Message struct {
	To    string          `json:"to"`
	Title string          `json:"title"`
	Body  string          `json:"body"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Sender accepts a batch of messages. The call succeeds or fails as a whole;
// per-message acceptance tickets are not inspected.
type Sender interface {
	SendBatch(ctx context.Context, messages []Message) error
}

// Provider tokens look like "ExponentPushToken[xxxxxxxx]".
const (
	tokenPrefix = "ExponentPushToken["
	tokenSuffix = "]"
)

// ValidToken reports whether a destination token passes the basic format
// check. An invalid token is a terminal failure for its queue item.
func ValidToken(token string) bool {
	if !strings.HasPrefix(token, tokenPrefix) || !strings.HasSuffix(token, tokenSuffix) {
		return false
	}
	return len(token) > len(tokenPrefix)+len(tokenSuffix)
}
