package pubsub

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

// Message is the JSON body posted to webhook endpoints.
type Message struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	TradeID   uint64 `json:"trade_id"`
	Height    int64  `json:"height"`
	Account   string `json:"account,omitempty"`
	Amount    string `json:"amount,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

func newMessage(event domain.Event) Message {
	msg := Message{
		ID:        uuid.New().String(),
		Type:      string(event.Type),
		TradeID:   event.TradeID,
		Height:    event.Height,
		Timestamp: time.Now().Unix(),
	}
	if event.Account != (emptyAddress) {
		msg.Account = event.Account.Hex()
	}
	if !event.Amount.IsZero() {
		msg.Amount = event.Amount.String()
	}
	return msg
}

func (m Message) serialize() string {
	buf, _ := json.Marshal(m)
	return string(buf)
}
