package pubsub

import (
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

// AnyTopic subscribes to every event type.
const AnyTopic = "*"

type Subscription struct {
	ID       string `json:"id"`
	Topic    string `json:"topic"`
	Endpoint string `json:"endpoint"`
	Secret   string `json:"secret"`
}

type subscriptions []Subscription

func NewSubscription(topic, endpoint, secret string) (*Subscription, error) {
	if len(topic) <= 0 {
		return nil, fmt.Errorf("missing topic")
	}
	if topic != AnyTopic && !isKnownTopic(topic) {
		return nil, ErrUnknownTopic
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("invalid webhook endpoint, must be a valid URI")
	}
	id := uuid.New().String()
	return &Subscription{id, topic, endpoint, secret}, nil
}

func (s *Subscription) IsSecured() bool {
	return len(s.Secret) > 0
}

func (s *Subscription) matches(eventType domain.EventType) bool {
	return s.Topic == AnyTopic || s.Topic == string(eventType)
}

func isKnownTopic(topic string) bool {
	switch domain.EventType(topic) {
	case domain.EventTradeProposed, domain.EventTradeExecuted,
		domain.EventTradeCancelled, domain.EventFeeReclaimed,
		domain.EventAdminChanged, domain.EventFundsTransferredOut:
		return true
	default:
		return false
	}
}
