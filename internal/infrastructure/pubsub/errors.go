package pubsub

import "errors"

var (
	// ErrUnknownTopic is returned when subscribing to a topic that is not an
	// event type.
	ErrUnknownTopic = errors.New("topic is unknown")
	// ErrSubscriptionNotFound is returned when removing an unknown
	// subscription.
	ErrSubscriptionNotFound = errors.New("subscription not found")
)
