package events

import "slices"

// Topics emitted by checkout and order handling.
const (
	TopicOrderCreated  = "order.created"
	TopicOrderPaid     = "order.paid"
	TopicOrderCanceled = "order.canceled"
)

// DefaultTopics lists every topic the bus accepts.
func DefaultTopics() []string {
	return []string{TopicOrderCreated, TopicOrderPaid, TopicOrderCanceled}
}

// KnownTopic reports whether topic is one of DefaultTopics.
func KnownTopic(topic string) bool {
	return slices.Contains(DefaultTopics(), topic)
}
