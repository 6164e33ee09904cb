package queue

import (
	"context"
	"encoding/json"
	"fmt"
)

type Broker interface {
	Publish(ctx context.Context, queueName string, message []byte) error
	Close() error
}

const (
	QueueMenuPublished   = "menu-published"
	QueueOrderCheckedOut = "order-checked-out"
)

// NopBroker drops every message. Used when no broker is configured.
type NopBroker struct{}

func (NopBroker) Publish(context.Context, string, []byte) error { return nil }
func (NopBroker) Close() error                                  { return nil }

// PublishJSON marshals v and publishes it to queueName.
func PublishJSON(ctx context.Context, b Broker, queueName string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return b.Publish(ctx, queueName, body)
}
