package interfaces

import "context"

// EventListener is implemented by every queue consumer.
type EventListener interface {
	Handle(ctx context.Context, baseEvent any) error
	GetEventType() string
	GetQueueName() string
}
