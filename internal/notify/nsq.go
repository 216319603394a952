package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"farmshare-backend/internal/domain"
	"farmshare-backend/internal/logger"

	"github.com/google/uuid"
	"github.com/nsqio/go-nsq"
)

type publisher interface {
	Publish(topic string, body []byte) error
}

// StatusEvent is the message published for downstream SMS and push workers.
type StatusEvent struct {
	BookingID  uuid.UUID            `json:"booking_id"`
	Recipient  uuid.UUID            `json:"recipient_id"`
	Status     domain.BookingStatus `json:"status"`
	Message    string               `json:"message"`
	OccurredAt time.Time            `json:"occurred_at"`
}

type NSQ struct {
	producer publisher
	topic    string
}

// NewNSQ connects a producer to nsqd and checks it is reachable.
func NewNSQ(address, topic string) (*NSQ, *nsq.Producer, error) {
	config := nsq.NewConfig()
	producer, err := nsq.NewProducer(address, config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create nsq producer: %w", err)
	}
	if err := producer.Ping(); err != nil {
		producer.Stop()
		return nil, nil, fmt.Errorf("failed to reach nsqd at %s: %w", address, err)
	}
	return &NSQ{producer: producer, topic: topic}, producer, nil
}

func (n *NSQ) NotifyStatusChange(ctx context.Context, recipient, bookingID uuid.UUID, status domain.BookingStatus) error {
	body, err := json.Marshal(StatusEvent{
		BookingID:  bookingID,
		Recipient:  recipient,
		Status:     status,
		Message:    FormatStatusSMS(bookingID, status),
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	logger.ExternalServiceCall("nsq", "Publish", "topic", n.topic, "bookingID", bookingID)
	err = n.producer.Publish(n.topic, body)
	logger.ExternalServiceResult("nsq", "Publish", err)
	return err
}
