package pub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	WalletEventsChannel = "wallet_events"
	WalletEventsTopic   = "wallet.events"
)

// Event types emitted by the wallet and order workflows.
const (
	EventDepositApproved     = "deposit.approved"
	EventDepositPending      = "deposit.pending"
	EventWithdrawalRequested = "withdrawal.requested"
	EventEntryApproved       = "entry.approved"
	EventEntryRejected       = "entry.rejected"
	EventOrderStatusChanged  = "order.status_changed"
)

type WalletEvent struct {
	EventType     string    `json:"event_type"`
	SellerID      int64     `json:"seller_id"`
	EntryID       int64     `json:"entry_id,omitempty"`
	ReferenceCode string    `json:"reference_code,omitempty"`
	Amount        int64     `json:"amount,omitempty"`
	BalanceAfter  int64     `json:"balance_after,omitempty"`
	Method        string    `json:"method,omitempty"`
	OrderID       string    `json:"order_id,omitempty"`
	OrderStatus   string    `json:"order_status,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// WalletEventPublisher fans committed workflow outcomes out to Redis pub/sub
// (realtime back-office views) and Kafka (durable downstream consumers).
// Publishing is best-effort after commit and never fails a workflow.
type WalletEventPublisher struct {
	rdb    *redis.Client
	writer *kafka.Writer
	logger *zap.Logger
}

func NewWalletEventPublisher(rdb *redis.Client, writer *kafka.Writer, logger *zap.Logger) *WalletEventPublisher {
	return &WalletEventPublisher{rdb: rdb, writer: writer, logger: logger}
}

func (p *WalletEventPublisher) Publish(ctx context.Context, event *WalletEvent) error {
	event.Timestamp = time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if p.rdb != nil {
		if err := p.rdb.Publish(ctx, WalletEventsChannel, payload).Err(); err != nil {
			p.logger.Warn("redis publish failed",
				zap.String("event_type", event.EventType),
				zap.Error(err))
		}
	}

	if p.writer != nil {
		err := p.writer.WriteMessages(ctx, kafka.Message{
			Key:   []byte(fmt.Sprintf("%d", event.SellerID)),
			Value: payload,
		})
		if err != nil {
			p.logger.Warn("kafka write failed",
				zap.String("event_type", event.EventType),
				zap.Error(err))
		}
	}

	return nil
}
