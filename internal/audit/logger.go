package audit

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type EventType string

const (
	EventOrderCreated         EventType = "order_created"
	EventDepositReported      EventType = "deposit_reported"
	EventDepositConfirmed     EventType = "deposit_confirmed"
	EventDepositFailed        EventType = "deposit_failed"
	EventPayoutInitiated      EventType = "payout_initiated"
	EventPayoutCompleted      EventType = "payout_completed"
	EventPayoutFailed         EventType = "payout_failed"
	EventOrderCancelled       EventType = "order_cancelled"
	EventInputRejected        EventType = "input_rejected"
	EventDuplicateTransaction EventType = "duplicate_transaction"
	EventReplyRedacted        EventType = "reply_redacted"
)

// Event is one entry in the transaction audit trail. Entries are structured
// log lines so operators can reconstruct any order's history from logs alone.
type Event struct {
	Type    EventType
	UserID  string
	OrderID string
	Details map[string]interface{}
}

func Log(ctx context.Context, event Event) {
	logger := log.With().
		Str("audit", "transaction").
		Str("event_type", string(event.Type)).
		Time("timestamp", time.Now()).
		Logger()

	if event.UserID != "" {
		logger = logger.With().Str("user_id", event.UserID).Logger()
	}
	if event.OrderID != "" {
		logger = logger.With().Str("order_id", event.OrderID).Logger()
	}

	logEvent := logger.Info()
	for k, v := range event.Details {
		logEvent = addField(logEvent, k, v)
	}
	logEvent.Msg("transaction audit event")
}

func addField(e *zerolog.Event, key string, value interface{}) *zerolog.Event {
	switch v := value.(type) {
	case string:
		return e.Str(key, v)
	case int:
		return e.Int(key, v)
	case int64:
		return e.Int64(key, v)
	case float64:
		return e.Float64(key, v)
	case bool:
		return e.Bool(key, v)
	default:
		return e.Interface(key, v)
	}
}
