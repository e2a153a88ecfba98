package notify

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
)

// DeliverNotificationArgs is the River job payload for delivering one
// notification row to the real-time transport.
type DeliverNotificationArgs struct {
	NotificationID uuid.UUID `json:"notification_id"`
	UserID         uuid.UUID `json:"user_id"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
}

func (DeliverNotificationArgs) Kind() string { return "deliver_notification" }

// InsertTxFunc enqueues a delivery job within the given transaction.
// Provided by main using river.Client.InsertTx so the job commits or
// rolls back together with the notification row.
type InsertTxFunc func(ctx context.Context, tx pgx.Tx, args DeliverNotificationArgs) error

// NotificationStore is the contract the worker needs to stamp delivery.
type NotificationStore interface {
	MarkDelivered(ctx context.Context, id uuid.UUID) error
}

// DeliverWorker hands the notification to the real-time transport and
// stamps delivered_at. Actual socket delivery belongs to the transport
// collaborator; here it is a structured log line.
type DeliverWorker struct {
	river.WorkerDefaults[DeliverNotificationArgs]
	store  NotificationStore
	logger *slog.Logger
}

func NewDeliverWorker(store NotificationStore, logger *slog.Logger) *DeliverWorker {
	return &DeliverWorker{store: store, logger: logger}
}

func (w *DeliverWorker) Work(ctx context.Context, job *river.Job[DeliverNotificationArgs]) error {
	args := job.Args
	w.logger.Info("delivering notification",
		"notification_id", args.NotificationID,
		"user_id", args.UserID,
		"type", args.Type,
	)
	return w.store.MarkDelivered(ctx, args.NotificationID)
}
