package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const TaskTypePublishVariant = "publish:variant"

type PublishVariantPayload struct {
	VariantID uuid.UUID `json:"variant_id"`
}

// Scheduler dispatches publish work for a variant, either immediately or at
// a point in the future. Implementations must be safe for concurrent use.
type Scheduler interface {
	Enqueue(ctx context.Context, variantID uuid.UUID) error
	Schedule(ctx context.Context, variantID uuid.UUID, at time.Time) error
}

type AsynqScheduler struct {
	client *asynq.Client
}

func NewAsynqScheduler(client *asynq.Client) *AsynqScheduler {
	return &AsynqScheduler{client: client}
}

func (s *AsynqScheduler) Enqueue(ctx context.Context, variantID uuid.UUID) error {
	return s.dispatch(ctx, variantID)
}

func (s *AsynqScheduler) Schedule(ctx context.Context, variantID uuid.UUID, at time.Time) error {
	return s.dispatch(ctx, variantID, asynq.ProcessAt(at))
}

func (s *AsynqScheduler) dispatch(ctx context.Context, variantID uuid.UUID, opts ...asynq.Option) error {
	payload, err := json.Marshal(PublishVariantPayload{VariantID: variantID})
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypePublishVariant, payload)
	if _, err := s.client.EnqueueContext(ctx, task, opts...); err != nil {
		return err
	}

	slog.Info("publish task dispatched", "variant_id", variantID)
	return nil
}
