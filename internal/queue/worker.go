package queue

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Executor runs one publish attempt for a variant. A returned error signals
// a transient failure and makes asynq retry the task; terminal outcomes
// (published, or a business rejection recorded on the variant) return nil.
type Executor interface {
	Execute(ctx context.Context, variantID uuid.UUID) error
}

type Worker struct {
	executor Executor
}

func NewWorker(executor Executor) *Worker {
	return &Worker{executor: executor}
}

func (w *Worker) HandlePublishVariantTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishVariantPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	return w.executor.Execute(ctx, payload.VariantID)
}
