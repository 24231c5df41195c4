package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/renefichtmueller/ctxpost-sub002/internal/queue"
	"github.com/renefichtmueller/ctxpost-sub002/internal/repository"
)

const duePostBatchSize = 100

// DuePostJob is the catch-up sweep: posts whose exact-time task was lost
// (process restart, Redis flush) are re-enqueued here. The worker's guarded
// scheduled->publishing claim makes duplicates harmless.
type DuePostJob struct {
	pr     repository.PostRepository
	client *asynq.Client
}

func NewDuePostJob(pr repository.PostRepository, client *asynq.Client) *DuePostJob {
	return &DuePostJob{pr: pr, client: client}
}

func (j *DuePostJob) Run() {
	ctx := context.Background()

	posts, err := j.pr.ListDue(ctx, time.Now(), duePostBatchSize)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	for _, post := range posts {
		// One bad post must not halt the sweep.
		err := queue.EnqueuePublish(j.client, queue.PublishPostPayload{PostID: post.ID}, 0)
		if err != nil {
			slog.Info("failed to enqueue due post", "post_id", post.ID, "error", err.Error())
		}
	}
}
