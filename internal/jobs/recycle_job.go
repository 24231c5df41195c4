package job

import (
	"context"
	"log/slog"

	"github.com/renefichtmueller/ctxpost-sub002/internal/service"
)

type RecycleJob struct {
	rs service.RecycleService
}

func NewRecycleJob(rs service.RecycleService) *RecycleJob {
	return &RecycleJob{rs: rs}
}

func (j *RecycleJob) Run() {
	count, err := j.rs.Run(context.Background())
	if err != nil {
		slog.Info(err.Error())
		return
	}
	if count > 0 {
		slog.Info("evergreen posts recycled", "count", count)
	}
}
