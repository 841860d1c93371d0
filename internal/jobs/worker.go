package jobs

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/tu-usuario/comercio-pro/pkg/config"
	"github.com/tu-usuario/comercio-pro/pkg/logger"
)

// Worker envuelve el servidor Asynq y el scheduler de tareas periódicas.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

// NewWorker construye el worker con los handlers registrados y los crons de la
// configuración.
func NewWorker(cfg *config.Config, handlers *Handlers, log *logger.Logger) (*Worker, error) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	server := asynq.NewServer(redisOpts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			QueueDefault: 1,
		},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeExpireQuotes, handlers.HandleExpireQuotes)
	mux.HandleFunc(TaskTypeStaleReport, handlers.HandleStaleReport)

	scheduler := asynq.NewScheduler(redisOpts, &asynq.SchedulerOpts{Location: time.UTC})
	if _, err := scheduler.Register(cfg.Worker.ExpireQuotesCron, NewExpireQuotesTask(), asynq.Queue(QueueDefault)); err != nil {
		return nil, err
	}
	if _, err := scheduler.Register(cfg.Worker.StaleReportCron, NewStaleReportTask(), asynq.Queue(QueueDefault)); err != nil {
		return nil, err
	}

	return &Worker{server: server, mux: mux, scheduler: scheduler, log: log}, nil
}

// Run procesa tareas hasta que el contexto se cancele.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.scheduler.Start(); err != nil {
		return err
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	select {
	case <-ctx.Done():
		w.scheduler.Shutdown()
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		w.scheduler.Shutdown()
		return err
	}
}
