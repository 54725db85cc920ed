// internal/platform/workerpool/worker_pool.go
package workerpool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"dlcheck/internal/platform/logx"
)

// Task representa una tarea a ejecutar en el worker pool.
type Task interface {
	// Execute ejecuta la tarea
	Execute(ctx context.Context) error

	// Name retorna el nombre de la tarea
	Name() string
}

// Func adapta una función a Task.
type Func struct {
	Label string
	Fn    func(ctx context.Context) error
}

func (f Func) Execute(ctx context.Context) error { return f.Fn(ctx) }
func (f Func) Name() string                      { return f.Label }

// TaskResult representa el resultado de una tarea.
type TaskResult struct {
	Task     Task
	Error    error
	Duration time.Duration
}

// WorkerPool ejecuta tareas en orden de envío (FIFO) con concurrencia
// acotada. Submit bloquea cuando la cola está llena.
type WorkerPool struct {
	workers  int
	logger   logx.Logger
	onResult func(TaskResult)

	taskQueue chan Task

	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once

	submitted atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
}

// WorkerPoolConfig configura el worker pool.
type WorkerPoolConfig struct {
	Workers int
	Logger  logx.Logger

	// OnResult se invoca desde el worker tras cada tarea (opcional).
	OnResult func(TaskResult)
}

// NewWorkerPool crea un nuevo worker pool.
func NewWorkerPool(cfg WorkerPoolConfig) *WorkerPool {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Logger == nil {
		cfg.Logger = logx.New()
	}

	return &WorkerPool{
		workers:   cfg.Workers,
		logger:    cfg.Logger.With("component", "worker-pool"),
		onResult:  cfg.OnResult,
		taskQueue: make(chan Task, cfg.Workers*2), // Buffer 2x workers
	}
}

// Start inicia los workers. Llamadas repetidas no tienen efecto.
func (wp *WorkerPool) Start(ctx context.Context) {
	wp.startOnce.Do(func() {
		wp.logger.Debug("starting worker pool", "workers", wp.workers)
		for i := 0; i < wp.workers; i++ {
			wp.wg.Add(1)
			go wp.worker(ctx, i)
		}
	})
}

// worker es el goroutine que procesa tareas hasta que se cierra la cola.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		wp.executeTask(ctx, id, task)
	}
	wp.logger.Debug("task queue closed, worker stopping", "worker_id", id)
}

// executeTask ejecuta una tarea individual. Un panic se convierte en error
// para no derribar el pool.
func (wp *WorkerPool) executeTask(ctx context.Context, workerID int, task Task) {
	start := time.Now()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("task %s panicked: %v", task.Name(), r)
			}
		}()
		return task.Execute(ctx)
	}()
	duration := time.Since(start)

	wp.completed.Add(1)
	if err != nil {
		wp.failed.Add(1)
	}

	wp.logger.Debug("task completed",
		"worker_id", workerID,
		"task", task.Name(),
		"duration_ms", duration.Milliseconds(),
		"error", err != nil,
	)

	if wp.onResult != nil {
		wp.onResult(TaskResult{Task: task, Error: err, Duration: duration})
	}
}

// Submit encola una tarea, bloqueando mientras la cola esté llena.
func (wp *WorkerPool) Submit(ctx context.Context, task Task) error {
	select {
	case wp.taskQueue <- task:
		wp.submitted.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait cierra la cola y espera a que terminen todas las tareas encoladas.
// No se puede llamar a Submit después de Wait.
func (wp *WorkerPool) Wait() {
	wp.stopOnce.Do(func() {
		close(wp.taskQueue)
	})
	wp.wg.Wait()
	wp.logger.Debug("worker pool drained", "completed", wp.completed.Load())
}

// Stats retorna estadísticas del worker pool.
func (wp *WorkerPool) Stats() WorkerPoolStats {
	return WorkerPoolStats{
		Workers:   wp.workers,
		QueueSize: len(wp.taskQueue),
		Submitted: wp.submitted.Load(),
		Completed: wp.completed.Load(),
		Failed:    wp.failed.Load(),
	}
}

// WorkerPoolStats contiene estadísticas del worker pool.
type WorkerPoolStats struct {
	Workers   int
	QueueSize int
	Submitted int64
	Completed int64
	Failed    int64
}
