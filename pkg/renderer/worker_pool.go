package renderer

import (
	"context"
	"sync"
)

// ScanlineTask represents a scanline rendering task for the worker pool
type ScanlineTask struct {
	Row int
}

// ScanlineResult contains the result from rendering a scanline
type ScanlineResult struct {
	Row     int
	Samples int
	Error   error
}

// WorkerPool manages parallel scanline rendering
type WorkerPool struct {
	ctx         context.Context
	taskQueue   chan ScanlineTask
	resultQueue chan ScanlineResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
	stopOnce    sync.Once
}

// Worker handles individual scanline rendering tasks
type Worker struct {
	ID          int
	raytracer   *Raytracer
	frame       *Frame
	taskQueue   chan ScanlineTask
	resultQueue chan ScanlineResult
}

// NewWorkerPool creates a worker pool writing into frame.
// Every worker shares the raytracer read-only; rows are disjoint so frame writes need no lock.
func NewWorkerPool(ctx context.Context, raytracer *Raytracer, frame *Frame, numWorkers int) *WorkerPool {
	numWorkers = max(1, numWorkers)

	wp := &WorkerPool{
		ctx:         ctx,
		taskQueue:   make(chan ScanlineTask, frame.Height),   // Buffer for all scanlines
		resultQueue: make(chan ScanlineResult, frame.Height), // Buffer for all results
		numWorkers:  numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		wp.workers = append(wp.workers, &Worker{
			ID:          i,
			raytracer:   raytracer,
			frame:       frame,
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		})
	}

	return wp
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(wp.ctx, &wp.wg)
	}
}

// Stop gracefully shuts down all workers. It is safe to call more than once.
func (wp *WorkerPool) Stop() {
	wp.stopOnce.Do(func() {
		close(wp.taskQueue) // No more tasks
		wp.wg.Wait()        // Wait for workers to finish
		close(wp.resultQueue)
	})
}

// SubmitTask submits a scanline task to the worker pool
func (wp *WorkerPool) SubmitTask(task ScanlineTask) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed scanline result
func (wp *WorkerPool) GetResult() (ScanlineResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (w *Worker) run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		// Skip the work once cancelled but still answer so the collector can finish
		if err := ctx.Err(); err != nil {
			w.resultQueue <- ScanlineResult{Row: task.Row, Error: err}
			continue
		}

		samples := w.raytracer.renderScanline(task.Row, w.frame)
		w.resultQueue <- ScanlineResult{
			Row:     task.Row,
			Samples: samples,
		}
	}
}
