package renderer

import (
	"runtime"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"golang.org/x/sync/errgroup"
)

// TileTask represents a tile rendering task for the worker pool
type TileTask struct {
	Tile       *Tile
	PassNumber int
	TaskID     int         // Index of the result slot for this task
	Pixels     []core.Vec3 // Shared pass buffer, written only inside Tile.Bounds
}

// TileResult contains the result from rendering a tile
type TileResult struct {
	TaskID int
	Stats  RenderStats
}

// TileFunc renders one task. Tasks touch disjoint pixels so they may run concurrently.
type TileFunc func(task TileTask) (RenderStats, error)

// WorkerPool runs tile tasks on a bounded number of goroutines
type WorkerPool struct {
	numWorkers int
}

// NewWorkerPool creates a worker pool with the specified number of workers
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{numWorkers: numWorkers}
}

// Run executes every task and waits for all of them. Results are ordered by
// task, not by completion. The first error is returned once all workers exit.
func (wp *WorkerPool) Run(tasks []TileTask, render TileFunc) ([]TileResult, error) {
	results := make([]TileResult, len(tasks))

	var g errgroup.Group
	g.SetLimit(wp.numWorkers)
	for i, task := range tasks {
		g.Go(func() error {
			stats, err := render(task)
			if err != nil {
				return err
			}
			results[i] = TileResult{TaskID: task.TaskID, Stats: stats}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}
