package renderer

import (
	"errors"
	"image"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPool_RunsEveryTask(t *testing.T) {
	tiles := NewTileGrid(50, 30, 16, DefaultSeed)
	tasks := make([]TileTask, len(tiles))
	for i, tile := range tiles {
		tasks[i] = TileTask{Tile: tile, PassNumber: 1, TaskID: i}
	}

	pool := NewWorkerPool(3)
	var calls atomic.Int32
	results, err := pool.Run(tasks, func(task TileTask) (RenderStats, error) {
		calls.Add(1)
		return RenderStats{TotalPixels: task.Tile.Bounds.Dx() * task.Tile.Bounds.Dy()}, nil
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if int(calls.Load()) != len(tasks) {
		t.Errorf("Expected %d calls, got %d", len(tasks), calls.Load())
	}
	if len(results) != len(tasks) {
		t.Fatalf("Expected %d results, got %d", len(tasks), len(results))
	}

	total := 0
	for i, result := range results {
		if result.TaskID != i {
			t.Errorf("Result %d has task ID %d", i, result.TaskID)
		}
		total += result.Stats.TotalPixels
	}
	if total != 50*30 {
		t.Errorf("Expected results to cover 1500 pixels, got %d", total)
	}
}

func TestWorkerPool_RespectsLimit(t *testing.T) {
	const workers = 2
	tasks := make([]TileTask, 12)
	for i := range tasks {
		tasks[i] = TileTask{Tile: NewTile(i, image.Rect(0, 0, 1, 1), DefaultSeed), TaskID: i}
	}

	var running, peak atomic.Int32
	pool := NewWorkerPool(workers)
	_, err := pool.Run(tasks, func(task TileTask) (RenderStats, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		running.Add(-1)
		return RenderStats{}, nil
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if peak.Load() > workers {
		t.Errorf("Expected at most %d concurrent tasks, saw %d", workers, peak.Load())
	}
}

func TestWorkerPool_ReturnsError(t *testing.T) {
	tasks := make([]TileTask, 5)
	for i := range tasks {
		tasks[i] = TileTask{TaskID: i}
	}

	boom := errors.New("boom")
	pool := NewWorkerPool(2)
	results, err := pool.Run(tasks, func(task TileTask) (RenderStats, error) {
		if task.TaskID == 3 {
			return RenderStats{}, boom
		}
		return RenderStats{}, nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("Expected the task error, got %v", err)
	}
	if results != nil {
		t.Errorf("Expected no results on error, got %d", len(results))
	}
}

func TestWorkerPool_DefaultsToCPUCount(t *testing.T) {
	if NewWorkerPool(0).GetNumWorkers() < 1 {
		t.Error("Expected at least one worker")
	}
	if got := NewWorkerPool(5).GetNumWorkers(); got != 5 {
		t.Errorf("Expected 5 workers, got %d", got)
	}
}
