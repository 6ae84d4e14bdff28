package source

import (
	"context"
	"sync"
	"time"

	"github.com/routeblend/routeblend/internal/types"
)

// ProgressFunc is called after each stream fetch settles.
type ProgressFunc func(completed, total, failed int)

// FetchPoolConfig configures the stream fetch pool.
type FetchPoolConfig struct {
	Workers    int
	Streams    StreamSource
	OnProgress ProgressFunc
}

// FetchResult is the settled outcome of one activity's stream fetch.
type FetchResult struct {
	Activity types.Activity
	Points   []types.RawPoint
	Err      error
	Elapsed  time.Duration
}

// FetchPool downloads activity streams in parallel. Run blocks until every
// fetch has settled, so normalization and classification always start from a
// complete batch. Individual failures are reported per result, never as a
// batch failure.
type FetchPool struct {
	workers    int
	streams    StreamSource
	onProgress ProgressFunc
}

// NewFetchPool creates a fetch pool.
func NewFetchPool(cfg FetchPoolConfig) *FetchPool {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	return &FetchPool{
		workers:    workers,
		streams:    cfg.Streams,
		onProgress: cfg.OnProgress,
	}
}

// Run fetches the stream of every activity and returns one result per
// activity, in completion order.
func (p *FetchPool) Run(ctx context.Context, activities []types.Activity) []FetchResult {
	if len(activities) == 0 {
		return nil
	}

	taskCh := make(chan types.Activity, len(activities))
	resultCh := make(chan FetchResult, len(activities))

	var (
		completed int
		failed    int
		mu        sync.Mutex
	)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.worker(ctx, taskCh, resultCh)
		}()
	}

	go func() {
		for _, a := range activities {
			select {
			case taskCh <- a:
			case <-ctx.Done():
			}
		}
		close(taskCh)
	}()

	results := make([]FetchResult, 0, len(activities))
	done := make(chan struct{})

	go func() {
		for result := range resultCh {
			results = append(results, result)

			mu.Lock()
			completed++
			if result.Err != nil {
				failed++
			}
			c, f := completed, failed
			mu.Unlock()

			if p.onProgress != nil {
				p.onProgress(c, len(activities), f)
			}
		}
		close(done)
	}()

	wg.Wait()
	close(resultCh)
	<-done

	return results
}

func (p *FetchPool) worker(ctx context.Context, tasks <-chan types.Activity, results chan<- FetchResult) {
	for activity := range tasks {
		select {
		case <-ctx.Done():
			results <- FetchResult{Activity: activity, Err: ctx.Err()}
			continue
		default:
		}

		start := time.Now()
		points, err := p.streams.GetStream(ctx, activity.ID)
		results <- FetchResult{
			Activity: activity,
			Points:   points,
			Err:      err,
			Elapsed:  time.Since(start),
		}
	}
}
