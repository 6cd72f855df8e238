package downloader

import (
	"context"
	"sync"
)

// runPool hands indices 0..n-1 to a fixed number of workers over an
// unbuffered channel. Feeding stops as soon as ctx is done; work already
// handed out runs to completion.
func runPool(ctx context.Context, n, workers int, work func(i int)) {
	if n == 0 {
		return
	}
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	jobs := make(chan int)
	var wg sync.WaitGroup

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				work(i)
			}
		}()
	}

feed:
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}

		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}

	close(jobs)
	wg.Wait()
}
