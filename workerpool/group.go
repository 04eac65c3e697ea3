package workerpool

import (
	"context"
	"sync"
)

// ForEach runs fn(i) for every i in [0, n) on pool and waits for all
// submitted tasks to finish. If a submission fails it stops submitting and
// returns how many tasks were submitted together with the error.
func ForEach(ctx context.Context, pool WorkerPool, n int, fn func(i int)) (int, error) {
	var wg sync.WaitGroup

	for i := range n {
		wg.Add(1)
		err := pool.Submit(ctx, func() {
			defer wg.Done()
			fn(i)
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return i, err
		}
	}

	wg.Wait()
	return n, nil
}
