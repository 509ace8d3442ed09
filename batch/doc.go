// Package batch runs many template searches concurrently on a bounded worker pool.
//
// Example:
//
//	runner, err := batch.NewRunner(searcher, batch.WithPoolSize(4))
//	if err != nil {
//		return err
//	}
//	defer runner.Release()
//	outcomes, err := runner.Run(ctx, requests)
package batch
