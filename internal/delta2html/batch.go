package delta2html

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// batchItemError ошибка документа пакета с его индексом.
type batchItemError struct {
	index int
	err   error
}

func (e *batchItemError) Error() string {
	return fmt.Sprintf("document %d: %s", e.index, e.err)
}

func (e *batchItemError) Unwrap() error {
	return e.err
}

// runBatch выполняет fn для каждого элемента параллельно, сохраняя порядок результатов.
// Первая ошибка отменяет контекст остальных вызовов.
func runBatch[In, Out any](ctx context.Context, items []In, fn func(ctx context.Context, item In) (Out, error)) ([]Out, error) {
	results := make([]Out, len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := fn(ctx, item)
			if err != nil {
				return &batchItemError{index: i, err: err}
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
