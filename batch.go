package mailcheck

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// VerifyMany verifies emails in consecutive chunks of concurrency
// addresses. The members of a chunk run in parallel and the next chunk
// starts only after the whole chunk has finished, so at most concurrency
// verifications are in flight. A concurrency <= 0 means 5.
//
// results[i] always belongs to emails[i], duplicates included. If a
// verification fails with an internal error, later chunks are not started
// and the results gathered so far are returned along with the error.
func (v *Verifier) VerifyMany(ctx context.Context, emails []string, concurrency int, opts ...Options) ([]Result, error) {
	if v.err != nil {
		return nil, v.err
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	results := make([]Result, len(emails))
	for start := 0; start < len(emails); start += concurrency {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		end := min(start+concurrency, len(emails))
		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			g.Go(func() error {
				res, err := v.Verify(gctx, emails[i], opts...)
				if err != nil {
					return fmt.Errorf("verifying %q: %w", emails[i], err)
				}
				results[i] = res
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return results, err
		}
	}
	return results, nil
}
