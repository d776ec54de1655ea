package llmrelay

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// GenerateAll runs one Generate per request concurrently against the same
// provider and returns responses in request order.
//
// All requests share the supplied token: cancelling it aborts every
// in-flight request. The first error cancels the remaining requests and is
// returned. A nil token disables shared cancellation but requests still
// honour ctx.
func GenerateAll(ctx context.Context, p ChatProvider, token *CancellationToken, reqs []*ChatRequest) ([]*ChatResponse, error) {
	if err := token.Err(); err != nil {
		return nil, err
	}

	responses := make([]*ChatResponse, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		g.Go(func() error {
			r := *req
			r.Cancel = token
			resp, err := p.Generate(gctx, &r)
			if err != nil {
				return err
			}
			responses[i] = resp
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return responses, nil
}
