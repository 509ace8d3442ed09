package terminology

import (
	"context"

	"github.com/poiesic/conformit/core"
)

// QueryResult is the outcome of evaluating a query.
// Total is the number of matching concepts reported by the server, which may
// exceed len(ConceptIDs) when the result was capped.
type QueryResult struct {
	ConceptIDs []string
	Total      int
}

// Truncated reports whether the server matched more concepts than were returned.
func (r *QueryResult) Truncated() bool {
	return r.Total > len(r.ConceptIDs)
}

// QueryEvaluator evaluates expression constraint queries on a branch.
// Implementations must be safe for concurrent use.
type QueryEvaluator interface {
	// EvaluateQuery returns at most maxResults active concept ids matching ecl.
	// When stated is true the query is evaluated against the stated form.
	EvaluateQuery(ctx context.Context, branch, ecl string, maxResults int, stated bool) (*QueryResult, error)
}

// ConceptFetcher fetches full concept details.
// Implementations must be safe for concurrent use.
type ConceptFetcher interface {
	// FetchConcepts returns the details of the given concepts: descriptions,
	// class axioms and relationships. Unknown ids are omitted.
	FetchConcepts(ctx context.Context, branch string, ids []string) ([]core.Concept, error)
}

// Client is a terminology server client.
type Client interface {
	QueryEvaluator
	ConceptFetcher
}
