// Package mock provides a test double for terminology.Client.
//
// Behavior can be injected through the function fields; call counts and
// recorded queries support assertions on what the code under test asked for.
//
// Example:
//
//	client := mock.NewMockClient(concept)
//	client.EvaluateQueryFunc = func(ctx context.Context, branch, ecl string, max int, stated bool) (*terminology.QueryResult, error) {
//		return &terminology.QueryResult{}, nil
//	}
//	// ... exercise code ...
//	assert.Equal(t, 0, client.FetchCount())
package mock
