// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package mock

import (
	"context"
	"sync"

	"github.com/poiesic/conformit/core"
	"github.com/poiesic/conformit/terminology"
)

// MockClient is a test double for terminology.Client.
// By default EvaluateQuery returns the ids of every stored concept and
// FetchConcepts returns the stored concepts for the requested ids.
type MockClient struct {
	// EvaluateQueryFunc is called by EvaluateQuery if set.
	EvaluateQueryFunc func(ctx context.Context, branch, ecl string, maxResults int, stated bool) (*terminology.QueryResult, error)

	// FetchConceptsFunc is called by FetchConcepts if set.
	FetchConceptsFunc func(ctx context.Context, branch string, ids []string) ([]core.Concept, error)

	mu         sync.Mutex
	concepts   []core.Concept
	queries    []string
	queryCount int
	fetchCount int
}

var _ terminology.Client = (*MockClient)(nil)

// NewMockClient creates a mock client serving the given concepts.
func NewMockClient(concepts ...core.Concept) *MockClient {
	return &MockClient{concepts: concepts}
}

// EvaluateQuery records the query and returns the stored concept ids, capped at maxResults.
func (m *MockClient) EvaluateQuery(ctx context.Context, branch, ecl string, maxResults int, stated bool) (*terminology.QueryResult, error) {
	m.mu.Lock()
	m.queryCount++
	m.queries = append(m.queries, ecl)
	fn := m.EvaluateQueryFunc
	concepts := m.concepts
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, branch, ecl, maxResults, stated)
	}

	res := &terminology.QueryResult{Total: len(concepts)}
	for _, c := range concepts {
		if len(res.ConceptIDs) >= maxResults {
			break
		}
		res.ConceptIDs = append(res.ConceptIDs, c.ConceptID)
	}
	return res, nil
}

// FetchConcepts returns the stored concepts whose ids were requested, in request order.
func (m *MockClient) FetchConcepts(ctx context.Context, branch string, ids []string) ([]core.Concept, error) {
	m.mu.Lock()
	m.fetchCount++
	fn := m.FetchConceptsFunc
	concepts := m.concepts
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, branch, ids)
	}

	byID := make(map[string]core.Concept, len(concepts))
	for _, c := range concepts {
		byID[c.ConceptID] = c
	}
	out := make([]core.Concept, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// SetConcepts replaces the stored concepts.
func (m *MockClient) SetConcepts(concepts ...core.Concept) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.concepts = concepts
}

// QueryCount returns the number of EvaluateQuery calls.
func (m *MockClient) QueryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queryCount
}

// FetchCount returns the number of FetchConcepts calls.
func (m *MockClient) FetchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetchCount
}

// Queries returns the queries passed to EvaluateQuery, in call order.
func (m *MockClient) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

// Reset clears call counts, recorded queries and injected behavior.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryCount = 0
	m.fetchCount = 0
	m.queries = nil
	m.EvaluateQueryFunc = nil
	m.FetchConceptsFunc = nil
}
