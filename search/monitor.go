package search

import (
	"github.com/poiesic/conformit/core"
	"github.com/poiesic/conformit/verify"
)

// SearchMonitor provides hooks to observe the search process.
// Every hook receives the id of the search it reports on, so a single
// monitor can observe concurrent searches.
type SearchMonitor interface {
	Start(searchID string, req Request)
	AfterCompile(searchID string, ecl string)
	AfterQuery(searchID string, conceptIDs []string, total int)
	AfterFetch(searchID string, concepts []core.Concept)
	AfterVerify(searchID string, removed verify.Set)
	AfterLexical(searchID string, matched, unmatched []string)
	Finish(searchID string, result *Result, err error)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ Request) {}
func (n *noopMonitor) AfterCompile(_ string, _ string) {}
func (n *noopMonitor) AfterQuery(_ string, _ []string, _ int) {}
func (n *noopMonitor) AfterFetch(_ string, _ []core.Concept) {}
func (n *noopMonitor) AfterVerify(_ string, _ verify.Set) {}
func (n *noopMonitor) AfterLexical(_ string, _, _ []string) {}
func (n *noopMonitor) Finish(_ string, _ *Result, _ error) {}
