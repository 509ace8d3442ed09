package search

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"
	"github.com/poiesic/conformit/core"
	"github.com/poiesic/conformit/ecl"
	"github.com/poiesic/conformit/lexical"
	"github.com/poiesic/conformit/logical"
	"github.com/poiesic/conformit/terminology"
	"github.com/poiesic/conformit/verify"
)

// DefaultMaxResults caps the number of concept ids a single query may return.
const DefaultMaxResults = 200000

// TemplateLoader loads concept templates by name.
// Implementations return an error wrapping core.ErrNotFound for unknown names.
type TemplateLoader interface {
	LoadTemplate(ctx context.Context, name string) (*core.ConceptTemplate, error)
}

// Request describes a template search.
type Request struct {
	TemplateName string `json:"templateName"`
	Branch       string `json:"branch"`
	// LogicalMatch selects conforming (true) or non-conforming (false) concepts. Required.
	LogicalMatch *bool `json:"logicalMatch"`
	// LexicalMatch, when set, keeps only concepts whose terms do (true) or do not (false)
	// fit the template's term templates. Requires LogicalMatch to be true.
	LexicalMatch *bool `json:"lexicalMatch,omitempty"`
	Stated       bool  `json:"stated"`
}

// Result is the outcome of a template search.
type Result struct {
	SearchID   string   `json:"searchId"`
	ConceptIDs []string `json:"conceptIds"`
	// Truncated reports that the query matched more concepts than MaxResults,
	// so ConceptIDs may be incomplete.
	Truncated bool   `json:"truncated"`
	Total     int    `json:"total"`
	ECL       string `json:"ecl"`
}

// Searcher finds concepts matching concept templates.
type Searcher struct {
	templates  TemplateLoader
	client     terminology.Client
	maxResults int
	isA        string
	monitor    SearchMonitor
	logger     *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithMaxResults caps the number of concept ids a query may return.
// Default is DefaultMaxResults.
func WithMaxResults(n int) Option {
	return func(s *Searcher) error {
		if n <= 0 {
			return fmt.Errorf("%w: max results must be positive, got %d", core.ErrInvalidArgument, n)
		}
		s.maxResults = n
		return nil
	}
}

// WithIsAType sets the IS-A relationship type id.
// Default is core.IsA.
func WithIsAType(id string) Option {
	return func(s *Searcher) error {
		if id == "" {
			return fmt.Errorf("%w: IS-A type cannot be empty", core.ErrInvalidArgument)
		}
		s.isA = id
		return nil
	}
}

// WithMonitor sets the monitor observing every search.
// Default is a no-op monitor.
func WithMonitor(monitor SearchMonitor) Option {
	return func(s *Searcher) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		s.monitor = monitor
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(templates TemplateLoader, client terminology.Client, opts ...Option) (*Searcher, error) {
	if templates == nil {
		return nil, ErrTemplateLoaderRequired
	}
	if client == nil {
		return nil, ErrClientRequired
	}

	s := &Searcher{
		templates:  templates,
		client:     client,
		maxResults: DefaultMaxResults,
		isA:        core.IsA,
		monitor:    &noopMonitor{},
		logger:     slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search runs a template search using the searcher's monitor.
func (s *Searcher) Search(ctx context.Context, req Request) (*Result, error) {
	return s.SearchWithMonitor(ctx, req, s.monitor)
}

// SearchWithMonitor runs a template search reporting each stage to monitor.
// Concept ids in the result are sorted.
func (s *Searcher) SearchWithMonitor(ctx context.Context, req Request, monitor SearchMonitor) (*Result, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	logger := s.logger.With("searchID", id, "template", req.TemplateName, "branch", req.Branch)
	logger.Info("searching concepts by template",
		"logicalMatch", *req.LogicalMatch, "lexicalMatch", boolString(req.LexicalMatch), "stated", req.Stated)

	monitor.Start(id, req)
	result, err := s.search(ctx, id, req, monitor, logger)
	monitor.Finish(id, result, err)
	if err != nil {
		logger.Error("template search failed", "err", err)
		return nil, err
	}
	return result, nil
}

func (s *Searcher) search(ctx context.Context, id string, req Request, monitor SearchMonitor, logger *slog.Logger) (*Result, error) {
	serviceErr := func(stage string, err error) error {
		return fmt.Errorf("%w: %s for template %q on branch %q: %w", ErrService, stage, req.TemplateName, req.Branch, err)
	}

	template, err := s.templates.LoadTemplate(ctx, req.TemplateName)
	if err != nil {
		return nil, serviceErr("loading template", err)
	}
	lt, err := logical.Parse(template.LogicalTemplate)
	if err != nil {
		return nil, serviceErr("parsing logical template", err)
	}

	// Lexical matching only applies to logically conforming concepts.
	match := *req.LogicalMatch || req.LexicalMatch != nil

	query, err := s.compile(lt, match)
	if err != nil {
		return nil, serviceErr("compiling query", err)
	}
	logger.Debug("compiled query", "ecl", query)
	monitor.AfterCompile(id, query)

	qr, err := s.client.EvaluateQuery(ctx, req.Branch, query, s.maxResults, req.Stated)
	if err != nil {
		return nil, serviceErr("evaluating query", err)
	}
	monitor.AfterQuery(id, qr.ConceptIDs, qr.Total)

	result := &Result{
		SearchID:  id,
		Truncated: qr.Truncated(),
		Total:     qr.Total,
		ECL:       query,
	}
	if result.Truncated {
		logger.Warn("query results truncated", "returned", len(qr.ConceptIDs), "total", qr.Total)
	}
	if len(qr.ConceptIDs) == 0 {
		logger.Info("no concepts matched query")
		result.ConceptIDs = []string{}
		return result, nil
	}

	concepts, err := s.client.FetchConcepts(ctx, req.Branch, qr.ConceptIDs)
	if err != nil {
		return nil, serviceErr("fetching concepts", err)
	}
	monitor.AfterFetch(id, concepts)

	rules := verify.NewRules(lt.AttributeGroups, lt.UngroupedAttributes, s.isA)
	removed := rules.Check(concepts, req.Stated).NonConforming()
	monitor.AfterVerify(id, removed)
	if len(removed) > 0 {
		logger.Info("removed concepts not matching exactly", "count", len(removed))
	}

	kept := make(map[string]struct{}, len(qr.ConceptIDs))
	for _, cid := range qr.ConceptIDs {
		if _, ok := removed[cid]; !ok {
			kept[cid] = struct{}{}
		}
	}
	logger.Info("logical search finished", "results", len(kept))
	if len(kept) == 0 {
		result.ConceptIDs = []string{}
		return result, nil
	}

	if req.LexicalMatch != nil {
		ids, err := s.lexicalFilter(id, template, concepts, kept, *req.LexicalMatch, monitor)
		if err != nil {
			return nil, serviceErr("matching terms", err)
		}
		logger.Info("lexical search finished", "logicalResults", len(kept), "lexicalResults", len(ids))
		result.ConceptIDs = ids
		return result, nil
	}

	result.ConceptIDs = sortedKeys(kept)
	return result, nil
}

// compile builds the combined query of the template's domain and logical definition.
func (s *Searcher) compile(lt *core.LogicalTemplate, match bool) (string, error) {
	domain, err := ecl.CompileDomainOnly(lt.FocusConcepts)
	if err != nil {
		return "", err
	}
	full, err := ecl.CompileTemplate(lt)
	if err != nil {
		return "", err
	}
	return ecl.Combine(domain, full, match), nil
}

// lexicalFilter keeps the concepts among kept whose term match equals want.
func (s *Searcher) lexicalFilter(id string, template *core.ConceptTemplate, concepts []core.Concept, kept map[string]struct{}, want bool, monitor SearchMonitor) ([]string, error) {
	matcher, err := lexical.NewMatcher(template)
	if err != nil {
		return nil, err
	}

	candidates := make([]core.Concept, 0, len(kept))
	for _, c := range concepts {
		if _, ok := kept[c.ConceptID]; ok {
			candidates = append(candidates, c)
		}
	}
	matched, unmatched := matcher.Partition(candidates)
	monitor.AfterLexical(id, matched, unmatched)

	ids := unmatched
	if want {
		ids = matched
	}
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out), nil
}

func validate(req Request) error {
	if req.LogicalMatch == nil {
		return ErrLogicalMatchRequired
	}
	if req.LexicalMatch != nil && !*req.LogicalMatch {
		return ErrLexicalRequiresLogical
	}
	return nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func boolString(b *bool) string {
	if b == nil {
		return "unset"
	}
	return fmt.Sprint(*b)
}
