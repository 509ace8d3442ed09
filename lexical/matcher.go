package lexical

import (
	"fmt"

	"github.com/poiesic/conformit/core"
)

// Matcher classifies concepts by their description terms.
type Matcher struct {
	FSN     []*Pattern
	Synonym []*Pattern
}

// NewMatcher compiles the FSN and synonym term templates of a concept template.
func NewMatcher(template *core.ConceptTemplate) (*Matcher, error) {
	fsn, err := CompilePatterns(TermTemplates(template, core.DescriptionTypeFSN))
	if err != nil {
		return nil, fmt.Errorf("fsn patterns: %w", err)
	}
	syn, err := CompilePatterns(TermTemplates(template, core.DescriptionTypeSynonym))
	if err != nil {
		return nil, fmt.Errorf("synonym patterns: %w", err)
	}
	return &Matcher{FSN: fsn, Synonym: syn}, nil
}

// Matches reports whether every FSN pattern matches some active FSN and every
// synonym pattern matches some active synonym. FSN patterns are tried first
// and the first failing pattern decides. With no patterns of a kind, that
// kind places no constraint.
func (m *Matcher) Matches(c *core.Concept) bool {
	fsns := c.ActiveTerms(core.DescriptionTypeFSN)
	for _, p := range m.FSN {
		if !p.Matches(fsns) {
			return false
		}
	}
	synonyms := c.ActiveTerms(core.DescriptionTypeSynonym)
	for _, p := range m.Synonym {
		if !p.Matches(synonyms) {
			return false
		}
	}
	return true
}

// Partition splits concept ids into those whose terms match and those that do not.
func (m *Matcher) Partition(concepts []core.Concept) (matched, unmatched []string) {
	for i := range concepts {
		if m.Matches(&concepts[i]) {
			matched = append(matched, concepts[i].ConceptID)
		} else {
			unmatched = append(unmatched, concepts[i].ConceptID)
		}
	}
	return matched, unmatched
}

// Select returns the ids of concepts whose classification equals want.
func (m *Matcher) Select(concepts []core.Concept, want bool) []string {
	matched, unmatched := m.Partition(concepts)
	if want {
		return matched
	}
	return unmatched
}
