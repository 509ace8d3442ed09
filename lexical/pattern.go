package lexical

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/poiesic/conformit/core"
)

// slotCapture is the generic accepting token substituted for each $name$ placeholder.
const slotCapture = "(.*)"

// Pattern is a compiled term template.
type Pattern struct {
	template string
	re       *regexp.Regexp
	slots    []string
}

// Compile compiles a term template. Each $name$ placeholder becomes a
// generic capture, literal text is matched verbatim, and the pattern is
// anchored so only whole terms match. An unbalanced '$' is a parse error.
func Compile(termTemplate string) (*Pattern, error) {
	parts := strings.Split(termTemplate, "$")
	if len(parts)%2 == 0 {
		return nil, fmt.Errorf("%w: unbalanced '$' in term template %q", core.ErrParse, termTemplate)
	}

	var sb strings.Builder
	sb.WriteByte('^')
	var slots []string
	for i, part := range parts {
		if i%2 == 0 {
			sb.WriteString(regexp.QuoteMeta(part))
			continue
		}
		if part == "" {
			return nil, fmt.Errorf("%w: empty slot name in term template %q", core.ErrParse, termTemplate)
		}
		slots = append(slots, part)
		sb.WriteString(slotCapture)
	}
	sb.WriteByte('$')

	re, err := regexp.Compile(sb.String())
	if err != nil {
		return nil, fmt.Errorf("%w: term template %q: %w", core.ErrParse, termTemplate, err)
	}
	return &Pattern{template: termTemplate, re: re, slots: slots}, nil
}

// CompilePatterns compiles each term template in order.
func CompilePatterns(termTemplates []string) ([]*Pattern, error) {
	patterns := make([]*Pattern, 0, len(termTemplates))
	for _, tt := range termTemplates {
		p, err := Compile(tt)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

// MustCompile is like Compile but panics if the template cannot be compiled.
func MustCompile(termTemplate string) *Pattern {
	p, err := Compile(termTemplate)
	if err != nil {
		panic(err)
	}
	return p
}

// Slots returns the slot names referenced by the template, in order of appearance.
func (p *Pattern) Slots() []string {
	return p.slots
}

// String returns the source term template.
func (p *Pattern) String() string {
	return p.template
}

// Matches reports whether at least one term fully matches the pattern.
func (p *Pattern) Matches(terms []string) bool {
	for _, term := range terms {
		if p.re.MatchString(term) {
			return true
		}
	}
	return false
}

// Extract returns the slot values captured from term, or nil if term does not match.
func (p *Pattern) Extract(term string) map[string]string {
	m := p.re.FindStringSubmatch(term)
	if m == nil {
		return nil
	}
	values := make(map[string]string, len(p.slots))
	for i, name := range p.slots {
		values[name] = m[i+1]
	}
	return values
}

// SlotNames scans a term template for $name$ placeholders without compiling it.
func SlotNames(termTemplate string) ([]string, error) {
	p, err := Compile(termTemplate)
	if err != nil {
		return nil, err
	}
	return p.Slots(), nil
}

// TermTemplates returns the term templates of a template's descriptions of the given type.
func TermTemplates(template *core.ConceptTemplate, descType core.DescriptionType) []string {
	if template == nil {
		return nil
	}
	return template.TermTemplates(descType)
}
