package ecl

import (
	"fmt"
	"sort"
	"strings"

	"github.com/poiesic/conformit/core"
)

// Compile renders a logical template as a refinement query over the
// descendants-or-self of the primary focus concept.
//
// Ungrouped attributes come first, then each group in order. Slot references
// are resolved against every attribute that declares a named slot.
func Compile(focus []string, groups []core.AttributeGroup, ungrouped []core.Attribute) (string, error) {
	if len(focus) == 0 || focus[0] == "" {
		return "", fmt.Errorf("%w: %w", ErrInvalidTemplate, core.ErrNoFocusConcept)
	}

	b := NewBuilder(focus[0])
	for _, attr := range ungrouped {
		b.AppendTerm(attr)
	}
	for _, group := range groups {
		b.AppendGroup(group)
	}

	for name, value := range SlotBindings(groups, ungrouped) {
		b.BindSlot(name, value)
	}

	query, err := b.Build()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}
	return query, nil
}

// CompileTemplate is Compile over a parsed logical template.
func CompileTemplate(t *core.LogicalTemplate) (string, error) {
	if t == nil {
		return "", fmt.Errorf("%w: logical template is nil", ErrInvalidTemplate)
	}
	return Compile(t.FocusConcepts, t.AttributeGroups, t.UngroupedAttributes)
}

// CompileDomainOnly renders the unrefined domain query for the primary focus concept.
func CompileDomainOnly(focus []string) (string, error) {
	return Compile(focus, nil, nil)
}

// Combine joins a domain query and a logical query: conjunction when match
// is true, difference otherwise. Both operands are parenthesized.
func Combine(domain, logical string, match bool) string {
	op := opAnd
	if !match {
		op = opMinus
	}
	return "(" + domain + ") " + op + " (" + logical + ")"
}

// Queries holds the queries derived from one logical template.
type Queries struct {
	Domain   string `json:"domain"`
	Logical  string `json:"logical"`
	Match    string `json:"match"`
	Mismatch string `json:"mismatch"`
}

// CompileQueries renders the domain, logical, match and mismatch queries for t.
func CompileQueries(t *core.LogicalTemplate) (*Queries, error) {
	logical, err := CompileTemplate(t)
	if err != nil {
		return nil, err
	}
	domain, err := CompileDomainOnly(t.FocusConcepts)
	if err != nil {
		return nil, err
	}
	return &Queries{
		Domain:   domain,
		Logical:  logical,
		Match:    Combine(domain, logical, true),
		Mismatch: Combine(domain, logical, false),
	}, nil
}

// SlotBindings maps every declared slot name to its attribute's literal value,
// or to its allowable range when no literal value is present. Slots with
// neither are omitted.
func SlotBindings(groups []core.AttributeGroup, ungrouped []core.Attribute) map[string]string {
	slots := make(map[string]string)
	bind := func(attr core.Attribute) {
		if attr.ValueSlotName == "" {
			return
		}
		switch {
		case attr.Value != "":
			slots[attr.ValueSlotName] = attr.Value
		case attr.ValueAllowableRangeECL != "":
			slots[attr.ValueSlotName] = attr.ValueAllowableRangeECL
		}
	}
	for _, attr := range ungrouped {
		bind(attr)
	}
	for _, g := range groups {
		for _, attr := range g.Attributes {
			bind(attr)
		}
	}
	return slots
}

// SubstituteSlots replaces each exact "=name" token in query with "=value".
// A token only matches when the name is not followed by another name
// character, so "=site" never rewrites "=siteOfAction". Longer names are
// applied first. Substituting twice with the same map yields the same string.
func SubstituteSlots(query string, slots map[string]string) string {
	if len(slots) == 0 {
		return query
	}

	names := make([]string, 0, len(slots))
	for name := range slots {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})

	for _, name := range names {
		query = replaceToken(query, "="+name, "="+slots[name])
	}
	return query
}

func replaceToken(s, token, replacement string) string {
	var sb strings.Builder
	for {
		i := strings.Index(s, token)
		if i < 0 {
			sb.WriteString(s)
			return sb.String()
		}
		end := i + len(token)
		if end < len(s) && isNameByte(s[end]) {
			sb.WriteString(s[:end])
			s = s[end:]
			continue
		}
		sb.WriteString(s[:i])
		sb.WriteString(replacement)
		s = s[end:]
	}
}

func isNameByte(c byte) bool {
	return c == '_' || c == '-' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
