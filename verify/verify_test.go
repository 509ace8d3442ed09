package verify

import (
	"testing"

	"github.com/poiesic/conformit/core"
	"github.com/poiesic/conformit/internal/fixtures"
	"github.com/poiesic/conformit/logical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ctGuidedTemplate(t *testing.T) *core.LogicalTemplate {
	t.Helper()
	lt, err := logical.Parse(fixtures.CTGuidedProcedureLogical)
	require.NoError(t, err)
	return lt
}

func TestNewRules(t *testing.T) {
	lt := ctGuidedTemplate(t)
	rules := NewRules(lt.AttributeGroups, lt.UngroupedAttributes, core.IsA)

	require.Len(t, rules.Allowed, 3)
	assert.Equal(t, []string{fixtures.Method, fixtures.HasIntent, fixtures.ProcedureSiteDirect}, rules.Allowed[0].Sorted())
	assert.Equal(t, []string{core.IsA}, rules.Allowed[2].Sorted())

	require.Len(t, rules.Mandatory, 3)
	assert.Equal(t, []string{fixtures.Method, fixtures.ProcedureSiteDirect}, rules.Mandatory[0].Sorted())
	assert.Equal(t, []string{core.IsA}, rules.Mandatory[2].Sorted())
}

func TestNewRules_OptionalGroupHasNoMandatorySet(t *testing.T) {
	groups := []core.AttributeGroup{
		{Cardinality: core.Between(0, 1), Attributes: []core.Attribute{{Type: "a", Cardinality: core.Exactly(1)}}},
		{Attributes: []core.Attribute{{Type: "b", Cardinality: core.Exactly(1)}}},
	}
	rules := NewRules(groups, nil, core.IsA)

	assert.Len(t, rules.Allowed, 3)
	// Only the ungrouped set is mandatory.
	require.Len(t, rules.Mandatory, 1)
	assert.Equal(t, []string{core.IsA}, rules.Mandatory[0].Sorted())
}

func TestCheck_CTGuidedProcedure(t *testing.T) {
	lt := ctGuidedTemplate(t)

	tests := []struct {
		name        string
		concept     core.Concept
		stated      bool
		wantMissing bool
		wantExtra   bool
	}{
		{
			name:    "stated conforming concept",
			concept: fixtures.CTGuidedProcedureConcept("1", true),
			stated:  true,
		},
		{
			name:    "inferred conforming concept",
			concept: fixtures.CTGuidedProcedureConcept("1", true),
			stated:  false,
		},
		{
			name:    "optional attribute omitted",
			concept: fixtures.CTGuidedProcedureConcept("1", false),
			stated:  true,
		},
		{
			name:      "extra attribute in stated axiom",
			concept:   fixtures.WithStatedRelationship(fixtures.CTGuidedProcedureConcept("1", true), 2, fixtures.CausativeAgent, "105590001"),
			stated:    true,
			wantExtra: true,
		},
		{
			name:    "extra stated attribute is ignored in inferred mode",
			concept: fixtures.WithStatedRelationship(fixtures.CTGuidedProcedureConcept("1", true), 2, fixtures.CausativeAgent, "105590001"),
			stated:  false,
		},
		{
			name:        "no relationships at all",
			concept:     core.Concept{ConceptID: "1", Active: true},
			stated:      true,
			wantMissing: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := NewRules(lt.AttributeGroups, lt.UngroupedAttributes, core.IsA)
			res := rules.Check([]core.Concept{tt.concept}, tt.stated)

			_, missing := res.Missing["1"]
			_, extra := res.Extra["1"]
			assert.Equal(t, tt.wantMissing, missing, "missing")
			assert.Equal(t, tt.wantExtra, extra, "extra")

			_, nonConforming := res.NonConforming()["1"]
			assert.Equal(t, tt.wantMissing || tt.wantExtra, nonConforming)
		})
	}
}

func TestCheck_MissingMandatory(t *testing.T) {
	lt := ctGuidedTemplate(t)
	c := fixtures.CTGuidedProcedureConcept("2", false)

	// Drop the procedure site from group 2 of the stated axiom.
	var kept []core.Relationship
	for _, r := range c.ClassAxioms[0].Relationships {
		if r.GroupID == 2 && r.TypeID == fixtures.ProcedureSiteDirect {
			continue
		}
		kept = append(kept, r)
	}
	c.ClassAxioms = []core.Axiom{{Active: true, Relationships: kept}}

	res := FindNonConforming([]core.Concept{c}, lt.AttributeGroups, lt.UngroupedAttributes, true)
	// Group 1 still realizes {method, site}, so every mandatory set is found.
	assert.Empty(t, res)

	// Removing the site everywhere leaves the mandatory set unrealized.
	var noSite []core.Relationship
	for _, r := range kept {
		if r.TypeID != fixtures.ProcedureSiteDirect {
			noSite = append(noSite, r)
		}
	}
	c.ClassAxioms = []core.Axiom{{Active: true, Relationships: noSite}}
	rules := NewRules(lt.AttributeGroups, lt.UngroupedAttributes, core.IsA)
	check := rules.Check([]core.Concept{c}, true)
	assert.Contains(t, check.Missing, "2")
	assert.NotContains(t, check.Extra, "2")
}

func TestGroups(t *testing.T) {
	c := &core.Concept{
		ConceptID: "1",
		ClassAxioms: []core.Axiom{
			{Active: true, Relationships: []core.Relationship{{GroupID: 0, TypeID: core.IsA}, {GroupID: 3, TypeID: "x"}}},
			{Active: false, Relationships: []core.Relationship{{GroupID: 1, TypeID: "inactive"}}},
		},
		Relationships: []core.Relationship{
			{Active: true, CharacteristicType: core.InferredRelationship, GroupID: 0, TypeID: core.IsA},
			{Active: false, CharacteristicType: core.InferredRelationship, GroupID: 1, TypeID: "retired"},
			{Active: true, CharacteristicType: "ADDITIONAL_RELATIONSHIP", GroupID: 0, TypeID: "additional"},
		},
	}

	t.Run("stated uses active axioms", func(t *testing.T) {
		groups := Groups(c, true)
		require.Len(t, groups, 2)
		assert.Equal(t, 0, groups[0].GroupID)
		assert.Equal(t, 3, groups[1].GroupID)
		assert.Equal(t, []string{"x"}, groups[1].Types.Sorted())
	})

	t.Run("inferred uses active inferred relationships", func(t *testing.T) {
		groups := Groups(c, false)
		require.Len(t, groups, 1)
		assert.Equal(t, []string{core.IsA}, groups[0].Types.Sorted())
	})
}

func TestFindNonConforming_Multiple(t *testing.T) {
	lt := ctGuidedTemplate(t)
	concepts := []core.Concept{
		fixtures.CTGuidedProcedureConcept("ok", true),
		fixtures.WithStatedRelationship(fixtures.CTGuidedProcedureConcept("bad", true), 0, fixtures.CausativeAgent, "105590001"),
	}

	res := FindNonConforming(concepts, lt.AttributeGroups, lt.UngroupedAttributes, true)
	assert.Equal(t, []string{"bad"}, res.Sorted())
}
