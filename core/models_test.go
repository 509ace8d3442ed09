package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantSame bool
	}{
		{
			name:     "same content produces same ID",
			content:  "CT guided procedure",
			wantSame: true,
		},
		{
			name:     "empty string",
			content:  "",
			wantSame: true,
		},
		{
			name:     "template name with slash",
			content:  "Procedure/CT guided [procedure] of [body structure]",
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if tt.wantSame && id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("template one")
	id2 := IDFromContent("template two")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestCardinality(t *testing.T) {
	tests := []struct {
		name          string
		card          Cardinality
		wantSet       bool
		wantMandatory bool
	}{
		{name: "zero value", card: Cardinality{}, wantSet: false, wantMandatory: false},
		{name: "exactly one", card: Exactly(1), wantSet: true, wantMandatory: true},
		{name: "optional", card: Between(0, 1), wantSet: true, wantMandatory: false},
		{name: "one to many", card: Between(1, Many), wantSet: true, wantMandatory: true},
		{name: "max only", card: Cardinality{Max: 2, HasMax: true}, wantSet: true, wantMandatory: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.card.IsSet(); got != tt.wantSet {
				t.Errorf("IsSet() = %v, want %v", got, tt.wantSet)
			}
			if got := tt.card.Mandatory(); got != tt.wantMandatory {
				t.Errorf("Mandatory() = %v, want %v", got, tt.wantMandatory)
			}
		})
	}
}

func TestLogicalTemplate_AllAttributes(t *testing.T) {
	lt := &LogicalTemplate{
		FocusConcepts:       []string{"71388002"},
		UngroupedAttributes: []Attribute{{Type: "a"}},
		AttributeGroups: []AttributeGroup{
			{Attributes: []Attribute{{Type: "b"}, {Type: "c"}}},
			{Attributes: []Attribute{{Type: "d"}}},
		},
	}

	all := lt.AllAttributes()
	want := []string{"a", "b", "c", "d"}
	if len(all) != len(want) {
		t.Fatalf("AllAttributes() returned %d attributes, want %d", len(all), len(want))
	}
	for i, attr := range all {
		if attr.Type != want[i] {
			t.Errorf("AllAttributes()[%d] = %s, want %s", i, attr.Type, want[i])
		}
	}
}

func TestConceptTemplate_TermTemplates(t *testing.T) {
	tmpl := &ConceptTemplate{
		Descriptions: []DescriptionTemplate{
			{Type: DescriptionTypeFSN, TermTemplate: "CT guided $procedure$ of $site$ (procedure)"},
			{Type: DescriptionTypeSynonym, TermTemplate: "CT guided $procedure$ of $site$"},
			{Type: DescriptionTypeSynonym, TermTemplate: ""},
		},
	}

	if got := tmpl.TermTemplates(DescriptionTypeFSN); len(got) != 1 {
		t.Errorf("TermTemplates(FSN) returned %d, want 1", len(got))
	}
	if got := tmpl.TermTemplates(DescriptionTypeSynonym); len(got) != 1 {
		t.Errorf("TermTemplates(SYNONYM) returned %d, want 1", len(got))
	}
	if got := tmpl.TermTemplates(DescriptionTypeTextDefinition); got != nil {
		t.Errorf("TermTemplates(TEXT_DEFINITION) = %v, want nil", got)
	}
}

func TestConcept_ActiveTerms(t *testing.T) {
	c := &Concept{
		ConceptID: "1",
		Descriptions: []Description{
			{Term: "Current FSN (procedure)", Type: DescriptionTypeFSN, Active: true},
			{Term: "Old FSN (procedure)", Type: DescriptionTypeFSN, Active: false},
			{Term: "Synonym", Type: DescriptionTypeSynonym, Active: true},
		},
	}

	fsn := c.ActiveTerms(DescriptionTypeFSN)
	if len(fsn) != 1 || fsn[0] != "Current FSN (procedure)" {
		t.Errorf("ActiveTerms(FSN) = %v", fsn)
	}
	syn := c.ActiveTerms(DescriptionTypeSynonym)
	if len(syn) != 1 || syn[0] != "Synonym" {
		t.Errorf("ActiveTerms(SYNONYM) = %v", syn)
	}
}
