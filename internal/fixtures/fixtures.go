// Package fixtures provides templates and concepts shared by tests.
package fixtures

import "github.com/poiesic/conformit/core"

// CTGuidedProcedureName is the name of the CT guided procedure template.
const CTGuidedProcedureName = "CT guided [procedure] of [body structure]"

// CTGuidedProcedureLogical is the logical template of CTGuidedProcedureName.
const CTGuidedProcedureLogical = "71388002 |Procedure|:\n" +
	"\t[[~1..1]] {\n" +
	"\t\t[[~1..1]] 260686004 |Method| = 312251004 |Computed tomography imaging action|,\n" +
	"\t\t[[~1..1]] 405813007 |Procedure site - Direct| = [[+id(<< 442083009 |Anatomical or acquired body structure|) @procSite]],\n" +
	"\t\t[[~0..1]] 363703001 |Has intent| = 429892002 |Guidance intent|\n" +
	"\t},\n" +
	"\t[[~1..1]] {\n" +
	"\t\t[[~1..1]] 260686004 |Method| = [[+id(<< 129264002 |Action|) @action]],\n" +
	"\t\t[[~1..1]] 405813007 |Procedure site - Direct| = [[+id $procSite]]\n" +
	"\t}"

// Attribute type ids used by the CT guided procedure fixtures.
const (
	Method              = "260686004"
	ProcedureSiteDirect = "405813007"
	HasIntent           = "363703001"
	CausativeAgent      = "246075003"
)

// CTGuidedProcedureTemplate returns the stored form of the CT guided procedure template.
func CTGuidedProcedureTemplate() *core.ConceptTemplate {
	return &core.ConceptTemplate{
		Name:            CTGuidedProcedureName,
		Domain:          "<<71388002 |Procedure|",
		Version:         1,
		LogicalTemplate: CTGuidedProcedureLogical,
		LexicalTemplates: []core.LexicalTemplate{
			{Name: "procedure", DisplayName: "procedure", TakeFSNFromSlot: "action", RemoveParts: []string{"action"}},
			{Name: "bodyStructure", DisplayName: "body structure", TakeFSNFromSlot: "procSite", RemoveParts: []string{"structure"}},
		},
		Descriptions: []core.DescriptionTemplate{
			{Type: core.DescriptionTypeFSN, TermTemplate: "Computed tomography guided $procedure$ of $bodyStructure$ (procedure)"},
			{Type: core.DescriptionTypeSynonym, TermTemplate: "CT guided $procedure$ of $bodyStructure$"},
		},
	}
}

// CTGuidedProcedureConcept returns a concept conforming to the CT guided
// procedure template, with both stated axioms and inferred relationships.
// The optional "has intent" attribute is included when includeOptional is true.
func CTGuidedProcedureConcept(id string, includeOptional bool) core.Concept {
	rels := []core.Relationship{
		rel(0, core.IsA, "71388002"),
		rel(1, Method, "312251004"),
		rel(1, ProcedureSiteDirect, "71854001"),
		rel(2, Method, "129265001"),
		rel(2, ProcedureSiteDirect, "71854001"),
	}
	if includeOptional {
		rels = append(rels, rel(1, HasIntent, "429892002"))
	}

	inferred := make([]core.Relationship, len(rels))
	for i, r := range rels {
		r.CharacteristicType = core.InferredRelationship
		inferred[i] = r
	}

	return core.Concept{
		ConceptID: id,
		Active:    true,
		Descriptions: []core.Description{
			{Term: "Computed tomography guided biopsy of colon (procedure)", Type: core.DescriptionTypeFSN, Active: true},
			{Term: "CT guided biopsy of colon", Type: core.DescriptionTypeSynonym, Active: true},
		},
		ClassAxioms:   []core.Axiom{{AxiomID: id + "-axiom", Active: true, Relationships: rels}},
		Relationships: inferred,
	}
}

// WithStatedRelationship returns a copy of c with an extra relationship in its first active axiom.
func WithStatedRelationship(c core.Concept, groupID int, typeID, destination string) core.Concept {
	axioms := make([]core.Axiom, len(c.ClassAxioms))
	copy(axioms, c.ClassAxioms)
	for i := range axioms {
		if axioms[i].Active {
			rels := append([]core.Relationship(nil), axioms[i].Relationships...)
			axioms[i].Relationships = append(rels, rel(groupID, typeID, destination))
			break
		}
	}
	c.ClassAxioms = axioms
	return c
}

func rel(group int, typeID, destination string) core.Relationship {
	return core.Relationship{
		Active:             true,
		CharacteristicType: core.StatedRelationship,
		GroupID:            group,
		TypeID:             typeID,
		DestinationID:      destination,
	}
}
