package snowstorm

import "github.com/poiesic/conformit/core"

// conceptPage is a page of GET /{branch}/concepts.
type conceptPage struct {
	Items []struct {
		ConceptID string `json:"conceptId"`
	} `json:"items"`
	Total       int    `json:"total"`
	Limit       int    `json:"limit"`
	SearchAfter string `json:"searchAfter"`
}

type bulkLoadRequest struct {
	ConceptIDs []string `json:"conceptIds"`
}

type conceptMini struct {
	ConceptID string `json:"conceptId"`
}

type browserDescription struct {
	DescriptionID string `json:"descriptionId"`
	Term          string `json:"term"`
	Type          string `json:"type"`
	Active        bool   `json:"active"`
}

type browserRelationship struct {
	Active             bool         `json:"active"`
	CharacteristicType string       `json:"characteristicType"`
	GroupID            int          `json:"groupId"`
	TypeID             string       `json:"typeId"`
	Type               *conceptMini `json:"type"`
	DestinationID      string       `json:"destinationId"`
	Target             *conceptMini `json:"target"`
}

type browserAxiom struct {
	AxiomID       string                `json:"axiomId"`
	Active        bool                  `json:"active"`
	Relationships []browserRelationship `json:"relationships"`
}

// browserConcept is the concept representation of the browser endpoints.
type browserConcept struct {
	ConceptID     string                `json:"conceptId"`
	Active        bool                  `json:"active"`
	Descriptions  []browserDescription  `json:"descriptions"`
	ClassAxioms   []browserAxiom        `json:"classAxioms"`
	Relationships []browserRelationship `json:"relationships"`
}

func (b *browserConcept) toCore() core.Concept {
	c := core.Concept{
		ConceptID: b.ConceptID,
		Active:    b.Active,
	}
	for _, d := range b.Descriptions {
		c.Descriptions = append(c.Descriptions, core.Description{
			DescriptionID: d.DescriptionID,
			Term:          d.Term,
			Type:          core.DescriptionType(d.Type),
			Active:        d.Active,
		})
	}
	for _, a := range b.ClassAxioms {
		axiom := core.Axiom{AxiomID: a.AxiomID, Active: a.Active}
		for _, r := range a.Relationships {
			axiom.Relationships = append(axiom.Relationships, r.toCore())
		}
		c.ClassAxioms = append(c.ClassAxioms, axiom)
	}
	for _, r := range b.Relationships {
		c.Relationships = append(c.Relationships, r.toCore())
	}
	return c
}

// toCore prefers the flat id fields and falls back to the nested concept minis.
func (r browserRelationship) toCore() core.Relationship {
	rel := core.Relationship{
		Active:             r.Active,
		CharacteristicType: r.CharacteristicType,
		GroupID:            r.GroupID,
		TypeID:             r.TypeID,
		DestinationID:      r.DestinationID,
	}
	if rel.TypeID == "" && r.Type != nil {
		rel.TypeID = r.Type.ConceptID
	}
	if rel.DestinationID == "" && r.Target != nil {
		rel.DestinationID = r.Target.ConceptID
	}
	return rel
}
