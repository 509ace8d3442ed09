package core

import (
	"encoding/binary"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Well-known terminology identifiers.
const (
	// IsA is the concept id of the IS-A relationship type.
	IsA = "116680003"

	// InferredRelationship is the characteristic type of classifier-computed relationships.
	InferredRelationship = "INFERRED_RELATIONSHIP"

	// StatedRelationship is the characteristic type of relationships declared in axioms.
	StatedRelationship = "STATED_RELATIONSHIP"
)

// Many is the Cardinality maximum used for an unbounded upper bound ("*").
const Many = -1

// Cardinality is an optional min/max occurrence constraint.
type Cardinality struct {
	Min    int
	Max    int
	HasMin bool
	HasMax bool
}

// Exactly returns a cardinality of n..n.
func Exactly(n int) Cardinality {
	return Cardinality{Min: n, Max: n, HasMin: true, HasMax: true}
}

// Between returns a cardinality of min..max. Pass Many for an unbounded max.
func Between(min, max int) Cardinality {
	return Cardinality{Min: min, Max: max, HasMin: true, HasMax: true}
}

// IsSet reports whether at least one bound is present.
func (c Cardinality) IsSet() bool {
	return c.HasMin || c.HasMax
}

// Mandatory reports whether the minimum is exactly one.
func (c Cardinality) Mandatory() bool {
	return c.HasMin && c.Min == 1
}

// Attribute is a single type=value constraint of a logical template.
// At most one of Value, ValueAllowableRangeECL and ValueSlotReference is expected
// to be populated; ValueSlotName declares a slot bound to Value or the range.
type Attribute struct {
	Type                   string
	Value                  string
	ValueAllowableRangeECL string
	ValueSlotReference     string
	ValueSlotName          string
	Cardinality            Cardinality
}

// AttributeGroup is a set of attributes that must co-occur in one relationship group.
type AttributeGroup struct {
	Cardinality Cardinality
	Attributes  []Attribute
}

// LogicalTemplate is the parsed form of a template's logical definition.
type LogicalTemplate struct {
	FocusConcepts       []string
	AttributeGroups     []AttributeGroup
	UngroupedAttributes []Attribute
}

// AllAttributes returns ungrouped attributes followed by every grouped attribute in order.
func (t *LogicalTemplate) AllAttributes() []Attribute {
	all := make([]Attribute, 0, len(t.UngroupedAttributes))
	all = append(all, t.UngroupedAttributes...)
	for _, g := range t.AttributeGroups {
		all = append(all, g.Attributes...)
	}
	return all
}

// DescriptionType identifies the kind of a description term.
type DescriptionType string

const (
	DescriptionTypeFSN            DescriptionType = "FSN"
	DescriptionTypeSynonym        DescriptionType = "SYNONYM"
	DescriptionTypeTextDefinition DescriptionType = "TEXT_DEFINITION"
)

// LexicalTemplate names a slot usable in term templates.
type LexicalTemplate struct {
	Name            string   `json:"name"`
	DisplayName     string   `json:"displayName,omitempty"`
	TakeFSNFromSlot string   `json:"takeFSNFromSlot,omitempty"`
	RemoveParts     []string `json:"removeParts,omitempty"`
}

// DescriptionTemplate is a description of the concept outline with its term template.
type DescriptionTemplate struct {
	Type         DescriptionType `json:"type"`
	TermTemplate string          `json:"termTemplate"`
	InitialTerm  string          `json:"initialTerm,omitempty"`
}

// RelationshipTemplate is a relationship of the concept outline derived from the logical template.
type RelationshipTemplate struct {
	GroupID     int         `json:"groupId"`
	Type        string      `json:"type"`
	Target      string      `json:"target,omitempty"`
	TargetSlot  string      `json:"targetSlot,omitempty"`
	TargetRange string      `json:"targetRange,omitempty"`
	Cardinality Cardinality `json:"-"`
}

// ConceptTemplate is a stored authoring template.
// FocusConcept, Relationships and the descriptions' InitialTerm are derived
// from the logical template whenever the template is saved.
type ConceptTemplate struct {
	Name             string                 `json:"name"`
	Domain           string                 `json:"domain,omitempty"`
	Version          int                    `json:"version,omitempty"`
	LogicalTemplate  string                 `json:"logicalTemplate"`
	LexicalTemplates []LexicalTemplate      `json:"lexicalTemplates,omitempty"`
	AdditionalSlots  []string               `json:"additionalSlots,omitempty"`
	Descriptions     []DescriptionTemplate  `json:"descriptions,omitempty"`
	FocusConcept     string                 `json:"focusConcept,omitempty"`
	Relationships    []RelationshipTemplate `json:"relationships,omitempty"`
}

// TermTemplates returns the term templates of descriptions of the given type.
func (t *ConceptTemplate) TermTemplates(descType DescriptionType) []string {
	var out []string
	for _, d := range t.Descriptions {
		if d.Type == descType && d.TermTemplate != "" {
			out = append(out, d.TermTemplate)
		}
	}
	return out
}

// Description is a term of a terminology concept.
type Description struct {
	DescriptionID string          `json:"descriptionId,omitempty"`
	Term          string          `json:"term"`
	Type          DescriptionType `json:"type"`
	Active        bool            `json:"active"`
}

// Relationship is an attribute relationship of a terminology concept.
type Relationship struct {
	Active             bool   `json:"active"`
	CharacteristicType string `json:"characteristicType,omitempty"`
	GroupID            int    `json:"groupId"`
	TypeID             string `json:"typeId"`
	DestinationID      string `json:"destinationId,omitempty"`
}

// Axiom is a class axiom holding stated relationships.
type Axiom struct {
	AxiomID       string         `json:"axiomId,omitempty"`
	Active        bool           `json:"active"`
	Relationships []Relationship `json:"relationships"`
}

// Concept is the full detail of a terminology concept as returned by the terminology server.
type Concept struct {
	ConceptID     string         `json:"conceptId"`
	Active        bool           `json:"active"`
	Descriptions  []Description  `json:"descriptions,omitempty"`
	ClassAxioms   []Axiom        `json:"classAxioms,omitempty"`
	Relationships []Relationship `json:"relationships,omitempty"`
}

// ActiveTerms returns the terms of active descriptions of the given type.
func (c *Concept) ActiveTerms(descType DescriptionType) []string {
	var terms []string
	for _, d := range c.Descriptions {
		if d.Active && d.Type == descType {
			terms = append(terms, d.Term)
		}
	}
	return terms
}
