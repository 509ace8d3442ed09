// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package verify checks concepts against the exact attribute structure of a
// logical template.
//
// A query over the terminology server only approximates a template: it can
// not express "no other attributes" or "these attributes in the same group".
// The verifier closes that gap. For every candidate concept it groups the
// active relationships by relationship group and reports the concept when
//
//   - some mandatory attribute set is not contained in any realized group, or
//   - some realized group is not contained in any allowed attribute set.
package verify

import (
	"maps"
	"slices"

	"github.com/poiesic/conformit/core"
)

// Set is a set of identifiers: attribute types or concept ids.
type Set map[string]struct{}

func newSet(types ...string) Set {
	s := make(Set, len(types))
	for _, t := range types {
		s[t] = struct{}{}
	}
	return s
}

func (s Set) add(t string) {
	s[t] = struct{}{}
}

// ContainsAll reports whether every member of other is in s.
func (s Set) ContainsAll(other Set) bool {
	for t := range other {
		if _, ok := s[t]; !ok {
			return false
		}
	}
	return true
}

// Sorted returns the members in ascending order.
func (s Set) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}

// RelationshipGroup is the set of attribute types realized in one relationship group of a concept.
type RelationshipGroup struct {
	GroupID int
	Types   Set
}

// Rules holds the allowed and mandatory attribute sets derived from a logical template.
type Rules struct {
	Allowed   []Set
	Mandatory []Set
}

// NewRules derives verification rules from a template's attribute groups and
// ungrouped attributes.
//
// Each group contributes its attribute types as an allowed set. A group whose
// minimum cardinality is 1 also contributes the types of its attributes with
// minimum cardinality 1 as a mandatory set. The ungrouped attributes form one
// more allowed set and one more mandatory set, both of which include isA.
func NewRules(groups []core.AttributeGroup, ungrouped []core.Attribute, isA string) *Rules {
	r := &Rules{}

	for _, group := range groups {
		allowed := newSet()
		mandatory := newSet()
		for _, attr := range group.Attributes {
			allowed.add(attr.Type)
			if attr.Cardinality.Mandatory() {
				mandatory.add(attr.Type)
			}
		}
		r.Allowed = append(r.Allowed, allowed)
		if group.Cardinality.Mandatory() {
			r.Mandatory = append(r.Mandatory, mandatory)
		}
	}

	allowed := newSet(isA)
	mandatory := newSet(isA)
	for _, attr := range ungrouped {
		allowed.add(attr.Type)
		if attr.Cardinality.Mandatory() {
			mandatory.add(attr.Type)
		}
	}
	r.Allowed = append(r.Allowed, allowed)
	r.Mandatory = append(r.Mandatory, mandatory)

	return r
}

// Result holds the ids of concepts failing verification.
type Result struct {
	Missing Set
	Extra   Set
}

// NonConforming returns the union of Missing and Extra.
func (r Result) NonConforming() Set {
	out := make(Set, len(r.Missing)+len(r.Extra))
	maps.Copy(out, r.Missing)
	maps.Copy(out, r.Extra)
	return out
}

// Check verifies each concept against the rules. When stated is true the
// relationships of active class axioms are examined, otherwise active
// inferred relationships.
func (r *Rules) Check(concepts []core.Concept, stated bool) Result {
	res := Result{Missing: newSet(), Extra: newSet()}
	for i := range concepts {
		c := &concepts[i]
		groups := Groups(c, stated)
		if r.MissingMandatory(groups) {
			res.Missing.add(c.ConceptID)
		}
		if r.HasExtra(groups) {
			res.Extra.add(c.ConceptID)
		}
	}
	return res
}

// MissingMandatory reports whether some mandatory set is not contained in any realized group.
func (r *Rules) MissingMandatory(groups []RelationshipGroup) bool {
	for _, mandatory := range r.Mandatory {
		found := false
		for _, g := range groups {
			if g.Types.ContainsAll(mandatory) {
				found = true
				break
			}
		}
		if !found {
			return true
		}
	}
	return false
}

// HasExtra reports whether some realized group is not contained in any allowed set.
func (r *Rules) HasExtra(groups []RelationshipGroup) bool {
	for _, g := range groups {
		found := false
		for _, allowed := range r.Allowed {
			if allowed.ContainsAll(g.Types) {
				found = true
				break
			}
		}
		if !found {
			return true
		}
	}
	return false
}

// Groups collects a concept's realized relationship groups, ordered by group id.
func Groups(c *core.Concept, stated bool) []RelationshipGroup {
	byID := make(map[int]Set)
	for _, rel := range activeRelationships(c, stated) {
		set, ok := byID[rel.GroupID]
		if !ok {
			set = newSet()
			byID[rel.GroupID] = set
		}
		set.add(rel.TypeID)
	}

	groups := make([]RelationshipGroup, 0, len(byID))
	for _, id := range slices.Sorted(maps.Keys(byID)) {
		groups = append(groups, RelationshipGroup{GroupID: id, Types: byID[id]})
	}
	return groups
}

func activeRelationships(c *core.Concept, stated bool) []core.Relationship {
	var rels []core.Relationship
	if stated {
		for _, axiom := range c.ClassAxioms {
			if axiom.Active {
				rels = append(rels, axiom.Relationships...)
			}
		}
		return rels
	}
	for _, rel := range c.Relationships {
		if rel.Active && rel.CharacteristicType == core.InferredRelationship {
			rels = append(rels, rel)
		}
	}
	return rels
}

// FindNonConforming returns the ids of concepts that are missing a mandatory
// attribute or carry an attribute the template does not allow.
func FindNonConforming(concepts []core.Concept, groups []core.AttributeGroup, ungrouped []core.Attribute, stated bool) Set {
	return NewRules(groups, ungrouped, core.IsA).Check(concepts, stated).NonConforming()
}
