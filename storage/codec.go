package storage

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/conformit/core"
)

// serializer is the Size/Marshal/Unmarshal shape shared by the mus-go
// primitive serializers and the composite serializers below.
type serializer[T any] interface {
	Size(v T) int
	Marshal(v T, bs []byte) int
	Unmarshal(bs []byte) (T, int, error)
}

// IDMUS serializes core.ID values.
var IDMUS = idMUS{}

// TemplateMUS serializes core.ConceptTemplate values.
var TemplateMUS = templateMUS{}

var (
	stringsMUS       = sliceMUS[string]{elem: ord.String}
	cardinalityMUSv  = cardinalityMUS{}
	lexicalMUS       = sliceMUS[core.LexicalTemplate]{elem: lexicalTemplateMUS{}}
	descriptionsMUS  = sliceMUS[core.DescriptionTemplate]{elem: descriptionTemplateMUS{}}
	relationshipsMUS = sliceMUS[core.RelationshipTemplate]{elem: relationshipTemplateMUS{}}
)

type idMUS struct{}

func (idMUS) Size(id core.ID) int {
	return varint.Uint64.Size(uint64(id))
}

func (idMUS) Marshal(id core.ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (core.ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return core.ID(v), n, err
}

// sliceMUS encodes a length prefix followed by each element.
type sliceMUS[T any] struct {
	elem serializer[T]
}

func (s sliceMUS[T]) Size(v []T) int {
	size := varint.Int.Size(len(v))
	for _, e := range v {
		size += s.elem.Size(e)
	}
	return size
}

func (s sliceMUS[T]) Marshal(v []T, bs []byte) int {
	n := varint.Int.Marshal(len(v), bs)
	for _, e := range v {
		n += s.elem.Marshal(e, bs[n:])
	}
	return n
}

func (s sliceMUS[T]) Unmarshal(bs []byte) ([]T, int, error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	// Every element takes at least one byte.
	if length < 0 || length > len(bs)-n {
		return nil, n, ErrTruncatedData
	}
	if length == 0 {
		return nil, n, nil
	}
	out := make([]T, length)
	for i := range out {
		e, m, err := s.elem.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return nil, n, err
		}
		out[i] = e
	}
	return out, n, nil
}

type cardinalityMUS struct{}

func (cardinalityMUS) Size(c core.Cardinality) int {
	return ord.Bool.Size(c.HasMin) + varint.Int.Size(c.Min) +
		ord.Bool.Size(c.HasMax) + varint.Int.Size(c.Max)
}

func (cardinalityMUS) Marshal(c core.Cardinality, bs []byte) int {
	n := ord.Bool.Marshal(c.HasMin, bs)
	n += varint.Int.Marshal(c.Min, bs[n:])
	n += ord.Bool.Marshal(c.HasMax, bs[n:])
	n += varint.Int.Marshal(c.Max, bs[n:])
	return n
}

func (cardinalityMUS) Unmarshal(bs []byte) (c core.Cardinality, n int, err error) {
	var m int
	if c.HasMin, m, err = ord.Bool.Unmarshal(bs); err != nil {
		return c, m, err
	}
	n += m
	if c.Min, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return c, n + m, err
	}
	n += m
	if c.HasMax, m, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return c, n + m, err
	}
	n += m
	c.Max, m, err = varint.Int.Unmarshal(bs[n:])
	return c, n + m, err
}

type lexicalTemplateMUS struct{}

func (lexicalTemplateMUS) Size(l core.LexicalTemplate) int {
	return ord.String.Size(l.Name) + ord.String.Size(l.DisplayName) +
		ord.String.Size(l.TakeFSNFromSlot) + stringsMUS.Size(l.RemoveParts)
}

func (lexicalTemplateMUS) Marshal(l core.LexicalTemplate, bs []byte) int {
	n := ord.String.Marshal(l.Name, bs)
	n += ord.String.Marshal(l.DisplayName, bs[n:])
	n += ord.String.Marshal(l.TakeFSNFromSlot, bs[n:])
	n += stringsMUS.Marshal(l.RemoveParts, bs[n:])
	return n
}

func (lexicalTemplateMUS) Unmarshal(bs []byte) (l core.LexicalTemplate, n int, err error) {
	r := reader{bs: bs}
	l.Name = r.string()
	l.DisplayName = r.string()
	l.TakeFSNFromSlot = r.string()
	l.RemoveParts = r.strings()
	return l, r.n, r.err
}

type descriptionTemplateMUS struct{}

func (descriptionTemplateMUS) Size(d core.DescriptionTemplate) int {
	return ord.String.Size(string(d.Type)) + ord.String.Size(d.TermTemplate) + ord.String.Size(d.InitialTerm)
}

func (descriptionTemplateMUS) Marshal(d core.DescriptionTemplate, bs []byte) int {
	n := ord.String.Marshal(string(d.Type), bs)
	n += ord.String.Marshal(d.TermTemplate, bs[n:])
	n += ord.String.Marshal(d.InitialTerm, bs[n:])
	return n
}

func (descriptionTemplateMUS) Unmarshal(bs []byte) (d core.DescriptionTemplate, n int, err error) {
	r := reader{bs: bs}
	d.Type = core.DescriptionType(r.string())
	d.TermTemplate = r.string()
	d.InitialTerm = r.string()
	return d, r.n, r.err
}

type relationshipTemplateMUS struct{}

func (relationshipTemplateMUS) Size(rt core.RelationshipTemplate) int {
	return varint.Int.Size(rt.GroupID) + ord.String.Size(rt.Type) + ord.String.Size(rt.Target) +
		ord.String.Size(rt.TargetSlot) + ord.String.Size(rt.TargetRange) + cardinalityMUSv.Size(rt.Cardinality)
}

func (relationshipTemplateMUS) Marshal(rt core.RelationshipTemplate, bs []byte) int {
	n := varint.Int.Marshal(rt.GroupID, bs)
	n += ord.String.Marshal(rt.Type, bs[n:])
	n += ord.String.Marshal(rt.Target, bs[n:])
	n += ord.String.Marshal(rt.TargetSlot, bs[n:])
	n += ord.String.Marshal(rt.TargetRange, bs[n:])
	n += cardinalityMUSv.Marshal(rt.Cardinality, bs[n:])
	return n
}

func (relationshipTemplateMUS) Unmarshal(bs []byte) (rt core.RelationshipTemplate, n int, err error) {
	r := reader{bs: bs}
	rt.GroupID = r.int()
	rt.Type = r.string()
	rt.Target = r.string()
	rt.TargetSlot = r.string()
	rt.TargetRange = r.string()
	rt.Cardinality = readValue(&r, cardinalityMUSv)
	return rt, r.n, r.err
}

type templateMUS struct{}

func (templateMUS) Size(t core.ConceptTemplate) int {
	return ord.String.Size(t.Name) + ord.String.Size(t.Domain) + varint.Int.Size(t.Version) +
		ord.String.Size(t.LogicalTemplate) + lexicalMUS.Size(t.LexicalTemplates) +
		stringsMUS.Size(t.AdditionalSlots) + descriptionsMUS.Size(t.Descriptions) +
		ord.String.Size(t.FocusConcept) + relationshipsMUS.Size(t.Relationships)
}

func (templateMUS) Marshal(t core.ConceptTemplate, bs []byte) int {
	n := ord.String.Marshal(t.Name, bs)
	n += ord.String.Marshal(t.Domain, bs[n:])
	n += varint.Int.Marshal(t.Version, bs[n:])
	n += ord.String.Marshal(t.LogicalTemplate, bs[n:])
	n += lexicalMUS.Marshal(t.LexicalTemplates, bs[n:])
	n += stringsMUS.Marshal(t.AdditionalSlots, bs[n:])
	n += descriptionsMUS.Marshal(t.Descriptions, bs[n:])
	n += ord.String.Marshal(t.FocusConcept, bs[n:])
	n += relationshipsMUS.Marshal(t.Relationships, bs[n:])
	return n
}

func (templateMUS) Unmarshal(bs []byte) (t core.ConceptTemplate, n int, err error) {
	r := reader{bs: bs}
	t.Name = r.string()
	t.Domain = r.string()
	t.Version = r.int()
	t.LogicalTemplate = r.string()
	t.LexicalTemplates = readValue(&r, lexicalMUS)
	t.AdditionalSlots = r.strings()
	t.Descriptions = readValue(&r, descriptionsMUS)
	t.FocusConcept = r.string()
	t.Relationships = readValue(&r, relationshipsMUS)
	return t, r.n, r.err
}

// reader walks a buffer field by field and stops at the first error.
type reader struct {
	bs  []byte
	n   int
	err error
}

func (r *reader) string() string {
	return readValue(r, ord.String)
}

func (r *reader) int() int {
	return readValue(r, varint.Int)
}

func (r *reader) strings() []string {
	return readValue(r, stringsMUS)
}

func readValue[T any](r *reader, s serializer[T]) T {
	var zero T
	if r.err != nil {
		return zero
	}
	v, m, err := s.Unmarshal(r.bs[r.n:])
	r.n += m
	if err != nil {
		r.err = err
		return zero
	}
	return v
}
