package ecl

import (
	"strconv"
	"strings"

	"github.com/poiesic/conformit/core"
)

// Boolean operator tokens that mark an allowable range as compound.
const (
	opAnd   = "AND"
	opOr    = "OR"
	opMinus = "MINUS"
)

// Builder assembles a refinement query. It owns the bracket and separator
// rules and collects slot bindings for the final substitution pass.
type Builder struct {
	sb      strings.Builder
	items   int
	slots   map[string]string
	refs    []string
	refined bool
}

// NewBuilder returns a Builder for descendants-or-self of focus.
func NewBuilder(focus string) *Builder {
	b := &Builder{slots: make(map[string]string)}
	b.sb.WriteString("<<")
	b.sb.WriteString(focus)
	return b
}

// AppendTerm appends an ungrouped attribute constraint.
func (b *Builder) AppendTerm(attr core.Attribute) {
	b.separator()
	b.writeAttribute(attr)
}

// AppendGroup appends a braced attribute group with its optional cardinality.
func (b *Builder) AppendGroup(group core.AttributeGroup) {
	b.separator()
	writeCardinality(&b.sb, group.Cardinality)
	b.sb.WriteByte('{')
	for i, attr := range group.Attributes {
		if i > 0 {
			b.sb.WriteByte(',')
		}
		b.writeAttribute(attr)
	}
	b.sb.WriteByte('}')
}

// BindSlot records the value substituted for references to name.
// Compound values are parenthesized.
func (b *Builder) BindSlot(name, value string) {
	b.slots[name] = wrapCompound(value)
}

// Build returns the assembled query with slot references resolved.
// An unbound slot reference is an error.
func (b *Builder) Build() (string, error) {
	for _, ref := range b.refs {
		if _, ok := b.slots[ref]; !ok {
			return "", &UnresolvedSlotError{Name: ref}
		}
	}
	return SubstituteSlots(b.sb.String(), b.slots), nil
}

func (b *Builder) separator() {
	if !b.refined {
		b.sb.WriteByte(':')
		b.refined = true
	}
	if b.items > 0 {
		b.sb.WriteByte(',')
	}
	b.items++
}

// writeAttribute renders [card]type=value with literal > range > slot reference precedence.
func (b *Builder) writeAttribute(attr core.Attribute) {
	writeCardinality(&b.sb, attr.Cardinality)
	b.sb.WriteString(attr.Type)
	b.sb.WriteByte('=')
	switch {
	case attr.Value != "":
		b.sb.WriteString(attr.Value)
	case attr.ValueAllowableRangeECL != "":
		b.sb.WriteString(wrapCompound(attr.ValueAllowableRangeECL))
	case attr.ValueSlotReference != "":
		b.sb.WriteString(attr.ValueSlotReference)
		b.refs = append(b.refs, attr.ValueSlotReference)
	}
}

// writeCardinality renders "[min.." when min is present and "max]" when max is present.
func writeCardinality(sb *strings.Builder, c core.Cardinality) {
	if c.HasMin {
		sb.WriteByte('[')
		sb.WriteString(strconv.Itoa(c.Min))
		sb.WriteString("..")
	}
	if c.HasMax {
		if c.Max == core.Many {
			sb.WriteByte('*')
		} else {
			sb.WriteString(strconv.Itoa(c.Max))
		}
		sb.WriteByte(']')
	}
}

// IsCompound reports whether expr contains OR or AND as a whole word outside
// |term| text.
func IsCompound(expr string) bool {
	inTerm := false
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		if c == '|' {
			inTerm = !inTerm
			continue
		}
		if inTerm || (i > 0 && isNameByte(expr[i-1])) {
			continue
		}
		if hasWordAt(expr, i, opOr) || hasWordAt(expr, i, opAnd) {
			return true
		}
	}
	return false
}

func hasWordAt(s string, i int, word string) bool {
	end := i + len(word)
	return strings.HasPrefix(s[i:], word) && (end == len(s) || !isNameByte(s[end]))
}

func wrapCompound(expr string) string {
	if IsCompound(expr) {
		return "(" + expr + ")"
	}
	return expr
}
