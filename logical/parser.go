package logical

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/poiesic/conformit/core"
)

// Parser turns logical-template text into a core.LogicalTemplate.
type Parser struct {
	src string
	pos int
}

// Parse parses the text of a logical template.
func Parse(text string) (*core.LogicalTemplate, error) {
	p := &Parser{src: text}
	return p.parseTemplate()
}

// MustParse is like Parse but panics on error. Intended for tests and fixtures.
func MustParse(text string) *core.LogicalTemplate {
	t, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return t
}

// parseTemplate parses focus ('+' focus)* [':' refinement]
func (p *Parser) parseTemplate() (*core.LogicalTemplate, error) {
	t := &core.LogicalTemplate{}

	for {
		id, err := p.parseConceptReference()
		if err != nil {
			return nil, err
		}
		t.FocusConcepts = append(t.FocusConcepts, id)
		if !p.match('+') {
			break
		}
	}

	if p.match(':') {
		if err := p.parseRefinement(t); err != nil {
			return nil, err
		}
	}

	p.skipSpace()
	if !p.isAtEnd() {
		return nil, p.errorf("unexpected %q after template", p.peek())
	}
	return t, nil
}

// parseRefinement parses a comma separated list of attributes and groups.
func (p *Parser) parseRefinement(t *core.LogicalTemplate) error {
	for {
		card, err := p.parseOptionalCardinality()
		if err != nil {
			return err
		}

		if p.match('{') {
			group, err := p.parseGroupBody()
			if err != nil {
				return err
			}
			group.Cardinality = card
			t.AttributeGroups = append(t.AttributeGroups, group)
		} else {
			attr, err := p.parseAttributeBody()
			if err != nil {
				return err
			}
			attr.Cardinality = card
			t.UngroupedAttributes = append(t.UngroupedAttributes, attr)
		}

		if !p.match(',') {
			return nil
		}
	}
}

// parseGroupBody parses attribute (',' attribute)* '}' after the opening brace.
func (p *Parser) parseGroupBody() (core.AttributeGroup, error) {
	var group core.AttributeGroup
	for {
		attr, err := p.parseAttribute()
		if err != nil {
			return group, err
		}
		group.Attributes = append(group.Attributes, attr)

		if p.match(',') {
			continue
		}
		if p.match('}') {
			return group, nil
		}
		return group, p.errorf("expected ',' or '}' in attribute group")
	}
}

func (p *Parser) parseAttribute() (core.Attribute, error) {
	card, err := p.parseOptionalCardinality()
	if err != nil {
		return core.Attribute{}, err
	}
	attr, err := p.parseAttributeBody()
	if err != nil {
		return attr, err
	}
	attr.Cardinality = card
	return attr, nil
}

// parseAttributeBody parses conceptRef '=' value.
func (p *Parser) parseAttributeBody() (core.Attribute, error) {
	var attr core.Attribute

	typeID, err := p.parseConceptReference()
	if err != nil {
		return attr, err
	}
	attr.Type = typeID

	if !p.match('=') {
		return attr, p.errorf("expected '=' after attribute type %s", typeID)
	}

	p.skipSpace()
	if p.hasPrefix("[[") {
		if err := p.parseSlot(&attr); err != nil {
			return attr, err
		}
		return attr, nil
	}

	value, err := p.parseConceptReference()
	if err != nil {
		return attr, err
	}
	attr.Value = value
	return attr, nil
}

// parseSlot parses [[+id(range) @name]], [[+id @name]] and [[+id $ref]].
func (p *Parser) parseSlot(attr *core.Attribute) error {
	p.pos += 2
	if !p.match('+') {
		return p.errorf("expected '+' in replacement slot")
	}
	p.skipSpace()
	if word := p.scanWord(); word == "" {
		return p.errorf("expected slot kind after '+'")
	}

	if p.match('(') {
		rng, err := p.scanRange()
		if err != nil {
			return err
		}
		attr.ValueAllowableRangeECL = rng
	}

	if p.match('@') {
		name := p.scanName()
		if name == "" {
			return p.errorf("expected slot name after '@'")
		}
		attr.ValueSlotName = name
	}

	if p.match('$') {
		ref := p.scanName()
		if ref == "" {
			return p.errorf("expected slot reference after '$'")
		}
		attr.ValueSlotReference = ref
	}

	p.skipSpace()
	if !p.hasPrefix("]]") {
		return p.errorf("expected ']]' to close replacement slot")
	}
	p.pos += 2
	return nil
}

// scanRange returns the verbatim text up to the matching ')', trimmed.
// Parentheses inside |term| text are ignored.
func (p *Parser) scanRange() (string, error) {
	start := p.pos
	depth := 1
	inTerm := false
	for !p.isAtEnd() {
		c := p.src[p.pos]
		switch {
		case c == '|':
			inTerm = !inTerm
		case inTerm:
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				text := strings.TrimSpace(p.src[start:p.pos])
				p.pos++
				if text == "" {
					return "", p.errorf("empty allowable range")
				}
				return text, nil
			}
		}
		p.pos++
	}
	return "", p.errorf("unterminated allowable range")
}

// parseOptionalCardinality parses [[~min..max]] when present.
func (p *Parser) parseOptionalCardinality() (core.Cardinality, error) {
	var card core.Cardinality

	p.skipSpace()
	if !p.hasPrefix("[[") {
		return card, nil
	}
	// Replacement slots start with [[+ and are not cardinalities.
	rest := strings.TrimLeftFunc(p.src[p.pos+2:], unicode.IsSpace)
	if strings.HasPrefix(rest, "+") {
		return card, nil
	}

	p.pos += 2
	p.match('~')

	p.skipSpace()
	if n, ok := p.scanInt(); ok {
		card.Min, card.HasMin = n, true
	}
	p.skipSpace()
	if !p.hasPrefix("..") {
		return card, p.errorf("expected '..' in cardinality")
	}
	p.pos += 2
	p.skipSpace()
	if p.match('*') {
		card.Max, card.HasMax = core.Many, true
	} else if n, ok := p.scanInt(); ok {
		card.Max, card.HasMax = n, true
	}

	p.skipSpace()
	if !p.hasPrefix("]]") {
		return card, p.errorf("expected ']]' to close cardinality")
	}
	p.pos += 2

	if card.HasMin && card.HasMax && card.Max != core.Many && card.Max < card.Min {
		return card, p.errorf("cardinality max %d is less than min %d", card.Max, card.Min)
	}
	return card, nil
}

// parseConceptReference parses an sctid followed by an optional |term|.
func (p *Parser) parseConceptReference() (string, error) {
	p.skipSpace()
	start := p.pos
	for !p.isAtEnd() && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	if start == p.pos {
		if p.isAtEnd() {
			return "", p.errorf("expected concept id, found end of input")
		}
		return "", p.errorf("expected concept id, found %q", p.peek())
	}
	id := p.src[start:p.pos]

	p.skipSpace()
	if p.match('|') {
		end := strings.IndexByte(p.src[p.pos:], '|')
		if end < 0 {
			return "", p.errorf("unterminated term for concept %s", id)
		}
		p.pos += end + 1
	}
	return id, nil
}

func (p *Parser) scanInt() (int, bool) {
	start := p.pos
	for !p.isAtEnd() && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	if start == p.pos {
		return 0, false
	}
	n, err := strconv.Atoi(p.src[start:p.pos])
	if err != nil {
		p.pos = start
		return 0, false
	}
	return n, true
}

func (p *Parser) scanWord() string {
	start := p.pos
	for !p.isAtEnd() && unicode.IsLetter(rune(p.src[p.pos])) {
		p.pos++
	}
	return p.src[start:p.pos]
}

// scanName reads a slot name: letters, digits, '_' and '-'.
func (p *Parser) scanName() string {
	p.skipSpace()
	start := p.pos
	for !p.isAtEnd() && isNameByte(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func isNameByte(c byte) bool {
	return c == '_' || c == '-' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// match skips whitespace and consumes c if it is next.
func (p *Parser) match(c byte) bool {
	p.skipSpace()
	if !p.isAtEnd() && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *Parser) hasPrefix(s string) bool {
	return strings.HasPrefix(p.src[p.pos:], s)
}

func (p *Parser) skipSpace() {
	for !p.isAtEnd() && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *Parser) peek() byte {
	return p.src[p.pos]
}

func (p *Parser) isAtEnd() bool {
	return p.pos >= len(p.src)
}

func (p *Parser) errorf(format string, args ...any) error {
	return &ParseError{Pos: p.pos, Message: fmt.Sprintf(format, args...)}
}
