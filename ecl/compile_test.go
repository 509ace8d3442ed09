package ecl

import (
	"errors"
	"testing"

	"github.com/poiesic/conformit/core"
	"github.com/poiesic/conformit/logical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileText(t *testing.T, text string) string {
	t.Helper()
	lt, err := logical.Parse(text)
	require.NoError(t, err)
	query, err := CompileTemplate(lt)
	require.NoError(t, err)
	return query
}

func TestCompile_Scenarios(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "ungrouped attribute and group with slot name",
			text: "420134006 |Propensity to adverse reactions (disorder)|:\n" +
				"\t\n" +
				"\t370135005 |Pathological process (attribute)| = 472964009 |Allergic process (qualifier value)|,\n" +
				"\t{\n" +
				"\t\t246075003 |Causative agent (attribute)| = [[+id(<105590001 |Substance (substance)|) @substance]],\n" +
				"\t\t255234002 |After (attribute)| = 609327009 |Allergic sensitization (disorder)|\n" +
				"\t}",
			want: "<<420134006:370135005=472964009,{246075003=<105590001 |Substance (substance)|,255234002=609327009}",
		},
		{
			name: "compact round trip",
			text: "420134006:370135005=472964009,{246075003=[[+id(<105590001)@substance]],255234002=609327009}",
			want: "<<420134006:370135005=472964009,{246075003=<105590001,255234002=609327009}",
		},
		{
			name: "group and attribute cardinality",
			text: "71388002 |Procedure|:\n\t[[~1..1]] {\n\t\t260686004 |Method| = 312251004 |Computed tomography imaging action|,\n\t\t[[~1..1]] " +
				"405813007 |Procedure site - Direct| = [[+id(<< 442083009 |Anatomical or acquired body structure|) @procSite]]\n\t}\n",
			want: "<<71388002:[1..1]{260686004=312251004,[1..1]405813007=<< 442083009 |Anatomical or acquired body structure|}",
		},
		{
			name: "slot reference resolved to declared range",
			text: "71388002 |Procedure|:   [[~1..1]] {      260686004 |Method| = 312251004 |Computed tomography imaging action|, " +
				"     [[~1..1]] 405813007 |Procedure site - Direct| = [[+id(<< 442083009 |Anatomical or acquired body structure|) @procSite]]," +
				"      363703001 |Has intent| = 429892002 |Guidance intent|   },   " +
				"{      260686004 |Method| = [[+id (<< 129264002 |Action|) @action]],      " +
				"[[~1..1]] 405813007 |Procedure site - Direct| = [[+id $procSite]]   }",
			want: "<<71388002:[1..1]{260686004=312251004,[1..1]405813007=<< 442083009 |Anatomical or acquired body structure|,363703001=429892002}," +
				"{260686004=<< 129264002 |Action|,[1..1]405813007=<< 442083009 |Anatomical or acquired body structure|}",
		},
		{
			name: "compound ranges are parenthesized",
			text: "363787002 |Observable entity|:\n" +
				"704321009 |Characterizes| = [[+id(<<719982003 |Process|) @process]],\n" +
				"704324001 |Process output| = [[+id(<<105590001 |Substance| OR <<719982003 |Process|) @output]],\n" +
				"704323007 |Process duration| = [[+id(<7389001 |Time frame|) @duration]]",
			want: "<<363787002:704321009=<<719982003 |Process|," +
				"704324001=(<<105590001 |Substance| OR <<719982003 |Process|)," +
				"704323007=<7389001 |Time frame|",
		},
		{
			name: "focus only",
			text: "71388002 |Procedure|",
			want: "<<71388002",
		},
		{
			name: "unbounded cardinality",
			text: "71388002:[[~0..*]] {260686004 = 129264002}",
			want: "<<71388002:[0..*]{260686004=129264002}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, compileText(t, tt.text))
		})
	}
}

func TestCompile_Cardinality(t *testing.T) {
	attr := func(card core.Cardinality) []core.Attribute {
		return []core.Attribute{{Type: "1", Value: "2", Cardinality: card}}
	}

	tests := []struct {
		name string
		card core.Cardinality
		want string
	}{
		{name: "absent", card: core.Cardinality{}, want: "<<9:1=2"},
		{name: "both", card: core.Between(0, 1), want: "<<9:[0..1]1=2"},
		{name: "min only", card: core.Cardinality{Min: 1, HasMin: true}, want: "<<9:[1..1=2"},
		{name: "max only", card: core.Cardinality{Max: 3, HasMax: true}, want: "<<9:3]1=2"},
		{name: "unbounded", card: core.Between(1, core.Many), want: "<<9:[1..*]1=2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compile([]string{"9"}, nil, attr(tt.card))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompile_ValuePrecedence(t *testing.T) {
	// Literal value wins over range and slot reference when several are present.
	got, err := Compile([]string{"9"}, nil, []core.Attribute{
		{Type: "1", Value: "2", ValueAllowableRangeECL: "<<3", ValueSlotReference: "x"},
		{Type: "4", ValueAllowableRangeECL: "<<5", ValueSlotReference: "x"},
	})
	require.NoError(t, err)
	assert.Equal(t, "<<9:1=2,4=<<5", got)
}

func TestCompile_Errors(t *testing.T) {
	t.Run("no focus concepts", func(t *testing.T) {
		_, err := Compile(nil, nil, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidTemplate))
		assert.True(t, errors.Is(err, core.ErrInvalidTemplate))
		assert.True(t, errors.Is(err, core.ErrNoFocusConcept))
	})

	t.Run("unresolved slot reference", func(t *testing.T) {
		_, err := Compile([]string{"9"}, nil, []core.Attribute{{Type: "1", ValueSlotReference: "missing"}})
		require.Error(t, err)
		assert.True(t, errors.Is(err, core.ErrInvalidTemplate))

		var unresolved *UnresolvedSlotError
		require.True(t, errors.As(err, &unresolved))
		assert.Equal(t, "missing", unresolved.Name)
	})

	t.Run("slot declared without value cannot be referenced", func(t *testing.T) {
		_, err := Compile([]string{"9"}, nil, []core.Attribute{
			{Type: "1", ValueSlotName: "empty"},
			{Type: "2", ValueSlotReference: "empty"},
		})
		assert.True(t, errors.Is(err, ErrInvalidTemplate))
	})

	t.Run("nil template", func(t *testing.T) {
		_, err := CompileTemplate(nil)
		assert.True(t, errors.Is(err, ErrInvalidTemplate))
	})
}

func TestCompileDomainOnly(t *testing.T) {
	got, err := CompileDomainOnly([]string{"71388002", "363787002"})
	require.NoError(t, err)
	assert.Equal(t, "<<71388002", got)
}

func TestCombine(t *testing.T) {
	assert.Equal(t, "(<<1) AND (<<1:2=3)", Combine("<<1", "<<1:2=3", true))
	assert.Equal(t, "(<<1) MINUS (<<1:2=3)", Combine("<<1", "<<1:2=3", false))
}

func TestCompileQueries(t *testing.T) {
	lt, err := logical.Parse("71388002 |Procedure|: 260686004 |Method| = 312251004")
	require.NoError(t, err)

	q, err := CompileQueries(lt)
	require.NoError(t, err)
	assert.Equal(t, "<<71388002", q.Domain)
	assert.Equal(t, "("+q.Domain+") AND ("+q.Logical+")", q.Match)
	assert.Equal(t, "("+q.Domain+") MINUS ("+q.Logical+")", q.Mismatch)

	_, err = CompileQueries(nil)
	assert.ErrorIs(t, err, ErrInvalidTemplate)
}

func TestSubstituteSlots(t *testing.T) {
	t.Run("exact token only", func(t *testing.T) {
		slots := map[string]string{"site": "<<1", "siteOfAction": "<<2"}
		got := SubstituteSlots("<<9:3=site,4=siteOfAction,5=sites", slots)
		assert.Equal(t, "<<9:3=<<1,4=<<2,5=sites", got)
	})

	t.Run("idempotent", func(t *testing.T) {
		slots := map[string]string{"procSite": "<< 442083009 |Anatomical or acquired body structure|"}
		once := SubstituteSlots("<<71388002:{405813007=procSite}", slots)
		twice := SubstituteSlots(once, slots)
		assert.Equal(t, once, twice)
	})

	t.Run("empty map leaves query untouched", func(t *testing.T) {
		assert.Equal(t, "<<1:2=x", SubstituteSlots("<<1:2=x", nil))
	})

	t.Run("compound binding is parenthesized by builder", func(t *testing.T) {
		b := NewBuilder("9")
		b.AppendTerm(core.Attribute{Type: "1", ValueSlotReference: "r"})
		b.BindSlot("r", "<<2 OR <<3")
		got, err := b.Build()
		require.NoError(t, err)
		assert.Equal(t, "<<9:1=(<<2 OR <<3)", got)
	})
}

func TestIsCompound(t *testing.T) {
	assert.True(t, IsCompound("<<1 OR <<2"))
	assert.True(t, IsCompound("<<1 AND <<2"))
	assert.False(t, IsCompound("<<1 |Procedure|"))
	assert.True(t, IsCompound("(<<1)OR(<<2)"))

	t.Run("operator must be a whole word", func(t *testing.T) {
		assert.False(t, IsCompound("<<2 |ORGAN|"))
		assert.False(t, IsCompound("<<2 ORGAN"))
		assert.False(t, IsCompound("<<2 BAND"))
	})

	t.Run("operators inside terms are ignored", func(t *testing.T) {
		assert.False(t, IsCompound("<<2 |Bone OR joint structure|"))
		assert.True(t, IsCompound("<<2 |Bone| OR <<3 |Joint|"))
	})

	t.Run("range with operator word in term is not parenthesized", func(t *testing.T) {
		b := NewBuilder("9")
		b.AppendTerm(core.Attribute{Type: "1", ValueAllowableRangeECL: "<<2 |ORGAN|"})
		got, err := b.Build()
		require.NoError(t, err)
		assert.Equal(t, "<<9:1=<<2 |ORGAN|", got)
	})
}
