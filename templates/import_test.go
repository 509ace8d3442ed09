package templates

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/poiesic/conformit/core"
	"github.com/poiesic/conformit/internal/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const allergyJSON = `{
	"name": "Allergy to [substance]",
	"logicalTemplate": "420134006:246075003=[[+id(<<105590001) @substance]]",
	"lexicalTemplates": [{"name": "substance", "displayName": "substance", "takeFSNFromSlot": "substance"}],
	"descriptions": [{"type": "SYNONYM", "termTemplate": "Allergy to $substance$"}]
}`

const outlineJSON = `{
	"logicalTemplate": "71388002",
	"lexicalTemplates": [{"name": "procedure"}],
	"conceptOutline": {
		"descriptions": [{"type": "FSN", "termTemplate": "$procedure$ (procedure)"}]
	}
}`

func TestImportFS(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	fsys := fstest.MapFS{
		"allergy.json":           {Data: []byte(allergyJSON)},
		"procedure/outline.json": {Data: []byte(outlineJSON)},
		"README.md":              {Data: []byte("not a template")},
	}

	n, err := svc.ImportFS(ctx, fsys)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	allergy, err := svc.LoadTemplate(ctx, "Allergy to [substance]")
	require.NoError(t, err)
	assert.Equal(t, "420134006", allergy.FocusConcept)
	assert.Equal(t, "Allergy to [substance]", allergy.Descriptions[0].InitialTerm)

	outline, err := svc.LoadTemplate(ctx, "procedure/outline")
	require.NoError(t, err)
	require.Len(t, outline.Descriptions, 1)
	assert.Equal(t, core.DescriptionTypeFSN, outline.Descriptions[0].Type)
	assert.Equal(t, "[procedure] (procedure)", outline.Descriptions[0].InitialTerm)
}

func TestImportFS_SkipsBadFiles(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	fsys := fstest.MapFS{
		"good.json":    {Data: []byte(allergyJSON)},
		"broken.json":  {Data: []byte("{not json")},
		"invalid.json": {Data: []byte(`{"name": "invalid", "logicalTemplate": "71388002:{"}`)},
	}

	n, err := svc.ImportFS(ctx, fsys)
	assert.Equal(t, 1, n)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrParse)
	assert.Contains(t, err.Error(), "broken.json")
	assert.Contains(t, err.Error(), "invalid.json")

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestImport_Directory(t *testing.T) {
	svc := setupService(t)
	dir := writeTemplateDir(t, map[string]string{
		"ct.json": ctGuidedJSON(t),
	})

	n, err := svc.Import(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = svc.LoadTemplate(context.Background(), fixtures.CTGuidedProcedureName)
	assert.NoError(t, err)
}
