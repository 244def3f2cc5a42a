package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	opencre "github.com/AlexDev08/OpenCRE-migration"
	"github.com/AlexDev08/OpenCRE-migration/defs"
	"github.com/AlexDev08/OpenCRE-migration/internal/tester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) opencre.Client {
	t.Helper()
	c, err := opencre.NewClient(tester.TestDB(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestExportImportDir(t *testing.T) {
	ctx := context.TODO()
	source := newTestClient(t)

	cre, err := source.AddCRE(ctx, defs.NewCRE("111-000", "CREname", "CREdesc"))
	require.NoError(t, err)
	group, err := source.AddCRE(ctx, defs.NewCRE("111-001", "GroupName", "Groupdesc"))
	require.NoError(t, err)
	standard, err := source.AddStandard(ctx, defs.NewStandard("BarStand", "FooStand", "4.5.6", "https://example.com"))
	require.NoError(t, err)
	_, err = source.AddStandard(ctx, defs.NewStandard("Unlinked", "1", "", ""))
	require.NoError(t, err)
	_, err = source.AddStandard(ctx, defs.NewStandard("Unlinked", "2", "", ""))
	require.NoError(t, err)
	require.NoError(t, source.AddLink(ctx, cre, standard, ""))
	require.NoError(t, source.AddInternalLink(ctx, group, cre, ""))

	dir := t.TempDir()
	count, err := exportDir(ctx, source, dir)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"CREname.yaml", "GroupName.yaml", "Unlinked.yaml"}, names)

	target := newTestClient(t)
	imported := 0
	for _, name := range names {
		n, err := importFile(ctx, target, filepath.Join(dir, name))
		require.NoError(t, err)
		imported += n
	}
	assert.Equal(t, 4, imported)

	docs, err := target.GetCREs(ctx, opencre.CREQuery{Name: "CREname"})
	require.NoError(t, err)
	expected, err := source.GetCREs(ctx, opencre.CREQuery{Name: "CREname"})
	require.NoError(t, err)
	assert.Equal(t, expected, docs)

	unlinked, err := target.GetStandards(ctx, opencre.StandardQuery{Name: "Unlinked"})
	require.NoError(t, err)
	assert.Len(t, unlinked, 2)
}

func TestImportFile_Invalid(t *testing.T) {
	ctx := context.TODO()
	c := newTestClient(t)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("doctype: Widget\nname: x\n"), 0o644))

	_, err := importFile(ctx, c, path)
	assert.ErrorIs(t, err, opencre.ErrInvalidDocument)

	_, err = importFile(ctx, c, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestExportFileName(t *testing.T) {
	assert.Equal(t, "ASVS.yaml", exportFileName("ASVS"))
	assert.Equal(t, "a_b_c.yaml", exportFileName(`a/b\c`))
}

type closeErrWriter struct {
	bytes.Buffer
	err error
}

func (w *closeErrWriter) Close() error {
	return w.err
}

func TestWriteDocument(t *testing.T) {
	doc := defs.NewStandard("ASVS", "V1", "", "")

	w := &closeErrWriter{}
	require.NoError(t, writeDocument(w, doc, true))
	assert.True(t, bytes.HasPrefix(w.Bytes(), []byte("---\n")))
	assert.Contains(t, w.String(), "name: ASVS")

	flushErr := errors.New("disk full")
	assert.ErrorIs(t, writeDocument(&closeErrWriter{err: flushErr}, doc, false), flushErr)
}
