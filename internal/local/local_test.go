package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zulandar/roadmapper/internal/catalog"
)

func sampleSpec() catalog.RepoSpec {
	return catalog.RepoSpec{
		Name: "retail-sales-etl",
		Files: []catalog.File{
			{Path: "README.md", Content: "# Retail\n"},
			{Path: "glue_jobs/transform_sales.py", Content: "# job\n"},
			{Path: "architecture/diagram.png", Content: ""},
		},
	}
}

func TestEnsure_CreatesTree(t *testing.T) {
	root := t.TempDir()
	m := New(root)

	n, err := m.Ensure(context.Background(), sampleSpec())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	data, err := os.ReadFile(filepath.Join(root, "retail-sales-etl", "glue_jobs", "transform_sales.py"))
	require.NoError(t, err)
	assert.Equal(t, "# job\n", string(data))

	info, err := os.Stat(filepath.Join(root, "retail-sales-etl", "architecture", "diagram.png"))
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestEnsure_IsIdempotentAndKeepsEdits(t *testing.T) {
	root := t.TempDir()
	m := New(root)
	ctx := context.Background()

	_, err := m.Ensure(ctx, sampleSpec())
	require.NoError(t, err)

	readme := filepath.Join(root, "retail-sales-etl", "README.md")
	require.NoError(t, os.WriteFile(readme, []byte("# edited by hand\n"), 0o644))

	n, err := m.Ensure(ctx, sampleSpec())
	require.NoError(t, err)
	assert.Zero(t, n)

	data, err := os.ReadFile(readme)
	require.NoError(t, err)
	assert.Equal(t, "# edited by hand\n", string(data))
}

func TestMissing_DoesNotWrite(t *testing.T) {
	root := t.TempDir()
	m := New(root)

	missing, err := m.Missing(context.Background(), sampleSpec())
	require.NoError(t, err)
	assert.Len(t, missing, 3)

	_, err = os.Stat(filepath.Join(root, "retail-sales-etl"))
	assert.True(t, os.IsNotExist(err))
}

func TestMissing_AfterPartialEnsure(t *testing.T) {
	root := t.TempDir()
	m := New(root)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "retail-sales-etl"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "retail-sales-etl", "README.md"), []byte("x"), 0o644))

	missing, err := m.Missing(context.Background(), sampleSpec())
	require.NoError(t, err)
	assert.Equal(t, []string{"glue_jobs/transform_sales.py", "architecture/diagram.png"}, missing)
}

func TestEnsure_RejectsEscapingPath(t *testing.T) {
	m := New(t.TempDir())
	spec := catalog.RepoSpec{Name: "r", Files: []catalog.File{{Path: "../outside.txt"}}}

	_, err := m.Ensure(context.Background(), spec)
	assert.ErrorContains(t, err, "escapes")
}

func TestEnsure_FileWhereDirectoryExpected(t *testing.T) {
	root := t.TempDir()
	m := New(root)
	require.NoError(t, os.WriteFile(filepath.Join(root, "retail-sales-etl"), []byte("not a dir"), 0o644))

	_, err := m.Ensure(context.Background(), sampleSpec())
	assert.ErrorContains(t, err, "local: mkdir")
}
