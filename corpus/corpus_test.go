package corpus

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCorpus(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"bio/b.txt":           "Cells divide. Cells grow.",
		"bio/a.html":          "<html><body><h1>Genes</h1><script>var acid;</script></body></html>",
		"bio/.hidden":         "ignored",
		"chem/acid.txt":       "Acids and bases",
		"phys/quark.txt":      "Quarks",
		"unlisted/ignore.txt": "not a category",
	}
	for name, content := range files {
		p := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	return root
}

func TestLoadDirectory(t *testing.T) {
	root := writeCorpus(t)

	examples, err := LoadDirectory(context.Background(), root, []string{"bio", "chem"})
	require.NoError(t, err)
	require.Len(t, examples, 3)

	assert.Equal(t, "bio/a.html", examples[0].Name)
	assert.Equal(t, 0, examples[0].Category)
	assert.Equal(t, 1.0, examples[0].Vector["gene"])
	assert.Equal(t, 0.0, examples[0].Vector["acid"], "script text is not part of the document")

	assert.Equal(t, "bio/b.txt", examples[1].Name)
	assert.Equal(t, 2.0, examples[1].Vector["cell"])

	assert.Equal(t, "chem/acid.txt", examples[2].Name)
	assert.Equal(t, 1, examples[2].Category)
}

func TestLoadMissingCategoryDirectory(t *testing.T) {
	root := writeCorpus(t)

	examples, err := LoadDirectory(context.Background(), root, []string{"chem", "astro"})
	require.NoError(t, err)
	require.Len(t, examples, 1)
	assert.Equal(t, 0, examples[0].Category)
}

func TestLoadEmptyCorpus(t *testing.T) {
	_, err := LoadDirectory(context.Background(), t.TempDir(), []string{"bio"})
	assert.ErrorIs(t, err, ErrEmptyCorpus)
}

func TestLoadCancelled(t *testing.T) {
	root := writeCorpus(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadDirectory(ctx, root, []string{"bio", "chem"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoaderCache(t *testing.T) {
	root := writeCorpus(t)
	cacheFile := filepath.Join(t.TempDir(), "cache", "corpus.gz")

	loader := &Loader{Categories: []string{"bio", "chem", "phys"}, CacheFile: cacheFile}
	first, err := loader.Load(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, first, 4)

	_, err = os.Stat(cacheFile)
	require.NoError(t, err)

	// the cache is used once written, even if the corpus is gone
	require.NoError(t, os.RemoveAll(root))
	second, err := loader.Load(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Name, second[i].Name)
		assert.Equal(t, first[i].Category, second[i].Category)
		assert.Equal(t, first[i].Vector, second[i].Vector)
	}

	// a cache read with fewer categories drops the others
	narrow := &Loader{Categories: []string{"phys"}, CacheFile: cacheFile}
	examples, err := narrow.Load(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, examples, 1)
	assert.Equal(t, "phys/quark.txt", examples[0].Name)
}

func TestLoaderNoOpFileOps(t *testing.T) {
	root := writeCorpus(t)
	cacheFile := filepath.Join(t.TempDir(), "corpus.gz")

	loader := &Loader{Categories: []string{"bio"}, CacheFile: cacheFile, FileOps: FileOpsNoOp{}}
	_, err := loader.Load(context.Background(), root)
	require.NoError(t, err)

	_, err = os.Stat(cacheFile)
	assert.True(t, os.IsNotExist(err))
}

func TestCompressAndWriteGzipFile(t *testing.T) {
	dir := t.TempDir()
	docs := []Document{{Name: "bio/a", Category: "bio", Terms: map[string]float64{"cell": 2}}}

	require.NoError(t, FileOpsImpl{}.CompressAndWriteGzipFile("docs.gz", docs, dir))

	got, err := ReadCache(filepath.Join(dir, "docs.gz"))
	require.NoError(t, err)
	assert.Equal(t, docs, got)

	_, err = ReadCache(filepath.Join(dir, "missing.gz"))
	assert.True(t, os.IsNotExist(err))
}
