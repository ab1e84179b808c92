package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/doxindex"
	"github.com/fwojciec/doxindex/fs"
	"github.com/fwojciec/doxindex/js"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tableA = `var searchData=
[
  ['add',['add',['../classList.html#a1',1,'List']]],
  ['append',['append',['../classList.html#a2',1,'List']]]
];
`

const tableF = `var searchData=
[
  ['fail',['fail',['../classJTap.html#ac81',1,'JTap']]],
  ['fetch',['FETCH',['../Readonly_8pm.html#a808',1,'Readonly.pm']]],
  ['fetchsize',['FETCHSIZE',['../Readonly_8pm.html#ac5b',1,'Readonly.pm']]]
];
`

const functionsF = `var searchData=
[
  ['fail',['fail',['../classJTap.html#ac81',1,'JTap']]]
];
`

const sections = `var indexSectionsWithContent =
{
  0: "af",
  1: "f"
};

var indexSectionNames =
{
  0: "all",
  1: "functions"
};

var indexSectionLabels =
{
  0: "All",
  1: "Functions"
};
`

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func keys(idx *doxindex.Index, q string) []string {
	var keys []string
	for e := range idx.Lookup(q) {
		keys = append(keys, e.Key)
	}
	return keys
}

func TestLoader_LoadIndex(t *testing.T) {
	t.Parallel()

	t.Run("loads a single table file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"all_66.js": tableF})

		idx, err := fs.NewLoader(js.NewParser()).LoadIndex(context.Background(), filepath.Join(dir, "all_66.js"))

		require.NoError(t, err)
		assert.Equal(t, []string{"fetch", "fetchsize"}, keys(idx, "fetch"))
	})

	t.Run("merges the tables listed in searchdata.js", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{
			"searchdata.js":   sections,
			"all_61.js":       tableA,
			"all_66.js":       tableF,
			"functions_66.js": functionsF,
		})

		idx, err := fs.NewLoader(js.NewParser()).LoadIndex(context.Background(), dir)

		require.NoError(t, err)
		assert.Equal(t, []string{"add", "append", "fail", "fetch", "fetchsize"}, keys(idx, ""))
	})

	t.Run("finds the search directory inside HTML output", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{
			"search/searchdata.js": sections,
			"search/all_61.js":     tableA,
			"search/all_66.js":     tableF,
		})

		idx, err := fs.NewLoader(js.NewParser()).LoadIndex(context.Background(), dir)

		require.NoError(t, err)
		assert.Equal(t, 5, idx.Len())
	})

	t.Run("reads the selected section", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{
			"searchdata.js":   sections,
			"all_61.js":       tableA,
			"all_66.js":       tableF,
			"functions_66.js": functionsF,
		})
		loader := fs.NewLoader(js.NewParser())
		loader.Section = "functions"

		idx, err := loader.LoadIndex(context.Background(), dir)

		require.NoError(t, err)
		assert.Equal(t, []string{"fail"}, keys(idx, ""))
	})

	t.Run("globs tables when searchdata.js is missing", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{
			"all_66.js": tableF,
			"all_61.js": tableA,
		})

		idx, err := fs.NewLoader(js.NewParser()).LoadIndex(context.Background(), dir)

		require.NoError(t, err)
		assert.Equal(t, []string{"add", "append", "fail", "fetch", "fetchsize"}, keys(idx, ""))
	})

	t.Run("returns ENOTFOUND for a missing source", func(t *testing.T) {
		t.Parallel()

		_, err := fs.NewLoader(js.NewParser()).LoadIndex(context.Background(), filepath.Join(t.TempDir(), "missing"))

		assert.Equal(t, doxindex.ENOTFOUND, doxindex.ErrorCode(err))
	})

	t.Run("returns ENOTFOUND for a directory without tables", func(t *testing.T) {
		t.Parallel()

		_, err := fs.NewLoader(js.NewParser()).LoadIndex(context.Background(), t.TempDir())

		assert.Equal(t, doxindex.ENOTFOUND, doxindex.ErrorCode(err))
	})

	t.Run("returns ENOTFOUND for an unknown section", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"searchdata.js": sections, "all_61.js": tableA, "all_66.js": tableF})
		loader := fs.NewLoader(js.NewParser())
		loader.Section = "macros"

		_, err := loader.LoadIndex(context.Background(), dir)

		assert.Equal(t, doxindex.ENOTFOUND, doxindex.ErrorCode(err))
	})

	t.Run("fails the whole load when one table is malformed", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{
			"all_61.js": tableA,
			"all_66.js": `var searchData=[['fail',['fail',['',1,'JTap']]]];`,
		})

		idx, err := fs.NewLoader(js.NewParser()).LoadIndex(context.Background(), dir)

		require.Error(t, err)
		assert.Nil(t, idx)
		assert.Equal(t, doxindex.EMALFORMED, doxindex.ErrorCode(err))
		assert.Contains(t, doxindex.ErrorMessage(err), "all_66.js")
	})
}
