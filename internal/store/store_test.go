package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/beans/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Init(dir, "test")
	require.NoError(t, err)
	return s
}

func newBean(id, title string) *types.Bean {
	bean := types.New(id, title, time.Now().UTC().Truncate(time.Second))
	bean.Slug = "task"
	return bean
}

func TestDiscoverWalksAncestors(t *testing.T) {
	dir := t.TempDir()
	_, err := Init(dir, "p")
	require.NoError(t, err)

	child := filepath.Join(dir, "src", "deep")
	require.NoError(t, os.MkdirAll(child, 0o755))

	s, err := Discover(child)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DirName), s.Root())
}

func TestDiscoverPrefersClosestRoot(t *testing.T) {
	dir := t.TempDir()
	_, err := Init(dir, "outer")
	require.NoError(t, err)
	inner := filepath.Join(dir, "sub")
	require.NoError(t, os.MkdirAll(inner, 0o755))
	_, err = Init(inner, "inner")
	require.NoError(t, err)

	s, err := Discover(inner)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(inner, DirName), s.Root())
}

func TestDiscoverFailsWithoutStore(t *testing.T) {
	_, err := Discover(t.TempDir())
	require.Error(t, err)
	assert.Equal(t, types.KindNotFound, types.KindOf(err))
}

func TestInitRefusesDoubleInit(t *testing.T) {
	dir := t.TempDir()
	_, err := Init(dir, "p")
	require.NoError(t, err)
	_, err = Init(dir, "p")
	assert.Error(t, err)
}

func TestCreateFindLoad(t *testing.T) {
	s := newTestStore(t)
	bean := newBean("1", "First task")
	_, err := s.Create(bean)
	require.NoError(t, err)

	path, err := s.Find("1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Root(), "1-task.md"), path)

	f, err := s.Load("1")
	require.NoError(t, err)
	assert.Equal(t, "First task", f.Bean.Title)
	assert.False(t, f.Archived())
}

func TestFindNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Find("999")
	require.Error(t, err)
	assert.Equal(t, types.KindNotFound, types.KindOf(err))
}

func TestFindRejectsInvalidID(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Find("../escape")
	require.Error(t, err)
	assert.Equal(t, types.KindValidation, types.KindOf(err))
}

func TestFindDoesNotPrefixMatch(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Create(newBean("2", "two"))
	require.NoError(t, err)
	_, err = s.Create(newBean("20", "twenty"))
	require.NoError(t, err)

	path, err := s.Find("2")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Root(), "2-task.md"), path)
}

func TestFindDuplicateFault(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Create(newBean("1", "one"))
	require.NoError(t, err)
	// A second file with the same ID but different slug.
	dup := newBean("1", "other")
	dup.Slug = "other"
	require.NoError(t, s.Write(&File{Bean: dup, Path: filepath.Join(s.Root(), "1-other.md"), Form: FormForNew()}))

	_, err = s.Find("1")
	require.Error(t, err)
	assert.Equal(t, types.KindDuplicate, types.KindOf(err))
	assert.Contains(t, err.Error(), "1-task.md")
	assert.Contains(t, err.Error(), "1-other.md")
}

func TestLegacyExtensionReadable(t *testing.T) {
	s := newTestStore(t)
	content := "id: \"7\"\ntitle: Legacy bean\nstatus: open\ncreated_at: 2026-01-01T00:00:00Z\nupdated_at: 2026-01-01T00:00:00Z\n"
	require.NoError(t, os.WriteFile(filepath.Join(s.Root(), "7.yml"), []byte(content), 0o644))

	f, err := s.Load("7")
	require.NoError(t, err)
	assert.Equal(t, "Legacy bean", f.Bean.Title)

	// Writing back preserves the flat form.
	f.Bean.Title = "Edited legacy bean"
	require.NoError(t, s.Write(f))
	data, err := os.ReadFile(f.Path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "---")
	assert.Contains(t, string(data), "Edited legacy bean")
}

func TestArchiveAndUnarchive(t *testing.T) {
	s := newTestStore(t)
	bean := newBean("1", "to archive")
	f, err := s.Create(bean)
	require.NoError(t, err)

	closedAt := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Archive(f, closedAt))
	assert.Equal(t, filepath.Join(s.Root(), "archive", "2026", "03", "1-task.md"), f.Path)
	assert.True(t, f.Archived())

	// Findable from the archive.
	path, err := s.Find("1")
	require.NoError(t, err)
	assert.Equal(t, f.Path, path)

	require.NoError(t, s.Unarchive(f))
	assert.Equal(t, filepath.Join(s.Root(), "1-task.md"), f.Path)
	assert.False(t, f.Archived())
}

func TestUnarchiveRefusesActiveCollision(t *testing.T) {
	s := newTestStore(t)
	f, err := s.Create(newBean("1", "first"))
	require.NoError(t, err)
	require.NoError(t, s.Archive(f, time.Now()))

	// A new active bean takes the ID.
	_, err = s.Create(newBean("1", "usurper"))
	require.NoError(t, err)

	archived, err := s.LoadPath(f.Path)
	require.NoError(t, err)
	err = s.Unarchive(archived)
	require.Error(t, err)
	assert.Equal(t, types.KindDuplicate, types.KindOf(err))
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	s := newTestStore(t)
	f, err := s.Create(newBean("1", "x"))
	require.NoError(t, err)
	f.Bean.Title = "y"
	require.NoError(t, s.Write(f))

	entries, err := os.ReadDir(s.Root())
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-")
	}
}

func TestListActiveExcludesStructuredFiles(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Create(newBean("1", "x"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(s.IndexPath(), []byte("beans: []\n"), 0o644))
	require.NoError(t, s.Trust())

	paths, err := s.ListActive()
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Contains(t, paths[0], "1-task.md")
}

func TestAllocateIDMonotonic(t *testing.T) {
	s := newTestStore(t)
	id1, err := s.AllocateID(nil)
	require.NoError(t, err)
	id2, err := s.AllocateID(nil)
	require.NoError(t, err)
	assert.Equal(t, "1", id1)
	assert.Equal(t, "2", id2)

	cfg, err := s.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.NextID)
}

func TestAllocateIDRetriesOnCollision(t *testing.T) {
	s := newTestStore(t)
	// Simulate a concurrent create having taken "1".
	id, err := s.AllocateID(func(candidate string) bool { return candidate == "1" })
	require.NoError(t, err)
	assert.Equal(t, "2", id)
}

func TestConfigRoundTrip(t *testing.T) {
	s := newTestStore(t)
	cfg, err := s.LoadConfig()
	require.NoError(t, err)
	cfg.Project = "renamed"
	cfg.MaxTokens = 1234
	cfg.Run = "agent run {id}"
	require.NoError(t, s.SaveConfig(cfg))

	loaded, err := s.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestConfigAutoCloseParentDefaultsTrue(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.ConfigPath(), []byte("project: test\nnext_id: 1\n"), 0o644))
	cfg, err := s.LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.AutoCloseParent)
}

func TestTrustMarker(t *testing.T) {
	s := newTestStore(t)
	assert.False(t, s.Trusted())
	require.NoError(t, s.Trust())
	assert.True(t, s.Trusted())
	require.NoError(t, s.RevokeTrust())
	assert.False(t, s.Trusted())
	require.NoError(t, s.RevokeTrust()) // idempotent
}
