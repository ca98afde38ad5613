// Package index maintains the flattened query cache rebuilt from the bean
// files. The cache is never the source of truth: deleting it is safe and a
// rebuild reproduces identical content.
package index

import (
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/steveyegge/beans/internal/store"
	"github.com/steveyegge/beans/internal/types"
	"github.com/steveyegge/beans/internal/validation"
)

// Entry is a read-only projection of a bean, enough to answer queries
// without opening the file again.
type Entry struct {
	ID           string       `yaml:"id"`
	Title        string       `yaml:"title"`
	Status       types.Status `yaml:"status"`
	Priority     int          `yaml:"priority"`
	Parent       string       `yaml:"parent,omitempty"`
	Dependencies []string     `yaml:"dependencies,omitempty"`
	Requires     []string     `yaml:"requires,omitempty"`
	Produces     []string     `yaml:"produces,omitempty"`
	Labels       []string     `yaml:"labels,omitempty"`
	Assignee     string       `yaml:"assignee,omitempty"`
	ClaimedBy    string       `yaml:"claimed_by,omitempty"`
	HasVerify    bool         `yaml:"has_verify,omitempty"`
	Tokens       int64        `yaml:"tokens,omitempty"`
	Archived     bool         `yaml:"archived,omitempty"`
	UpdatedAt    time.Time    `yaml:"updated_at"`
	Path         string       `yaml:"path"`
}

// entryOf projects a parsed bean file.
func entryOf(f *store.File) Entry {
	b := f.Bean
	return Entry{
		ID:           b.ID,
		Title:        b.Title,
		Status:       b.Status,
		Priority:     b.Priority,
		Parent:       b.Parent,
		Dependencies: b.Dependencies,
		Requires:     b.Requires,
		Produces:     b.Produces,
		Labels:       b.Labels,
		Assignee:     b.Assignee,
		ClaimedBy:    b.ClaimedBy,
		HasVerify:    b.Verify != "",
		Tokens:       b.Tokens,
		Archived:     f.Archived(),
		UpdatedAt:    b.UpdatedAt,
		Path:         f.Path,
	}
}

// Index is a consistent snapshot of the store.
type Index struct {
	Entries []Entry `yaml:"beans"`

	// Warnings collected during the build (mixed document forms, etc.).
	// Not persisted.
	Warnings []string `yaml:"-"`
}

// Options controls how much of the store a build or staleness check sees.
type Options struct {
	// IncludeArchived folds the archive subtree into the snapshot.
	IncludeArchived bool
}

// Build walks the store and parses every bean's structured block. Bodies of
// frontmatter documents are not interpreted beyond the description split.
// Duplicate IDs across any two files are a hard fault naming both paths.
func Build(s *store.Store, opts Options) (*Index, error) {
	paths, err := s.ListActive()
	if err != nil {
		return nil, err
	}
	archived, err := s.ListArchived()
	if err != nil {
		return nil, err
	}
	all := append(append([]string{}, paths...), archived...)

	var (
		mu      sync.Mutex
		entries []Entry
	)
	var g errgroup.Group
	g.SetLimit(8)
	for _, path := range all {
		g.Go(func() error {
			f, err := s.LoadPath(path)
			if err != nil {
				return err
			}
			e := entryOf(f)
			mu.Lock()
			entries = append(entries, e)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Duplicate detection spans active and archived space.
	seen := make(map[string]string, len(entries))
	for _, e := range entries {
		if prev, ok := seen[e.ID]; ok {
			first, second := prev, e.Path
			if second < first {
				first, second = second, first
			}
			return nil, types.E(types.KindDuplicate, "duplicate bean ID %s: %s and %s", e.ID, first, second)
		}
		seen[e.ID] = e.Path
	}

	sort.Slice(entries, func(i, j int) bool {
		return validation.NaturalCompare(entries[i].ID, entries[j].ID) < 0
	})

	idx := &Index{Entries: entries}
	idx.Warnings = formWarnings(paths)
	if !opts.IncludeArchived {
		idx.Entries = filterActive(idx.Entries)
	}
	return idx, nil
}

// formWarnings flags stores that mix canonical and legacy documents.
func formWarnings(activePaths []string) []string {
	var md, yml bool
	for _, p := range activePaths {
		switch {
		case strings.HasSuffix(p, ".md"):
			md = true
		case strings.HasSuffix(p, ".yml"):
			yml = true
		}
	}
	if md && yml {
		return []string{"store mixes canonical (.md) and legacy (.yml) bean documents"}
	}
	return nil
}

func filterActive(entries []Entry) []Entry {
	out := entries[:0]
	for _, e := range entries {
		if !e.Archived {
			out = append(out, e)
		}
	}
	return out
}

// Stale compares the newest bean-file mtime against the cache file's mtime.
// A missing cache is stale. Archived files contribute only when the caller
// asked for archived data.
func Stale(s *store.Store, opts Options) (bool, error) {
	info, err := os.Stat(s.IndexPath())
	if err != nil {
		return true, nil
	}
	cacheTime := info.ModTime()

	paths, err := s.ListActive()
	if err != nil {
		return false, err
	}
	if opts.IncludeArchived {
		archived, err := s.ListArchived()
		if err != nil {
			return false, err
		}
		paths = append(paths, archived...)
	}
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			return true, nil // file vanished since listing; rebuild
		}
		if fi.ModTime().After(cacheTime) {
			return true, nil
		}
	}
	return false, nil
}

// Save persists the snapshot to the cache file. Two concurrent writers
// produce identical content, so last-writer-wins is safe.
func Save(s *store.Store, idx *Index) error {
	data, err := yaml.Marshal(idx)
	if err != nil {
		return types.E(types.KindIO, "serializing index: %v", err)
	}
	return atomicWriteIndex(s.IndexPath(), data)
}

// Load reads the cache file without checking freshness.
func Load(s *store.Store) (*Index, error) {
	data, err := os.ReadFile(s.IndexPath())
	if err != nil {
		return nil, types.WrapIO(s.IndexPath(), err)
	}
	var idx Index
	if err := yaml.Unmarshal(data, &idx); err != nil {
		return nil, types.E(types.KindValidation, "parsing %s: %v", s.IndexPath(), err)
	}
	return &idx, nil
}

// LoadOrRebuild is the main entry point: loads the cache when fresh,
// otherwise rebuilds and persists it.
//
// A cache built without archived entries is always considered stale for a
// caller that wants them.
func LoadOrRebuild(s *store.Store, opts Options) (*Index, error) {
	stale, err := Stale(s, opts)
	if err != nil {
		return nil, err
	}
	if !stale && !opts.IncludeArchived {
		if idx, err := Load(s); err == nil {
			return idx, nil
		}
		// Unreadable cache is treated as stale, never fatal.
	}
	idx, err := Build(s, opts)
	if err != nil {
		return nil, err
	}
	if !opts.IncludeArchived {
		if err := Save(s, idx); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

// Rebuild unconditionally rebuilds and persists the active-tree cache.
// Mutating commands call this after their final rename.
func Rebuild(s *store.Store) (*Index, error) {
	idx, err := Build(s, Options{})
	if err != nil {
		return nil, err
	}
	if err := Save(s, idx); err != nil {
		return nil, err
	}
	return idx, nil
}

// Get returns the entry for id, or nil.
func (idx *Index) Get(id string) *Entry {
	for i := range idx.Entries {
		if idx.Entries[i].ID == id {
			return &idx.Entries[i]
		}
	}
	return nil
}

// Children returns entries whose parent field is id, in natural order.
func (idx *Index) Children(id string) []Entry {
	var out []Entry
	for _, e := range idx.Entries {
		if e.Parent == id {
			out = append(out, e)
		}
	}
	return out
}

func atomicWriteIndex(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return types.WrapIO(path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return types.WrapIO(path, err)
	}
	return nil
}
