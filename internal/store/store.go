// Package store owns the on-disk layout of a beans store: file discovery,
// atomic read-modify-rename mutation, and archive placement.
//
// There are no lock files. Every mutation is a full read, full modify, full
// rewrite to a sibling temp file, then rename; readers observe either the
// old or the new complete file, never a partial one.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/steveyegge/beans/internal/codec"
	"github.com/steveyegge/beans/internal/types"
	"github.com/steveyegge/beans/internal/validation"
)

// DirName is the marker directory that identifies a store root.
const DirName = ".beans"

// ArchiveDirName holds closed beans, partitioned archive/<YYYY>/<MM>/.
const ArchiveDirName = "archive"

// Reserved structured files living beside the bean documents.
const (
	ConfigFileName = "config.yaml"
	IndexFileName  = "index.yaml"
	TrustFileName  = ".hooks-trusted"
	HooksDirName   = "hooks"
)

// Store is a handle on one .beans directory.
type Store struct {
	root string
}

// Open wraps an existing store root (the .beans directory itself).
func Open(root string) *Store { return &Store{root: root} }

// Discover walks ancestors of start looking for a .beans directory.
func Discover(start string) (*Store, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return nil, types.WrapIO(start, err)
	}
	for {
		candidate := filepath.Join(dir, DirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return &Store{root: candidate}, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, types.E(types.KindNotFound, "no %s/ directory found in %s or any ancestor (run 'bn init' first)", DirName, start)
		}
		dir = parent
	}
}

// Init creates a store under dir and writes an initial config.
func Init(dir, project string) (*Store, error) {
	root := filepath.Join(dir, DirName)
	if _, err := os.Stat(filepath.Join(root, ConfigFileName)); err == nil {
		return nil, types.E(types.KindValidation, "store already initialized at %s", root)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, types.WrapIO(root, err)
	}
	s := &Store{root: root}
	cfg := &Config{Project: project, NextID: 1, AutoCloseParent: true, MaxTokens: DefaultMaxTokens}
	if err := s.SaveConfig(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// Root returns the .beans directory path.
func (s *Store) Root() string { return s.root }

// ProjectDir is the directory containing the store; verify commands run here.
func (s *Store) ProjectDir() string { return filepath.Dir(s.root) }

// ArchiveDir returns the archive subtree root.
func (s *Store) ArchiveDir() string { return filepath.Join(s.root, ArchiveDirName) }

// HooksDir returns the hook-script directory.
func (s *Store) HooksDir() string { return filepath.Join(s.root, HooksDirName) }

// IndexPath returns the index cache location.
func (s *Store) IndexPath() string { return filepath.Join(s.root, IndexFileName) }

// File is a bean together with where and how it is stored.
type File struct {
	Bean *types.Bean
	Path string
	Form codec.Form
}

// Archived reports whether the file lives under the archive subtree.
func (f *File) Archived() bool {
	return strings.Contains(f.Path, string(filepath.Separator)+ArchiveDirName+string(filepath.Separator))
}

// Find resolves an ID to its single file, searching both the active tree and
// the archive. Zero matches is not-found; more than one
// is a duplicate-ID fault naming every path.
func (s *Store) Find(id string) (string, error) {
	if err := validation.ValidateID(id); err != nil {
		return "", err
	}
	matches, err := s.globID(s.root, id)
	if err != nil {
		return "", err
	}
	archived, err := s.globArchiveID(id)
	if err != nil {
		return "", err
	}
	matches = append(matches, archived...)
	switch len(matches) {
	case 0:
		return "", types.E(types.KindNotFound, "bean %s not found", id)
	case 1:
		return matches[0], nil
	}
	sort.Strings(matches)
	return "", types.E(types.KindDuplicate, "duplicate bean ID %s: %s", id, strings.Join(matches, ", "))
}

// globID matches <id>-*.md and <id>.yml directly under dir.
func (s *Store) globID(dir, id string) ([]string, error) {
	var matches []string
	withSlug, err := filepath.Glob(filepath.Join(dir, id+"-*"+codec.ExtCanonical))
	if err != nil {
		return nil, types.WrapIO(dir, err)
	}
	matches = append(matches, withSlug...)
	legacy := filepath.Join(dir, id+codec.ExtLegacy)
	if _, err := os.Stat(legacy); err == nil {
		matches = append(matches, legacy)
	}
	// Bare <id>.md (slugless) is accepted for hand-written files.
	bare := filepath.Join(dir, id+codec.ExtCanonical)
	if _, err := os.Stat(bare); err == nil {
		matches = append(matches, bare)
	}
	return matches, nil
}

func (s *Store) globArchiveID(id string) ([]string, error) {
	var matches []string
	months, err := filepath.Glob(filepath.Join(s.ArchiveDir(), "*", "*"))
	if err != nil {
		return nil, types.WrapIO(s.ArchiveDir(), err)
	}
	for _, month := range months {
		found, err := s.globID(month, id)
		if err != nil {
			return nil, err
		}
		matches = append(matches, found...)
	}
	return matches, nil
}

// Load resolves and parses a bean by ID.
func (s *Store) Load(id string) (*File, error) {
	path, err := s.Find(id)
	if err != nil {
		return nil, err
	}
	return s.LoadPath(path)
}

// LoadPath parses the bean document at path.
func (s *Store) LoadPath(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.WrapIO(path, err)
	}
	doc, err := codec.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f := &File{Bean: doc.Bean, Path: path, Form: doc.Form}
	f.Bean.IsArchived = f.Archived()
	return f, nil
}

// Filename returns the canonical filename for a bean.
func Filename(bean *types.Bean) string {
	if bean.Slug == "" {
		return bean.ID + codec.ExtCanonical
	}
	return bean.ID + "-" + bean.Slug + codec.ExtCanonical
}

// PathFor returns the active-tree path a new bean will be written to.
func (s *Store) PathFor(bean *types.Bean) string {
	return filepath.Join(s.root, Filename(bean))
}

// archivePathFor places a closed bean under archive/<YYYY>/<MM>/ by its
// closed-at timestamp.
func (s *Store) archivePathFor(f *File, closedAt time.Time) string {
	return filepath.Join(s.ArchiveDir(),
		fmt.Sprintf("%04d", closedAt.UTC().Year()),
		fmt.Sprintf("%02d", int(closedAt.UTC().Month())),
		filepath.Base(f.Path))
}

// Write serializes the file's bean in its recorded form and commits it with
// a sibling-temp-file rename.
func (s *Store) Write(f *File) error {
	data, err := codec.Emit(&codec.Document{Bean: f.Bean, Form: f.Form})
	if err != nil {
		return err
	}
	return atomicWrite(f.Path, data)
}

// Create writes a brand-new bean in the frontmatter form. Fails with a
// duplicate error if the target filename already exists; this failure is not
// retried.
func (s *Store) Create(bean *types.Bean) (*File, error) {
	f := &File{Bean: bean, Path: s.PathFor(bean), Form: FormForNew()}
	if _, err := os.Stat(f.Path); err == nil {
		return nil, types.E(types.KindDuplicate, "bean file already exists: %s", f.Path)
	}
	if err := s.Write(f); err != nil {
		return nil, err
	}
	return f, nil
}

// FormForNew is the document form used for newly created beans.
func FormForNew() codec.Form { return codec.FormFrontmatter }

// Archive moves a closed bean's file into the archive subtree, creating
// the year/month directories as needed.
func (s *Store) Archive(f *File, closedAt time.Time) error {
	dest := s.archivePathFor(f, closedAt)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return types.WrapIO(dest, err)
	}
	if err := os.Rename(f.Path, dest); err != nil {
		return types.WrapIO(f.Path, err)
	}
	f.Path = dest
	f.Bean.IsArchived = true
	return nil
}

// Unarchive moves a file back to the active tree. Fails when an active bean
// already uses the ID.
func (s *Store) Unarchive(f *File) error {
	if !f.Archived() {
		return types.E(types.KindStatusConflict, "bean %s is not archived", f.Bean.ID)
	}
	active, err := s.globID(s.root, f.Bean.ID)
	if err != nil {
		return err
	}
	if len(active) > 0 {
		return types.E(types.KindDuplicate, "an active bean already uses ID %s: %s", f.Bean.ID, active[0])
	}
	dest := filepath.Join(s.root, filepath.Base(f.Path))
	if err := os.Rename(f.Path, dest); err != nil {
		return types.WrapIO(f.Path, err)
	}
	f.Path = dest
	f.Bean.IsArchived = false
	return nil
}

// Remove deletes a bean file.
func (s *Store) Remove(f *File) error {
	if err := os.Remove(f.Path); err != nil {
		return types.WrapIO(f.Path, err)
	}
	return nil
}

// ListActive returns the bean document paths directly under the store root.
func (s *Store) ListActive() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, types.WrapIO(s.root, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if isBeanFile(e.Name()) {
			paths = append(paths, filepath.Join(s.root, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// ListArchived returns every bean document path under the archive subtree.
func (s *Store) ListArchived() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(s.ArchiveDir(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() && isBeanFile(d.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, types.WrapIO(s.ArchiveDir(), err)
	}
	sort.Strings(paths)
	return paths, nil
}

// isBeanFile filters out the reserved structured files and temp files.
func isBeanFile(name string) bool {
	switch name {
	case ConfigFileName, IndexFileName, TrustFileName:
		return false
	}
	if strings.HasPrefix(name, ".") {
		return false
	}
	return strings.HasSuffix(name, codec.ExtCanonical) || strings.HasSuffix(name, codec.ExtLegacy)
}

// atomicWrite commits data to path via a temp file in the same directory.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return types.WrapIO(dir, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return types.WrapIO(path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return types.WrapIO(path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return types.WrapIO(path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return types.WrapIO(path, err)
	}
	return nil
}
