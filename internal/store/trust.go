package store

import (
	"os"
	"path/filepath"

	"github.com/steveyegge/beans/internal/types"
)

// TrustPath returns the location of the hooks trust marker.
func (s *Store) TrustPath() string { return filepath.Join(s.root, TrustFileName) }

// Trusted reports whether the user has marked the store's hooks runnable.
func (s *Store) Trusted() bool {
	_, err := os.Stat(s.TrustPath())
	return err == nil
}

// Trust writes the zero-byte trust marker.
func (s *Store) Trust() error {
	f, err := os.OpenFile(s.TrustPath(), os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return types.WrapIO(s.TrustPath(), err)
	}
	return f.Close()
}

// RevokeTrust removes the marker; hooks stop running immediately.
func (s *Store) RevokeTrust() error {
	if err := os.Remove(s.TrustPath()); err != nil && !os.IsNotExist(err) {
		return types.WrapIO(s.TrustPath(), err)
	}
	return nil
}
