package engine

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/steveyegge/beans/internal/store"
	"github.com/steveyegge/beans/internal/types"
	"github.com/steveyegge/beans/internal/validation"
)

// Adopt moves existing beans under a parent, renumbering them into the next
// free child slots and rewriting every reference to the old IDs throughout
// the store. The multi-file rename is staged so a partial failure can be
// rolled back: new files are written under hidden staging names first, then
// committed by sequential rename, and the old files are removed only after
// every rename succeeded.
func (e *Engine) Adopt(ctx context.Context, parentID string, ids []string) (map[string]string, error) {
	if err := validation.ValidateID(parentID); err != nil {
		return nil, err
	}
	if !e.exists(parentID) {
		return nil, types.E(types.KindNotFound, "parent bean %s not found", parentID)
	}
	if len(ids) == 0 {
		return nil, types.E(types.KindValidation, "at least one bean ID is required")
	}

	adopted := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == parentID {
			return nil, types.E(types.KindCycleDetected, "bean %s cannot adopt itself", parentID)
		}
		adopted[id] = true
	}
	// The new parent must not sit underneath any adopted bean.
	for cur := parentID; cur != ""; cur = validation.ParentID(cur) {
		if adopted[cur] && cur != parentID {
			return nil, types.E(types.KindCycleDetected, "adopting %s under %s would make the hierarchy cyclic", cur, parentID)
		}
	}

	type staged struct {
		oldFile  *store.File
		newID    string
		staging  string
		finalDst string
	}

	now := e.now()
	mapping := make(map[string]string, len(ids))
	var plan []staged

	// Phase 1: write renumbered copies under staging names. Old files stay
	// untouched, so any failure here simply discards the staging files.
	cleanupStaging := func() {
		for _, st := range plan {
			os.Remove(st.staging)
		}
	}
	nextSlot, err := e.maxChildSlot(parentID)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		f, err := e.Store.Load(id)
		if err != nil {
			cleanupStaging()
			return nil, err
		}
		nextSlot++
		newID := parentID + "." + strconv.Itoa(nextSlot)
		bean := f.Bean
		bean.ID = newID
		bean.Parent = parentID
		bean.Touch(now)
		finalDst := filepath.Join(filepath.Dir(f.Path), store.Filename(bean))
		st := staged{
			oldFile:  f,
			newID:    newID,
			staging:  filepath.Join(filepath.Dir(f.Path), ".adopt-"+store.Filename(bean)),
			finalDst: finalDst,
		}
		stagedFile := &store.File{Bean: bean, Path: st.staging, Form: f.Form}
		if err := e.Store.Write(stagedFile); err != nil {
			cleanupStaging()
			return nil, err
		}
		plan = append(plan, st)
		mapping[id] = newID
	}

	// Phase 2: commit by sequential rename. On failure, remove committed
	// finals; old files are still intact.
	var committed []string
	for _, st := range plan {
		if err := os.Rename(st.staging, st.finalDst); err != nil {
			for _, done := range committed {
				os.Remove(done)
			}
			cleanupStaging()
			return nil, types.WrapIO(st.staging, err)
		}
		committed = append(committed, st.finalDst)
	}

	// Phase 3: retire the old files.
	for _, st := range plan {
		if err := os.Remove(st.oldFile.Path); err != nil {
			return nil, types.WrapIO(st.oldFile.Path, err)
		}
	}

	if err := e.rewriteReferences(mapping, now); err != nil {
		return nil, err
	}
	e.refresh()
	return mapping, nil
}

// rewriteReferences updates parent and dependency fields store-wide after
// a renumbering.
func (e *Engine) rewriteReferences(mapping map[string]string, now time.Time) error {
	paths, err := e.allBeanPaths()
	if err != nil {
		return err
	}
	for _, path := range paths {
		f, err := e.Store.LoadPath(path)
		if err != nil {
			return err
		}
		changed := false
		if newID, ok := mapping[f.Bean.Parent]; ok {
			f.Bean.Parent = newID
			changed = true
		}
		for i, dep := range f.Bean.Dependencies {
			if newID, ok := mapping[dep]; ok {
				f.Bean.Dependencies[i] = newID
				changed = true
			}
		}
		if !changed {
			continue
		}
		f.Bean.Touch(now)
		if err := e.Store.Write(f); err != nil {
			return err
		}
	}
	return nil
}
