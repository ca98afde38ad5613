package engine

import (
	"context"
)

// Delete removes the bean's file (active or archived) and strips the ID
// from every other bean's dependency set. The allocator is deliberately
// not rewound.
func (e *Engine) Delete(ctx context.Context, id string) error {
	f, err := e.Store.Load(id)
	if err != nil {
		return err
	}
	if err := e.Store.Remove(f); err != nil {
		return err
	}

	if err := e.stripDependency(id); err != nil {
		return err
	}
	e.refresh()
	return nil
}

// stripDependency rewrites every bean that depends on id.
func (e *Engine) stripDependency(id string) error {
	paths, err := e.allBeanPaths()
	if err != nil {
		return err
	}
	now := e.now()
	for _, path := range paths {
		f, err := e.Store.LoadPath(path)
		if err != nil {
			return err
		}
		kept := f.Bean.Dependencies[:0]
		removed := false
		for _, dep := range f.Bean.Dependencies {
			if dep == id {
				removed = true
				continue
			}
			kept = append(kept, dep)
		}
		if !removed {
			continue
		}
		f.Bean.Dependencies = kept
		f.Bean.Touch(now)
		if err := e.Store.Write(f); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) allBeanPaths() ([]string, error) {
	active, err := e.Store.ListActive()
	if err != nil {
		return nil, err
	}
	archived, err := e.Store.ListArchived()
	if err != nil {
		return nil, err
	}
	return append(active, archived...), nil
}
