package config

import (
	"modbound/internal/errors"
)

// ConfigEdit is one queued mutation of the policy document. Edits are
// immutable values; they are validated against the in-memory module set when
// enqueued and applied to disk as a single batch.
type ConfigEdit interface {
	isConfigEdit()
}

// CreateModule declares a new module with an empty dependency list
type CreateModule struct{ Path string }

// DeleteModule removes a module declaration
type DeleteModule struct{ Path string }

// MarkModuleAsUtility sets the utility marker on a module
type MarkModuleAsUtility struct{ Path string }

// UnmarkModuleAsUtility removes the utility marker from a module
type UnmarkModuleAsUtility struct{ Path string }

// AddDependency appends a dependency edge to a module
type AddDependency struct {
	Path       string
	Dependency string
}

// RemoveDependency removes a dependency edge from a module
type RemoveDependency struct {
	Path       string
	Dependency string
}

// AddSourceRoot appends a source root, guarding against duplicates
type AddSourceRoot struct{ Filepath string }

// RemoveSourceRoot removes a source root
type RemoveSourceRoot struct{ Filepath string }

func (CreateModule) isConfigEdit()          {}
func (DeleteModule) isConfigEdit()          {}
func (MarkModuleAsUtility) isConfigEdit()   {}
func (UnmarkModuleAsUtility) isConfigEdit() {}
func (AddDependency) isConfigEdit()         {}
func (RemoveDependency) isConfigEdit()      {}
func (AddSourceRoot) isConfigEdit()         {}
func (RemoveSourceRoot) isConfigEdit()      {}

// ConfigEditor is the capability shared by the top-level config and each
// domain: queue validated edits, then commit them in one batch. Editors are
// single-writer; concurrent enqueue requires external locking.
type ConfigEditor interface {
	EnqueueEdit(edit ConfigEdit) error
	ApplyEdits() error
}

// EnqueueEdit validates an edit against the in-memory model and queues it.
// Domains get first refusal: an edit accepted by any domain is not also
// queued at the top level, and a top-level rejection is forgiven when some
// domain accepted the edit.
func (c *ProjectConfig) EnqueueEdit(edit ConfigEdit) error {
	domainAccepted := false
	for _, domain := range c.domains {
		if err := domain.EnqueueEdit(edit); err == nil {
			domainAccepted = true
		}
	}

	var err error
	switch e := edit.(type) {
	case CreateModule:
		switch {
		case domainAccepted:
			err = errors.Newf(errors.EditNotApplicable, "module %q created by a domain", e.Path)
		case c.isDeclared(e.Path):
			err = errors.Newf(errors.ModuleAlreadyExists, "module %q already exists", e.Path)
		default:
			c.pendingEdits = append(c.pendingEdits, edit)
		}
	case DeleteModule, MarkModuleAsUtility, UnmarkModuleAsUtility, AddDependency, RemoveDependency:
		path := editModulePath(edit)
		if c.declaresTopLevel(path) {
			c.pendingEdits = append(c.pendingEdits, edit)
		} else {
			err = errors.Newf(errors.ModuleNotFound, "module %q is not declared", path)
		}
	case AddSourceRoot, RemoveSourceRoot:
		// Source root edits always apply to the project config
		c.pendingEdits = append(c.pendingEdits, edit)
	default:
		err = errors.Newf(errors.EditNotApplicable, "unknown edit type %T", edit)
	}

	if err != nil && domainAccepted {
		return nil
	}
	return err
}

// ApplyEdits commits all queued edits: every domain's queue first, then the
// top-level queue against the on-disk document. An empty queue is a no-op.
// The queue is cleared only after a fully successful write; failures leave
// both the queue and the document untouched.
func (c *ProjectConfig) ApplyEdits() error {
	for _, domain := range c.domains {
		if err := domain.ApplyEdits(); err != nil {
			return err
		}
	}

	if len(c.pendingEdits) == 0 {
		return nil
	}
	if c.location == "" {
		return errors.Newf(errors.ConfigDoesNotExist, "config has no disk location")
	}

	if err := applyEditsToFile(c.location, c.pendingEdits, ""); err != nil {
		return err
	}
	c.pendingEdits = nil
	return nil
}

// HasEdits reports whether any edits are queued at the top level
func (c *ProjectConfig) HasEdits() bool {
	return len(c.pendingEdits) > 0
}

// PendingEdits returns the queued top-level edits in order
func (c *ProjectConfig) PendingEdits() []ConfigEdit {
	return c.pendingEdits
}

// CreateModule queues creation of a new module declaration
func (c *ProjectConfig) CreateModule(path string) error {
	return c.EnqueueEdit(CreateModule{Path: path})
}

// DeleteModule queues deletion of a module declaration
func (c *ProjectConfig) DeleteModule(path string) error {
	return c.EnqueueEdit(DeleteModule{Path: path})
}

// MarkModuleAsUtility queues setting the utility marker on a module
func (c *ProjectConfig) MarkModuleAsUtility(path string) error {
	return c.EnqueueEdit(MarkModuleAsUtility{Path: path})
}

// UnmarkModuleAsUtility queues removing the utility marker from a module
func (c *ProjectConfig) UnmarkModuleAsUtility(path string) error {
	return c.EnqueueEdit(UnmarkModuleAsUtility{Path: path})
}

// AddDependency queues adding a dependency edge to a module
func (c *ProjectConfig) AddDependency(path, dependency string) error {
	return c.EnqueueEdit(AddDependency{Path: path, Dependency: dependency})
}

// RemoveDependency queues removing a dependency edge from a module
func (c *ProjectConfig) RemoveDependency(path, dependency string) error {
	return c.EnqueueEdit(RemoveDependency{Path: path, Dependency: dependency})
}

// AddSourceRoot queues adding a source root
func (c *ProjectConfig) AddSourceRoot(filepath string) error {
	return c.EnqueueEdit(AddSourceRoot{Filepath: filepath})
}

// RemoveSourceRoot queues removing a source root
func (c *ProjectConfig) RemoveSourceRoot(filepath string) error {
	return c.EnqueueEdit(RemoveSourceRoot{Filepath: filepath})
}

// isDeclared reports whether the path is declared by the top-level config or
// any domain
func (c *ProjectConfig) isDeclared(path string) bool {
	for _, m := range c.AllModules() {
		if m.Path == path {
			return true
		}
	}
	return false
}

// declaresTopLevel reports whether the top-level config declares the path
func (c *ProjectConfig) declaresTopLevel(path string) bool {
	for i := range c.Modules {
		if c.Modules[i].Path == path {
			return true
		}
	}
	return false
}

// editModulePath returns the module path an edit is scoped to, or ""
func editModulePath(edit ConfigEdit) string {
	switch e := edit.(type) {
	case CreateModule:
		return e.Path
	case DeleteModule:
		return e.Path
	case MarkModuleAsUtility:
		return e.Path
	case UnmarkModuleAsUtility:
		return e.Path
	case AddDependency:
		return e.Path
	case RemoveDependency:
		return e.Path
	}
	return ""
}
