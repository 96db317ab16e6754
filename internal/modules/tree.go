// Package modules holds the resolved module registry: a path-segment trie
// built once from configuration and shared read-only by every extraction
// worker for the duration of a checking pass.
package modules

import (
	"sort"
	"strings"

	"modbound/internal/config"
	"modbound/internal/errors"
)

// ModuleNode is one resolved module. Nodes are immutable after build.
type ModuleNode struct {
	// Path is the absolute dotted module path, "." for the project root
	Path string
	// IsRoot is true for the project-root module
	IsRoot bool
	// Config is the declaring configuration, nil for synthetic interior
	// nodes that exist only because they have declared descendants
	Config *config.ModuleConfig
}

// IsUnchecked reports whether the module is excluded from checking
func (n *ModuleNode) IsUnchecked() bool {
	return n.Config != nil && n.Config.Unchecked
}

// IsUtility reports whether the module is exempt from being-depended-upon
// restrictions
func (n *ModuleNode) IsUtility() bool {
	return n.Config != nil && n.Config.Utility
}

// EmptyNode returns a placeholder owning module for passes that do not
// resolve files against the tree
func EmptyNode() *ModuleNode {
	return &ModuleNode{Path: ""}
}

type treeNode struct {
	node     *ModuleNode
	children map[string]*treeNode
}

func newTreeNode() *treeNode {
	return &treeNode{children: make(map[string]*treeNode)}
}

// ModuleTree owns every ModuleNode, keyed by dotted-path segments. Lookups
// never create nodes; the tree is a read-only snapshot once built.
type ModuleTree struct {
	root *treeNode
}

// Build constructs the tree from every declared module: top-level and
// domain-contributed. Two declarations of the same path fail with
// DuplicateModule. The root node is materialized unless root-module
// checking is ignored.
func Build(cfg *config.ProjectConfig) (*ModuleTree, error) {
	tree := &ModuleTree{root: newTreeNode()}

	if cfg.RootModule != config.RootModuleIgnore {
		tree.root.node = &ModuleNode{Path: config.RootModulePath, IsRoot: true}
	}

	for _, mod := range cfg.AllModules() {
		if err := tree.insert(mod); err != nil {
			return nil, err
		}
	}
	return tree, nil
}

func (t *ModuleTree) insert(mod *config.ModuleConfig) error {
	path := mod.ModPath()
	if path == config.RootModulePath {
		if t.root.node != nil && t.root.node.Config != nil {
			return errors.Newf(errors.DuplicateModule, "module %q declared more than once", mod.Path)
		}
		t.root.node = &ModuleNode{Path: config.RootModulePath, IsRoot: true, Config: mod}
		return nil
	}

	current := t.root
	for _, segment := range strings.Split(path, ".") {
		child, ok := current.children[segment]
		if !ok {
			child = newTreeNode()
			current.children[segment] = child
		}
		current = child
	}
	if current.node != nil {
		return errors.Newf(errors.DuplicateModule, "module %q declared more than once", path)
	}
	current.node = &ModuleNode{Path: path, Config: mod}
	return nil
}

// Get returns the node declared at exactly the given path, or nil
func (t *ModuleTree) Get(path string) *ModuleNode {
	if path == config.RootModulePath {
		return t.root.node
	}
	current := t.root
	for _, segment := range strings.Split(path, ".") {
		child, ok := current.children[segment]
		if !ok {
			return nil
		}
		current = child
	}
	return current.node
}

// FindNearest returns the node whose path is the longest declared prefix of
// the query path, including an exact match. When no prefix matches it falls
// back to the root node; nil is returned only when no root exists either.
func (t *ModuleTree) FindNearest(path string) *ModuleNode {
	nearest := t.root.node
	if path == config.RootModulePath || path == "" {
		return nearest
	}

	current := t.root
	for _, segment := range strings.Split(path, ".") {
		child, ok := current.children[segment]
		if !ok {
			break
		}
		current = child
		if current.node != nil {
			nearest = current.node
		}
	}
	return nearest
}

// AllNodes returns every declared (non-synthetic) node in the tree,
// pre-order by path segments
func (t *ModuleTree) AllNodes() []*ModuleNode {
	var nodes []*ModuleNode
	var walk func(n *treeNode)
	walk = func(n *treeNode) {
		if n.node != nil {
			nodes = append(nodes, n.node)
		}
		segments := make([]string, 0, len(n.children))
		for segment := range n.children {
			segments = append(segments, segment)
		}
		sort.Strings(segments)
		for _, segment := range segments {
			walk(n.children[segment])
		}
	}
	walk(t.root)
	return nodes
}
