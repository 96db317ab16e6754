package processors

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"modbound/internal/config"
	"modbound/internal/filesystem"
	"modbound/internal/parsing"
)

// DjangoMetadata resolves Django string model references. Installed apps are
// read from the configured settings module; a reference "label.Model" maps to
// the installed app whose final path segment is the label.
type DjangoMetadata struct {
	Config    *config.DjangoConfig
	KnownApps []string
}

// NewDjangoMetadata loads the installed apps for the plugin. A missing or
// unreadable settings module yields empty metadata rather than an error.
func NewDjangoMetadata(sourceRoots []string, cfg *config.DjangoConfig) *DjangoMetadata {
	apps, _ := getKnownApps(sourceRoots, cfg)
	return &DjangoMetadata{Config: cfg, KnownApps: apps}
}

// getKnownApps parses the settings module and collects the string entries of
// its INSTALLED_APPS assignment.
func getKnownApps(sourceRoots []string, cfg *config.DjangoConfig) ([]string, error) {
	if cfg == nil || cfg.SettingsModule == "" {
		return nil, nil
	}
	settingsPath := filesystem.ModuleToFilePath(sourceRoots, cfg.SettingsModule)
	if settingsPath == "" {
		return nil, nil
	}
	contents, err := filesystem.ReadFileContent(settingsPath)
	if err != nil {
		return nil, err
	}
	root, err := parsing.ParseSource(contents)
	if err != nil {
		return nil, err
	}
	var apps []string
	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node.Type() == "assignment" {
			left := node.ChildByFieldName("left")
			right := node.ChildByFieldName("right")
			if left != nil && right != nil && parsing.NodeContent(left, contents) == "INSTALLED_APPS" {
				apps = append(apps, stringElements(right, contents)...)
				return
			}
		}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			walk(node.NamedChild(i))
		}
	}
	walk(root)
	return apps, nil
}

func stringElements(node *sitter.Node, source []byte) []string {
	var out []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "string" {
			continue
		}
		if body, ok := stringLiteralBody(parsing.NodeContent(child, source)); ok {
			out = append(out, body)
		}
	}
	return out
}

var relationFields = map[string]bool{
	"ForeignKey":      true,
	"OneToOneField":   true,
	"ManyToManyField": true,
}

// GetForeignKeyReferences finds relation fields declared with a string model
// reference and resolves each "label.Model" to the installed app it names.
func (m *DjangoMetadata) GetForeignKeyReferences(root *sitter.Node, source []byte) []SourceCodeReference {
	if len(m.KnownApps) == 0 {
		return nil
	}
	var refs []SourceCodeReference
	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node.Type() == "call" {
			if ref, ok := m.referenceFromCall(node, source); ok {
				refs = append(refs, ref)
			}
		}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			walk(node.NamedChild(i))
		}
	}
	walk(root)
	return refs
}

func (m *DjangoMetadata) referenceFromCall(call *sitter.Node, source []byte) (SourceCodeReference, bool) {
	fn := call.ChildByFieldName("function")
	args := call.ChildByFieldName("arguments")
	if fn == nil || args == nil || args.NamedChildCount() == 0 {
		return SourceCodeReference{}, false
	}
	name := parsing.NodeContent(fn, source)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	if !relationFields[name] {
		return SourceCodeReference{}, false
	}
	first := args.NamedChild(0)
	if first.Type() != "string" {
		return SourceCodeReference{}, false
	}
	body, ok := stringLiteralBody(parsing.NodeContent(first, source))
	if !ok {
		return SourceCodeReference{}, false
	}
	label, _, found := strings.Cut(body, ".")
	if !found {
		return SourceCodeReference{}, false
	}
	for _, app := range m.KnownApps {
		if app == label || strings.HasSuffix(app, "."+label) {
			return SourceCodeReference{ModulePath: app, Offset: first.StartByte()}, true
		}
	}
	return SourceCodeReference{}, false
}
