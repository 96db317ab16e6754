package processors

// SourceCodeReference is a non-import mention of a module, such as a string
// reference a framework resolves at runtime.
type SourceCodeReference struct {
	ModulePath string
	Offset     uint32
}
