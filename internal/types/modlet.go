package types

// ModletDescriptor is the flat key/value record read from a modlet's
// modinfo.xml. Dependency metadata is carried through untouched; the engine
// does not interpret it.
type ModletDescriptor struct {
	Name        string            `yaml:"name"`
	DisplayName string            `yaml:"display_name,omitempty"`
	Version     string            `yaml:"version,omitempty"`
	Author      string            `yaml:"author,omitempty"`
	Description string            `yaml:"description,omitempty"`
	Extra       map[string]string `yaml:"extra,omitempty"`
}

// PatchFile is one patch document on disk, targeting the base configuration
// document of the same file name.
type PatchFile struct {
	Path   string
	Target string
}

// Modlet is one discovered modlet directory: descriptor plus its patch files
// in deterministic order.
type Modlet struct {
	Dir        string
	Descriptor ModletDescriptor
	Patches    []PatchFile
}
