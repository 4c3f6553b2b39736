package adapters

import (
	"bytes"
	"encoding/xml"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	debversion "github.com/knqyf263/go-deb-version"

	"modlet-tools/internal/ports"
	"modlet-tools/internal/types"
)

const (
	descriptorFile = "modinfo.xml"
	configSubdir   = "Config"
)

// ModletSourceAdapter discovers modlet directories on disk. A modlet is any
// direct subdirectory of the root that carries a modinfo.xml descriptor. The
// returned order is the merge priority order and must be deterministic:
// descriptor name ascending, newest version first for duplicate names, then
// directory name.
type ModletSourceAdapter struct{}

func NewModletSourceAdapter() ModletSourceAdapter {
	return ModletSourceAdapter{}
}

func (a ModletSourceAdapter) Discover(root string) ([]types.Modlet, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read modlet root directory").
			WithCause(err)
	}

	var modlets []types.Modlet
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		descriptorPath := filepath.Join(dir, descriptorFile)
		if _, err := os.Stat(descriptorPath); err != nil {
			continue
		}
		descriptor, err := loadDescriptor(descriptorPath)
		if err != nil {
			return nil, err
		}
		if descriptor.Name == "" {
			descriptor.Name = entry.Name()
		}
		patches, err := collectPatches(dir)
		if err != nil {
			return nil, err
		}
		modlets = append(modlets, types.Modlet{
			Dir:        dir,
			Descriptor: descriptor,
			Patches:    patches,
		})
	}
	if len(modlets) == 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("no modlets found under " + root)
	}

	sort.SliceStable(modlets, func(i, j int) bool {
		left, right := modlets[i], modlets[j]
		if left.Descriptor.Name != right.Descriptor.Name {
			return left.Descriptor.Name < right.Descriptor.Name
		}
		if left.Descriptor.Version != right.Descriptor.Version {
			return versionLess(right.Descriptor.Version, left.Descriptor.Version)
		}
		return left.Dir < right.Dir
	})
	return modlets, nil
}

func (a ModletSourceAdapter) ReadPatch(file types.PatchFile) ([]byte, error) {
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read patch file " + file.Path).
			WithCause(err)
	}
	return data, nil
}

// versionLess orders free-form modlet versions. The Debian version grammar
// tolerates most real-world version strings; anything it rejects falls back
// to plain string comparison.
func versionLess(a, b string) bool {
	va, errA := debversion.NewVersion(strings.TrimSpace(a))
	vb, errB := debversion.NewVersion(strings.TrimSpace(b))
	if errA != nil || errB != nil {
		return a < b
	}
	return va.LessThan(vb)
}

// loadDescriptor reads modinfo.xml as a flat key/value record: every element
// carrying a value attribute becomes one entry. Dependency metadata stays in
// Extra, uninterpreted.
func loadDescriptor(path string) (types.ModletDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ModletDescriptor{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read " + path).
			WithCause(err)
	}
	record := map[string]string{}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return types.ModletDescriptor{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to parse " + path).
				WithCause(err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		for _, attr := range start.Attr {
			if attr.Name.Local == "value" {
				record[start.Name.Local] = attr.Value
			}
		}
	}

	descriptor := types.ModletDescriptor{Extra: map[string]string{}}
	for key, value := range record {
		switch key {
		case "Name":
			descriptor.Name = value
		case "DisplayName":
			descriptor.DisplayName = value
		case "Version":
			descriptor.Version = value
		case "Author":
			descriptor.Author = value
		case "Description":
			descriptor.Description = value
		default:
			descriptor.Extra[key] = value
		}
	}
	return descriptor, nil
}

// collectPatches lists a modlet's patch files: everything under Config/ when
// present, otherwise XML files next to the descriptor. The target base
// document is the file name.
func collectPatches(dir string) ([]types.PatchFile, error) {
	configDir := filepath.Join(dir, configSubdir)
	if info, err := os.Stat(configDir); err == nil && info.IsDir() {
		var patches []types.PatchFile
		err := filepath.WalkDir(configDir, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() || !strings.EqualFold(filepath.Ext(path), ".xml") {
				return nil
			}
			patches = append(patches, types.PatchFile{Path: path, Target: filepath.Base(path)})
			return nil
		})
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to scan " + configDir).
				WithCause(err)
		}
		sortPatches(patches)
		return patches, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to scan " + dir).
			WithCause(err)
	}
	var patches []types.PatchFile
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == descriptorFile || !strings.EqualFold(filepath.Ext(name), ".xml") {
			continue
		}
		patches = append(patches, types.PatchFile{Path: filepath.Join(dir, name), Target: name})
	}
	sortPatches(patches)
	return patches, nil
}

func sortPatches(patches []types.PatchFile) {
	sort.Slice(patches, func(i, j int) bool { return patches[i].Path < patches[j].Path })
}

var _ ports.ModletSourcePort = ModletSourceAdapter{}
