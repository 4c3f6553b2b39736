package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"modlet-tools/internal/core"
	"modlet-tools/internal/types"
)

// Inspect dumps the typed operation list of one modlet's patch files.
func (s Service) Inspect(ctx context.Context, req InspectRequest) (InspectResult, error) {
	modletRoot := strings.TrimSpace(req.ModletRoot)
	if modletRoot == "" {
		return InspectResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("modlet root directory is required")
	}
	name := strings.TrimSpace(req.Modlet)
	if name == "" {
		return InspectResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("modlet name is required")
	}

	modlets, err := s.Modlets.Discover(modletRoot)
	if err != nil {
		return InspectResult{}, err
	}
	var found *types.Modlet
	for index := range modlets {
		if modlets[index].Descriptor.Name == name {
			found = &modlets[index]
			break
		}
	}
	if found == nil {
		return InspectResult{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("modlet %q not found under %s", name, modletRoot))
	}

	result := InspectResult{Modlet: found.Descriptor, PatchFiles: len(found.Patches)}
	for _, patch := range found.Patches {
		if ctx.Err() != nil {
			return InspectResult{}, ctx.Err()
		}
		data, err := s.Modlets.ReadPatch(patch)
		if err != nil {
			return InspectResult{}, err
		}
		doc, err := core.LoadPatch(data, types.PatchSource{Modlet: name, File: patch.Target})
		if err != nil {
			return InspectResult{}, err
		}
		result.Files = append(result.Files, InspectFile{
			File:   patch.Path,
			Target: patch.Target,
			Ops:    doc.Ops,
		})
		result.TotalOps += len(doc.Ops)
	}
	return result, nil
}
