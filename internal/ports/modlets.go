package ports

import "modlet-tools/internal/types"

// ModletSourcePort discovers modlet bundles on disk and returns them in
// deterministic load order.
type ModletSourcePort interface {
	Discover(root string) ([]types.Modlet, error)
	ReadPatch(file types.PatchFile) ([]byte, error)
}
