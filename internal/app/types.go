package app

import "modlet-tools/internal/types"

type MergeRequest struct {
	ConfigDir  string
	ModletRoot string
	OutputDir  string
	Policy     string
	Jobs       int
	ReportYAML bool
}

// DocumentFailure records a base document whose merge could not complete:
// unreadable or malformed base XML, a strict-policy abort, or a write error.
type DocumentFailure struct {
	BaseDocument string
	Reason       string
}

// LoadFailure records a patch file that failed to load. A load failure never
// blocks merging of other, independently loadable patch documents.
type LoadFailure struct {
	Source types.PatchSource
	Reason string
}

type MergeResult struct {
	Modlets      int
	Documents    int
	Reports      []types.MergeReport
	LoadFailures []LoadFailure
	DocFailures  []DocumentFailure
	// Unmatched lists patch targets with no base document of that name.
	Unmatched []string
}

type ValidateRequest struct {
	ModletRoot string
	Jobs       int
}

type ValidateResult struct {
	Modlets  int
	Files    int
	Failures []LoadFailure
}

type InspectRequest struct {
	ModletRoot string
	Modlet     string
}

type InspectFile struct {
	File   string
	Target string
	Ops    []types.PatchOperation
}

type InspectResult struct {
	Modlet     types.ModletDescriptor
	Files      []InspectFile
	TotalOps   int
	PatchFiles int
}
