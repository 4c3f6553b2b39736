package ports

import "modlet-tools/internal/types"

// ReportSinkPort renders merge reports for humans.
type ReportSinkPort interface {
	Summarize(reports []types.MergeReport) error
}
