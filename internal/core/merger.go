package core

import (
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"modlet-tools/internal/policies"
	"modlet-tools/internal/types"
)

// Merge applies every patch document, in the given priority order, against
// one base document. Operations run strictly sequentially: no operation of
// document N+1 runs before all operations of document N have been attempted,
// so later modlets can target nodes inserted by earlier ones and a fixed
// input ordering reproduces byte-identical output.
//
// The policy is consulted at each outcome. Under PolicyStrict the first
// NoMatch, Conflict or Error aborts the run; the returned report still holds
// everything recorded up to that point.
func Merge(base *Document, baseName string, docs []types.PatchDocument, policy policies.MergePolicy) (types.MergeReport, error) {
	report := types.MergeReport{BaseDocument: baseName}
	if base == nil {
		return report, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("merge requires a base document")
	}

	for _, doc := range docs {
		for index, op := range doc.Ops {
			outcome := Apply(base, op)
			decision := policy.Decide(outcome.Kind)
			if decision.Record {
				report.Outcomes = append(report.Outcomes, types.OperationOutcome{
					Source:  doc.Source,
					OpIndex: index,
					Kind:    op.Kind,
					Path:    op.Path.Raw,
					Outcome: outcome.Kind,
					Reason:  outcome.Reason,
				})
			}
			if outcome.Kind != types.OutcomeApplied {
				log.Warn().
					Str("base", baseName).
					Str("modlet", doc.Source.Modlet).
					Str("file", doc.Source.File).
					Int("op", index).
					Str("path", op.Path.Raw).
					Str("outcome", string(outcome.Kind)).
					Str("reason", outcome.Reason).
					Msg("patch operation did not apply")
			}
			if decision.Abort {
				report.Aborted = true
				return report, errbuilder.New().
					WithCode(errbuilder.CodeFailedPrecondition).
					WithMsg(fmt.Sprintf("merge of %s aborted by strict policy: %s op %d of %s/%s (%s)",
						baseName, outcome.Kind, index, doc.Source.Modlet, doc.Source.File, op.Path.Raw))
			}
		}
	}
	return report, nil
}
