package policies

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"modlet-tools/internal/types"
)

// MergePolicy decides how outcomes influence a merge run. It is a data value
// consulted per outcome by the orchestrator, not a divergent code path.
type MergePolicy string

const (
	// PolicyStrict aborts the run on the first NoMatch, Conflict or Error.
	PolicyStrict MergePolicy = "strict"
	// PolicyLenient records every outcome and never aborts.
	PolicyLenient MergePolicy = "lenient"
	// PolicyWarnOnly records everything except NoMatch, which is suppressed
	// from the report, and never aborts.
	PolicyWarnOnly MergePolicy = "warn-only"
)

// Decision is the policy verdict for one outcome.
type Decision struct {
	Record bool
	Abort  bool
}

func ParseMergePolicy(value string) (MergePolicy, error) {
	switch MergePolicy(strings.ToLower(strings.TrimSpace(value))) {
	case PolicyStrict:
		return PolicyStrict, nil
	case PolicyLenient, "":
		return PolicyLenient, nil
	case PolicyWarnOnly:
		return PolicyWarnOnly, nil
	default:
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unknown merge policy: %s", value))
	}
}

// Decide maps an outcome kind to a record/abort verdict under this policy.
func (p MergePolicy) Decide(outcome types.OutcomeKind) Decision {
	switch p {
	case PolicyStrict:
		if outcome == types.OutcomeApplied {
			return Decision{Record: true}
		}
		return Decision{Record: true, Abort: true}
	case PolicyWarnOnly:
		if outcome == types.OutcomeNoMatch {
			return Decision{}
		}
		return Decision{Record: true}
	default:
		return Decision{Record: true}
	}
}
