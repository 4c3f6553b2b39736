package types

// OutcomeKind classifies the result of applying one operation.
type OutcomeKind string

const (
	OutcomeApplied  OutcomeKind = "applied"
	OutcomeNoMatch  OutcomeKind = "no_match"
	OutcomeConflict OutcomeKind = "conflict"
	OutcomeError    OutcomeKind = "error"
)

// OperationOutcome records what happened to one operation of one patch
// document during a merge run.
type OperationOutcome struct {
	Source  PatchSource `yaml:"source"`
	OpIndex int         `yaml:"op_index"`
	Kind    OpKind      `yaml:"op"`
	Path    string      `yaml:"path,omitempty"`
	Outcome OutcomeKind `yaml:"outcome"`
	Reason  string      `yaml:"reason,omitempty"`
}

// MergeReport collects the outcomes of one merge run against one base
// document. It is built incrementally during orchestration and never mutated
// after the run completes.
type MergeReport struct {
	BaseDocument string             `yaml:"base_document"`
	Aborted      bool               `yaml:"aborted,omitempty"`
	Outcomes     []OperationOutcome `yaml:"outcomes"`
}

// Counts tallies outcomes by kind.
func (r MergeReport) Counts() map[OutcomeKind]int {
	counts := map[OutcomeKind]int{}
	for _, outcome := range r.Outcomes {
		counts[outcome.Outcome]++
	}
	return counts
}

// CountsByModlet tallies outcomes by source modlet, then by kind.
func (r MergeReport) CountsByModlet() map[string]map[OutcomeKind]int {
	counts := map[string]map[OutcomeKind]int{}
	for _, outcome := range r.Outcomes {
		modlet := outcome.Source.Modlet
		if counts[modlet] == nil {
			counts[modlet] = map[OutcomeKind]int{}
		}
		counts[modlet][outcome.Outcome]++
	}
	return counts
}
