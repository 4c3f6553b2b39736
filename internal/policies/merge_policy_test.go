package policies

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modlet-tools/internal/types"
)

func TestParseMergePolicy(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    MergePolicy
		wantErr bool
	}{
		{name: "strict", input: "strict", want: PolicyStrict},
		{name: "lenient", input: "lenient", want: PolicyLenient},
		{name: "warn-only", input: "warn-only", want: PolicyWarnOnly},
		{name: "empty defaults to lenient", input: "", want: PolicyLenient},
		{name: "case and whitespace insensitive", input: "  Strict ", want: PolicyStrict},
		{name: "unknown", input: "permissive", wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := ParseMergePolicy(test.input)
			if test.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unknown merge policy")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name    string
		policy  MergePolicy
		outcome types.OutcomeKind
		want    Decision
	}{
		{name: "strict records applied", policy: PolicyStrict, outcome: types.OutcomeApplied, want: Decision{Record: true}},
		{name: "strict aborts on no match", policy: PolicyStrict, outcome: types.OutcomeNoMatch, want: Decision{Record: true, Abort: true}},
		{name: "strict aborts on conflict", policy: PolicyStrict, outcome: types.OutcomeConflict, want: Decision{Record: true, Abort: true}},
		{name: "strict aborts on error", policy: PolicyStrict, outcome: types.OutcomeError, want: Decision{Record: true, Abort: true}},
		{name: "lenient records no match", policy: PolicyLenient, outcome: types.OutcomeNoMatch, want: Decision{Record: true}},
		{name: "lenient records error", policy: PolicyLenient, outcome: types.OutcomeError, want: Decision{Record: true}},
		{name: "warn-only suppresses no match", policy: PolicyWarnOnly, outcome: types.OutcomeNoMatch, want: Decision{}},
		{name: "warn-only records conflict", policy: PolicyWarnOnly, outcome: types.OutcomeConflict, want: Decision{Record: true}},
		{name: "warn-only records applied", policy: PolicyWarnOnly, outcome: types.OutcomeApplied, want: Decision{Record: true}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, test.policy.Decide(test.outcome))
		})
	}
}
