package adapters

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"modlet-tools/internal/types"
)

func sampleReports() []types.MergeReport {
	return []types.MergeReport{
		{
			BaseDocument: "items.xml",
			Outcomes: []types.OperationOutcome{
				{Source: types.PatchSource{Modlet: "ModA", File: "items.xml"}, Kind: types.OpSetAttribute, Outcome: types.OutcomeApplied},
				{Source: types.PatchSource{Modlet: "ModB", File: "items.xml"}, Kind: types.OpRemove, Outcome: types.OutcomeNoMatch},
			},
		},
		{
			BaseDocument: "blocks.xml",
			Outcomes: []types.OperationOutcome{
				{Source: types.PatchSource{Modlet: "ModB", File: "blocks.xml"}, Kind: types.OpSet, Outcome: types.OutcomeConflict},
			},
		},
	}
}

func TestSummarizeConsole(t *testing.T) {
	restore := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = restore }()

	var buf bytes.Buffer
	adapter := ReportConsoleAdapter{Out: &buf}
	require.NoError(t, adapter.Summarize(sampleReports()))

	out := buf.String()
	assert.Contains(t, out, "OKAY items.xml  applied=1 no_match=1 conflict=0 error=0")
	assert.Contains(t, out, "FAIL blocks.xml  applied=0 no_match=0 conflict=1 error=0")
	assert.Contains(t, out, "ModA")
	assert.Contains(t, out, "ModB")
}

func TestSummarizeAbortedReportFails(t *testing.T) {
	restore := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = restore }()

	var buf bytes.Buffer
	adapter := ReportConsoleAdapter{Out: &buf}
	require.NoError(t, adapter.Summarize([]types.MergeReport{{BaseDocument: "items.xml", Aborted: true}}))
	assert.Contains(t, buf.String(), "FAIL items.xml")
}

func TestSummarizeYAML(t *testing.T) {
	var buf bytes.Buffer
	adapter := ReportConsoleAdapter{Out: &buf, YAML: true}
	reports := sampleReports()
	require.NoError(t, adapter.Summarize(reports))

	var decoded []types.MergeReport
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "items.xml", decoded[0].BaseDocument)
	require.Len(t, decoded[0].Outcomes, 2)
	assert.Equal(t, types.OutcomeNoMatch, decoded[0].Outcomes[1].Outcome)
}
