package adapters

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"modlet-tools/internal/ports"
	"modlet-tools/internal/types"
)

// ReportConsoleAdapter renders merge reports for humans: one line per base
// document, outcome counts grouped by modlet, OKAY in green when everything
// applied, FAIL in red otherwise. With YAML set the raw reports are dumped
// instead, for machine consumption.
type ReportConsoleAdapter struct {
	Out  io.Writer
	YAML bool
}

func NewReportConsoleAdapter(yamlOutput bool) ReportConsoleAdapter {
	return ReportConsoleAdapter{Out: os.Stdout, YAML: yamlOutput}
}

func (a ReportConsoleAdapter) Summarize(reports []types.MergeReport) error {
	out := a.Out
	if out == nil {
		out = os.Stdout
	}
	if a.YAML {
		data, err := yaml.Marshal(reports)
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to encode merge reports").
				WithCause(err)
		}
		_, err = out.Write(data)
		return err
	}

	okay := color.New(color.FgGreen, color.Bold).SprintFunc()
	fail := color.New(color.FgRed, color.Bold).SprintFunc()
	for _, report := range reports {
		counts := report.Counts()
		verdict := okay("OKAY")
		if report.Aborted || counts[types.OutcomeConflict] > 0 || counts[types.OutcomeError] > 0 {
			verdict = fail("FAIL")
		}
		fmt.Fprintf(out, "%s %s  applied=%d no_match=%d conflict=%d error=%d\n",
			verdict, report.BaseDocument,
			counts[types.OutcomeApplied], counts[types.OutcomeNoMatch],
			counts[types.OutcomeConflict], counts[types.OutcomeError])

		byModlet := report.CountsByModlet()
		modlets := make([]string, 0, len(byModlet))
		for modlet := range byModlet {
			modlets = append(modlets, modlet)
		}
		sort.Strings(modlets)
		for _, modlet := range modlets {
			counts := byModlet[modlet]
			fmt.Fprintf(out, "  %-30s applied=%d no_match=%d conflict=%d error=%d\n",
				modlet,
				counts[types.OutcomeApplied], counts[types.OutcomeNoMatch],
				counts[types.OutcomeConflict], counts[types.OutcomeError])
		}
	}
	return nil
}

var _ ports.ReportSinkPort = ReportConsoleAdapter{}
