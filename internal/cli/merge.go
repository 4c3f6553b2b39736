package cli

import (
	"context"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"modlet-tools/internal/app"
)

type mergeOptions struct {
	ConfigDir  string
	ModletRoot string
	OutputDir  string
	Policy     string
	Jobs       int
	ReportYAML bool
}

func newMergeCommand() *cobra.Command {
	opts := mergeOptions{}
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge modlet patches into the game configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMerge(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.ConfigDir, "game-config", "", "Game configuration directory")
	cmd.Flags().StringVar(&opts.ModletRoot, "modlets", "", "Modlet root directory")
	cmd.Flags().StringVar(&opts.OutputDir, "output", "out", "Output directory")
	cmd.Flags().StringVar(&opts.Policy, "policy", "lenient", "Merge policy: strict, lenient or warn-only")
	cmd.Flags().IntVar(&opts.Jobs, "jobs", 0, "Worker count, 0 for one per CPU")
	cmd.Flags().BoolVar(&opts.ReportYAML, "report-yaml", false, "Emit the merge report as YAML")
	_ = viper.BindPFlag("game_config", cmd.Flags().Lookup("game-config"))
	_ = viper.BindPFlag("modlets", cmd.Flags().Lookup("modlets"))
	_ = viper.BindPFlag("output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("policy", cmd.Flags().Lookup("policy"))
	_ = viper.BindPFlag("jobs", cmd.Flags().Lookup("jobs"))
	_ = viper.BindPFlag("report_yaml", cmd.Flags().Lookup("report-yaml"))
	return cmd
}

func runMerge(ctx context.Context, cmd *cobra.Command, opts mergeOptions) error {
	service := newAppService()
	result, err := service.Merge(ctx, app.MergeRequest{
		ConfigDir:  resolveString(cmd, opts.ConfigDir, "game_config", "game-config"),
		ModletRoot: resolveString(cmd, opts.ModletRoot, "modlets", "modlets"),
		OutputDir:  resolveString(cmd, opts.OutputDir, "output", "output"),
		Policy:     resolveString(cmd, opts.Policy, "policy", "policy"),
		Jobs:       resolveInt(cmd, opts.Jobs, "jobs", "jobs"),
		ReportYAML: resolveBool(cmd, opts.ReportYAML, "report_yaml", "report-yaml"),
	})
	if err != nil {
		return err
	}
	for _, failure := range result.LoadFailures {
		fmt.Printf("load failed: %s/%s: %s\n", failure.Source.Modlet, failure.Source.File, failure.Reason)
	}
	for _, failure := range result.DocFailures {
		fmt.Printf("merge failed: %s: %s\n", failure.BaseDocument, failure.Reason)
	}
	if len(result.LoadFailures) > 0 || len(result.DocFailures) > 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("merge finished with %d load failure(s) and %d document failure(s)",
				len(result.LoadFailures), len(result.DocFailures)))
	}
	fmt.Printf("merged %d document(s) from %d modlet(s)\n", result.Documents, result.Modlets)
	return nil
}
