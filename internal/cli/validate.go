package cli

import (
	"context"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"modlet-tools/internal/app"
)

type validateOptions struct {
	ModletRoot string
	Jobs       int
}

func newValidateCommand() *cobra.Command {
	opts := validateOptions{}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate modlet patch files without merging",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.ModletRoot, "modlets", "", "Modlet root directory")
	cmd.Flags().IntVar(&opts.Jobs, "jobs", 0, "Worker count, 0 for one per CPU")
	_ = viper.BindPFlag("modlets", cmd.Flags().Lookup("modlets"))
	_ = viper.BindPFlag("jobs", cmd.Flags().Lookup("jobs"))
	return cmd
}

func runValidate(ctx context.Context, cmd *cobra.Command, opts validateOptions) error {
	service := newAppService()
	result, err := service.Validate(ctx, app.ValidateRequest{
		ModletRoot: resolveString(cmd, opts.ModletRoot, "modlets", "modlets"),
		Jobs:       resolveInt(cmd, opts.Jobs, "jobs", "jobs"),
	})
	if err != nil {
		return err
	}
	for _, failure := range result.Failures {
		fmt.Printf("invalid: %s/%s: %s\n", failure.Source.Modlet, failure.Source.File, failure.Reason)
	}
	if len(result.Failures) > 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("%d of %d patch file(s) failed validation", len(result.Failures), result.Files))
	}
	fmt.Printf("validated %d patch file(s) in %d modlet(s)\n", result.Files, result.Modlets)
	return nil
}
