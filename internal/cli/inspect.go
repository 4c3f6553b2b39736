package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"modlet-tools/internal/app"
	"modlet-tools/internal/types"
)

type inspectOptions struct {
	ModletRoot string
	Modlet     string
}

func newInspectCommand() *cobra.Command {
	opts := inspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the typed operations of one modlet's patch files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInspect(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.ModletRoot, "modlets", "", "Modlet root directory")
	cmd.Flags().StringVar(&opts.Modlet, "modlet", "", "Modlet name")
	_ = viper.BindPFlag("modlets", cmd.Flags().Lookup("modlets"))
	_ = viper.BindPFlag("modlet", cmd.Flags().Lookup("modlet"))
	return cmd
}

func runInspect(ctx context.Context, cmd *cobra.Command, opts inspectOptions) error {
	service := newAppService()
	result, err := service.Inspect(ctx, app.InspectRequest{
		ModletRoot: resolveString(cmd, opts.ModletRoot, "modlets", "modlets"),
		Modlet:     resolveString(cmd, opts.Modlet, "modlet", "modlet"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("%s %s (%d file(s), %d op(s))\n",
		result.Modlet.Name, result.Modlet.Version, result.PatchFiles, result.TotalOps)
	for _, file := range result.Files {
		fmt.Printf("  %s -> %s\n", file.File, file.Target)
		for index, op := range file.Ops {
			line := fmt.Sprintf("    [%d] %s %s", index, op.Kind, op.Path.Raw)
			if op.Attr != "" {
				line += fmt.Sprintf(" name=%s", op.Attr)
			}
			if op.Kind == types.OpCsv {
				line += fmt.Sprintf(" op=%s", op.CsvOp)
			}
			fmt.Println(line)
		}
	}
	return nil
}
