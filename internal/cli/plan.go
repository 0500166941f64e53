package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"wrapdb-release/internal/app"
)

type planOptions struct {
	Root          string
	Catalog       string
	VersionPolicy string
}

func newPlanCommand() *cobra.Command {
	opts := planOptions{}
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "List catalog versions that have not been released yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlan(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Root, "root", "", "Project root containing subprojects/ (defaults to the working directory)")
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "Release catalog path (defaults to releases.json or wrapdb.json under the root)")
	cmd.Flags().StringVar(&opts.VersionPolicy, "version-policy", "auto", "Version selection policy (auto, first, last, highest)")
	_ = viper.BindPFlag("root", cmd.Flags().Lookup("root"))
	_ = viper.BindPFlag("catalog", cmd.Flags().Lookup("catalog"))
	_ = viper.BindPFlag("version_policy", cmd.Flags().Lookup("version-policy"))
	return cmd
}

func runPlan(ctx context.Context, cmd *cobra.Command, opts planOptions) error {
	root, err := resolveRoot(cmd, opts.Root)
	if err != nil {
		return err
	}
	result, err := newAppService().Plan(ctx, app.PlanRequest{
		Root:          root,
		CatalogPath:   resolveString(cmd, opts.Catalog, "catalog", "catalog"),
		VersionPolicy: resolveString(cmd, opts.VersionPolicy, "version_policy", "version-policy"),
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, tag := range result.Skipped {
		fmt.Fprintf(out, "released: %s\n", tag)
	}
	for _, pending := range result.Pending {
		fmt.Fprintf(out, "pending: %s\n", pending.Tag)
	}
	return nil
}
