package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"wrapdb-release/internal/adapters"
	"wrapdb-release/internal/app"
)

type publishOptions struct {
	Root          string
	Catalog       string
	VersionPolicy string
	APIURL        string
	ReleaseHost   string
	TimeoutSec    int
	FailFast      bool
}

func newPublishCommand() *cobra.Command {
	opts := publishOptions{}
	cmd := &cobra.Command{
		Use:   "publish [repository] [token]",
		Short: "Create releases for unreleased catalog versions and upload their wraps",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(cmd.Context(), cmd, args, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Root, "root", "", "Project root containing subprojects/ (defaults to the working directory)")
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "Release catalog path (defaults to releases.json or wrapdb.json under the root)")
	cmd.Flags().StringVar(&opts.VersionPolicy, "version-policy", "auto", "Version selection policy (auto, first, last, highest)")
	cmd.Flags().StringVar(&opts.APIURL, "api-url", adapters.DefaultGitHubAPIURL, "Release API base URL")
	cmd.Flags().StringVar(&opts.ReleaseHost, "release-host", app.DefaultReleaseHost, "Base URL used to build patch download links")
	cmd.Flags().IntVar(&opts.TimeoutSec, "http-timeout", 60, "HTTP timeout in seconds (0 = default)")
	cmd.Flags().BoolVar(&opts.FailFast, "fail-fast", false, "Stop at the first package that fails")
	_ = viper.BindPFlag("root", cmd.Flags().Lookup("root"))
	_ = viper.BindPFlag("catalog", cmd.Flags().Lookup("catalog"))
	_ = viper.BindPFlag("version_policy", cmd.Flags().Lookup("version-policy"))
	_ = viper.BindPFlag("api_url", cmd.Flags().Lookup("api-url"))
	_ = viper.BindPFlag("release_host", cmd.Flags().Lookup("release-host"))
	_ = viper.BindPFlag("http_timeout_sec", cmd.Flags().Lookup("http-timeout"))
	_ = viper.BindPFlag("fail_fast", cmd.Flags().Lookup("fail-fast"))
	return cmd
}

func runPublish(ctx context.Context, cmd *cobra.Command, args []string, opts publishOptions) error {
	root, err := resolveRoot(cmd, opts.Root)
	if err != nil {
		return err
	}
	result, err := newAppService().Publish(ctx, app.PublishRequest{
		Root:          root,
		CatalogPath:   resolveString(cmd, opts.Catalog, "catalog", "catalog"),
		VersionPolicy: resolveString(cmd, opts.VersionPolicy, "version_policy", "version-policy"),
		Repository:    positional(args, 0, "repository"),
		Token:         positional(args, 1, "token"),
		APIURL:        resolveString(cmd, opts.APIURL, "api_url", "api-url"),
		ReleaseHost:   resolveString(cmd, opts.ReleaseHost, "release_host", "release-host"),
		TimeoutSec:    resolveInt(cmd, opts.TimeoutSec, "http_timeout_sec", "http-timeout"),
		FailFast:      resolveBool(cmd, opts.FailFast, "fail_fast", "fail-fast"),
	})
	out := cmd.OutOrStdout()
	for _, report := range result.Published {
		fmt.Fprintf(out, "released: %s (%d assets)\n", report.Tag, len(report.Assets))
	}
	for _, failure := range result.Failed {
		fmt.Fprintf(out, "failed: %s (%s)\n", failure.Release.Tag, failure.State)
	}
	return err
}
