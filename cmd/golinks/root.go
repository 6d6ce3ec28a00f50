package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:          appName,
		Short:        "Multi-tenant short link server",
		Long:         "golinks maps (host, slug) pairs to target URLs, counts redirects and serves a small JSON management API.",
		Version:      version,
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd(v))
	root.AddCommand(newCreateCmd(v), newListCmd(v), newStatsCmd(v))
	return root
}
