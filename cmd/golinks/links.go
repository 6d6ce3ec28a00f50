package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/undeadops/golinks/internal/client"
)

// addClientFlags registers --server and --host. When not given on the
// command line they fall back to GOLINKS_SERVER and GOLINKS_HOST.
func addClientFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().String("server", "http://localhost:5000", "base URL of the golinks server")
	cmd.Flags().String("host", "", "Host header to send, selects the link namespace (default: host of --server)")
	_ = v.BindEnv("client.server", "GOLINKS_SERVER")
	_ = v.BindEnv("client.host", "GOLINKS_HOST")
}

func clientFlag(cmd *cobra.Command, v *viper.Viper, name string) string {
	value, _ := cmd.Flags().GetString(name)
	if cmd.Flags().Changed(name) {
		return value
	}
	if env := v.GetString("client." + name); env != "" {
		return env
	}
	return value
}

func newClient(cmd *cobra.Command, v *viper.Viper) *client.Client {
	return client.New(clientFlag(cmd, v, "server"), clientFlag(cmd, v, "host"))
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}

func newCreateCmd(v *viper.Viper) *cobra.Command {
	var slug, target string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create or replace a short link",
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := newClient(cmd, v).Create(cmd.Context(), slug, target)
			if err != nil {
				return err
			}
			return printJSON(cmd, created)
		},
	}

	cmd.Flags().StringVar(&slug, "slug", "", "slug of the short link")
	cmd.Flags().StringVar(&target, "url", "", "URL the short link redirects to")
	_ = cmd.MarkFlagRequired("slug")
	_ = cmd.MarkFlagRequired("url")
	addClientFlags(cmd, v)
	return cmd
}

func newListCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the short links of a host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			links, err := newClient(cmd, v).List(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, links)
		},
	}
	addClientFlags(cmd, v)
	return cmd
}

func newStatsCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats SLUG",
		Short: "Show the target and hit count of a short link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			link, err := newClient(cmd, v).Stats(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, link)
		},
	}
	addClientFlags(cmd, v)
	return cmd
}
