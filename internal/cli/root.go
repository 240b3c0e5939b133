// Package cli implements the starjar command line.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/wondertwin-ai/starjar/internal/client"
	"github.com/wondertwin-ai/starjar/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Server     string
	Lang       string
	Verbose    bool
	Format     string // "json" | "text"

	cfg *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Config returns the configuration loaded before the command ran.
func (o *RootOptions) Config() *config.Config {
	return o.cfg
}

// Client returns a client for the configured server.
func (o *RootOptions) Client() *client.Client {
	var opts []client.Option
	if o.Lang != "" {
		opts = append(opts, client.WithLanguage(o.Lang))
	}
	return client.New(o.cfg.ServerURL(), opts...)
}

// NewRootCommand creates the root command for the starjar CLI.
func NewRootCommand(version string) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "starjar",
		Short: "starjar - stars, rewards and a daily journal for kids with diabetes",
		Long: `starjar serves the star jar behind the kids' diabetes companion app:
a star balance, a reward catalog bought with stars, mini-game rewards,
a daily journal and an AI assistant.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return opts.load(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default ~/.starjar/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.Server, "server", "", "server URL for client commands")
	cmd.PersistentFlags().StringVar(&opts.Lang, "lang", "", "language for server messages (ar|en)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewStarsCommand(opts))
	cmd.AddCommand(NewRewardsCommand(opts))
	cmd.AddCommand(NewGameCommand(opts))
	cmd.AddCommand(NewJournalCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewMCPCommand(opts, version))
	cmd.AddCommand(NewVersionCommand(version))

	return cmd
}

// load reads the config file and environment, then applies global flags.
func (o *RootOptions) load(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if o.ConfigPath != "" {
		cfg, err = config.LoadFrom(o.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = o.Verbose
	}
	if o.Server != "" {
		cfg.Server = o.Server
	}
	o.cfg = cfg
	return nil
}

// print writes v as indented JSON in json format, or text otherwise.
func (o *RootOptions) print(w io.Writer, v any, text string) error {
	if o.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "starjar %s\n", version)
			return err
		},
	}
}
