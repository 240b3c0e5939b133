package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wondertwin-ai/starjar/internal/app"
	"github.com/wondertwin-ai/starjar/pkg/server"
)

type serveOptions struct {
	port    int
	driver  string
	dbPath  string
	locale  string
	aiModel string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the starjar HTTP server",
		Long: `Run the starjar HTTP server until interrupted.

Settings come from the config file, then STARJAR_* environment variables,
then these flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootOpts.Config()
			flags := cmd.Flags()
			if flags.Changed("port") {
				cfg.Port = opts.port
			}
			if flags.Changed("storage") {
				cfg.Storage.Driver = opts.driver
			}
			if flags.Changed("db") {
				cfg.Storage.Path = opts.dbPath
			}
			if flags.Changed("locale") {
				cfg.Locale = opts.locale
			}
			if flags.Changed("model") {
				cfg.AI.Model = opts.aiModel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := server.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
			a, err := app.New(ctx, cfg, app.WithLogger(logger))
			if err != nil {
				return err
			}
			return a.Run(ctx)
		},
	}

	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "port to listen on")
	cmd.Flags().StringVar(&opts.driver, "storage", "", "storage driver (memory|sqlite)")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "SQLite database path")
	cmd.Flags().StringVar(&opts.locale, "locale", "", "default message language (ar|en)")
	cmd.Flags().StringVar(&opts.aiModel, "model", "", "Gemini model for the assistant")

	return cmd
}
