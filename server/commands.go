package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/gofiber/fiber/v3"
	"github.com/spf13/cobra"

	"github.com/meikuraledutech/pipeline"
	"github.com/meikuraledutech/pipeline/api"
	"github.com/meikuraledutech/pipeline/config"
	"github.com/meikuraledutech/pipeline/logger"
	"github.com/meikuraledutech/pipeline/metrics"
	"github.com/meikuraledutech/pipeline/validation"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

type rootFlags struct {
	configFile string
	envFile    string
}

func (f *rootFlags) load() (*config.Config, error) {
	var opts []config.Option
	if f.configFile != "" {
		opts = append(opts, config.WithConfigFile(f.configFile))
	}
	if f.envFile != "" {
		opts = append(opts, config.WithEnvFile(f.envFile))
	}
	return config.Load(opts...)
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "pipeline-analyzer",
		Short:         "Classify pipeline graphs as acyclic or cyclic",
		Long:          "pipeline-analyzer serves an HTTP API that counts the nodes and edges of a submitted pipeline and reports whether it is a DAG.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "path to a .env file")

	root.AddCommand(newServeCmd(flags))
	root.AddCommand(newAnalyzeCmd(flags))
	root.AddCommand(newVersionCmd())
	return root
}

func newServeCmd(flags *rootFlags) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Server.Port = port
			}
			if cfg.Version == "" {
				cfg.Version = version
			}

			log := logger.New(cfg.Logging, cfg.Name)

			var m *metrics.Metrics
			if cfg.Metrics.Enabled {
				m = metrics.New()
			}

			app := api.New(api.Options{
				Config:    cfg,
				Analyzer:  pipeline.NewAnalyzer(limitsFrom(cfg)),
				Validator: validation.New(),
				Logger:    log,
				Metrics:   m,
			})

			log.Info().
				Str("addr", cfg.Server.Addr()).
				Str("environment", cfg.Environment).
				Str("version", cfg.Version).
				Msg("starting pipeline analyzer")

			err = app.Listen(cfg.Server.Addr(), fiber.ListenConfig{
				GracefulContext:       cmd.Context(),
				ShutdownTimeout:       cfg.Server.ShutdownTimeout,
				DisableStartupMessage: true,
			})
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			log.Info().Msg("server stopped")
			return nil
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")
	return cmd
}

// analyzeOutput is the analyze command's JSON document.
type analyzeOutput struct {
	pipeline.Result
	Order []string `json:"order,omitempty"`
}

func newAnalyzeCmd(flags *rootFlags) *cobra.Command {
	var order bool

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Analyze a pipeline JSON document from a file or stdin",
		Long:  "Reads a pipeline document ({\"nodes\": [...], \"edges\": [...]}) from the given file, or from stdin when the file is omitted or \"-\", and prints the analysis result as JSON.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}

			data, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			p, err := validation.New().Decode(data)
			if err != nil {
				return err
			}

			res, err := pipeline.NewAnalyzer(limitsFrom(cfg)).Analyze(cmd.Context(), p)
			if err != nil {
				return err
			}

			out := analyzeOutput{Result: *res}
			if order && res.IsDAG {
				out.Order, err = pipeline.NewGraph(p).TopologicalOrder()
				if err != nil {
					return err
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().BoolVar(&order, "order", false, "also print a topological order of the vertices when the pipeline is acyclic")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pipeline-analyzer %s\n", version)
		},
	}
}

func readInput(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", args[0], err)
	}
	return data, nil
}

func limitsFrom(cfg *config.Config) pipeline.Limits {
	return pipeline.Limits{MaxNodes: cfg.Analysis.MaxNodes, MaxEdges: cfg.Analysis.MaxEdges}
}
