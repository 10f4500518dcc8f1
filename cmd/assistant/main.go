// Package main is the entrypoint for the SalaatFlow assistant.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/morezero/salaatflow-assistant/internal/config"
	"github.com/morezero/salaatflow-assistant/internal/server"
	"github.com/morezero/salaatflow-assistant/pkg/genclient"
	"github.com/morezero/salaatflow-assistant/pkg/intent"
	"github.com/morezero/salaatflow-assistant/pkg/observability"
	"github.com/morezero/salaatflow-assistant/pkg/params"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("assistant: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "assistant",
		Short: "SalaatFlow conversational task assistant",
		Long: `SalaatFlow conversational task assistant.

Without a subcommand the assistant server is started (HTTP, optional COMMS).

Environment:
  generation  GEMINI_API_KEY (required), GEMINI_MODEL, GEMINI_TIMEOUT,
              GEMINI_MAX_ATTEMPTS, GEMINI_RETRY_DELAY, GEMINI_BASE_URL, HISTORY_LIMIT
  backend     BACKEND_BASE_URL, BACKEND_TIMEOUT, BACKEND_RATE_LIMIT,
              BACKEND_RATE_BURST, TOOL_MANIFEST_FILE, DEFAULT_MASJID_ID
  http        ASSISTANT_HTTP_ADDR, HTTP_PORT, REQUEST_TIMEOUT, HEALTH_CHECK_TIMEOUT
  comms       COMMS_URL, SERVICE_NAME, COMMS_CONNECT_TIMEOUT, COMMS_RECONNECT_WAIT,
              COMMS_MAX_RECONNECTS, ASSISTANT_SUBJECT, ASSISTANT_EVENT_SUBJECT
  logging     LOG_LEVEL, LOG_DIR, LOG_BUFFER_SIZE`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return server.Run()
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the assistant server",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return server.Run()
			},
		},
		newHealthCmd(),
		newClassifyCmd(),
		newToolsCmd(),
	)
	return root
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Probe the generation provider once; exit 1 when unhealthy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.ValidateForGeneration(); err != nil {
				return err
			}
			done, err := installLogging(cmd, cfg)
			if err != nil {
				return err
			}
			defer done()
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.HealthCheckTimeout)
			defer cancel()

			gen, err := genclient.New(ctx, cfg.Generation())
			if err != nil {
				return fmt.Errorf("create generation client: %w", err)
			}
			status := gen.HealthCheck(ctx)
			if err := printJSON(cmd.OutOrStdout(), status); err != nil {
				return err
			}
			if !status.Healthy() {
				return fmt.Errorf("generation provider is %s: %s", status.Status, status.Error)
			}
			return nil
		},
	}
}

// classifyOutput is what the classify command prints.
type classifyOutput struct {
	intent.Classification
	Params params.Params `json:"params"`
}

func newClassifyCmd() *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "classify <text>",
		Short: "Print the language, intent and extracted parameters of an utterance",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			cls := intent.NewClassifier(nil).Classify(text, lang)
			return printJSON(cmd.OutOrStdout(), classifyOutput{
				Classification: cls,
				Params:         params.Extract(text, cls.Intent),
			})
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "language hint (en or ur)")
	return cmd
}

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Validate the tool registry against the manifest and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			done, err := installLogging(cmd, cfg)
			if err != nil {
				return err
			}
			defer done()
			reg, m, err := server.BuildRegistry(cfg)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"manifest":   m.Name,
				"version":    m.Version,
				"source":     m.Source,
				"byCategory": m.ByCategory(),
				"tools":      reg.Describe(),
			})
		},
	}
}

// installLogging routes slog through the redacting handler on stderr so
// stdout stays machine-readable. The returned func restores the previous
// default logger and flushes the file streams.
func installLogging(cmd *cobra.Command, cfg *config.Config) (func(), error) {
	opts := cfg.Logging()
	opts.Console = cmd.ErrOrStderr()
	logging, err := observability.Setup(opts)
	if err != nil {
		return nil, fmt.Errorf("set up logging: %w", err)
	}
	prev := slog.Default()
	slog.SetDefault(logging.Logger)
	return func() {
		slog.SetDefault(prev)
		logging.Close()
	}, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
