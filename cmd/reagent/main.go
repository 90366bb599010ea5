// Command reagent is a one-shot CLI for the reasoning agent. It wires the
// environment configuration to a model provider and memory backend, registers
// a couple of demo tools and runs a single reasoning session.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/cobra"

	"github.com/hupe1980/reagent"
	"github.com/hupe1980/reagent/config"
	"github.com/hupe1980/reagent/core"
	"github.com/hupe1980/reagent/logging"
	"github.com/hupe1980/reagent/memory"
	"github.com/hupe1980/reagent/model"
	"github.com/hupe1980/reagent/model/anthropic"
	"github.com/hupe1980/reagent/model/openai"
	"github.com/hupe1980/reagent/tool"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "reagent",
		Short:         "ReAct-style reasoning agent",
		Version:       reagent.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newAskCmd())
	return cmd
}

func newAskCmd() *cobra.Command {
	var (
		userID  string
		debug   bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "ask [input...]",
		Short: "Run one reasoning session for the given input",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if debug {
				cfg.Debug = true
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			agent, err := buildAgent(cfg)
			if err != nil {
				return err
			}
			defer agent.Close(context.Background()) //nolint:errcheck

			result := agent.Process(ctx, strings.Join(args, " "), userID, nil)

			fmt.Fprintln(cmd.OutOrStdout(), result.Content)
			for i, tr := range result.ToolResults {
				fmt.Fprintf(cmd.OutOrStdout(), "tool result %d: %v\n", i+1, tr.Data)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "cli", "user id memory entries are scoped to")
	cmd.Flags().BoolVar(&debug, "debug", false, "include in-session reasoning history in the response")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall session timeout")

	return cmd
}

func buildAgent(cfg *config.Config) (*reagent.Reagent, error) {
	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:     parseLogLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Output:    os.Stderr,
		Component: "cli",
	})

	provider, err := buildProvider(cfg)
	if err != nil {
		return nil, err
	}

	var mem core.MemoryProvider
	switch cfg.MemoryBackend {
	case config.MemoryBackendSQLite:
		mem = memory.NewSQLiteProvider(cfg.SQLitePath)
	default:
		mem = memory.NewInMemoryProvider()
	}

	agent, err := reagent.New(provider, func(o *reagent.Options) {
		o.Memory = mem
		o.MaxIterations = cfg.MaxIterations
		o.Debug = cfg.Debug
		o.Logger = logger
	})
	if err != nil {
		return nil, err
	}

	agent.RegisterTool(timeTool())
	agent.RegisterTool(echoTool())

	return agent, nil
}

func buildProvider(cfg *config.Config) (core.ModelProvider, error) {
	var provider core.ModelProvider

	switch cfg.ModelProvider {
	case config.ProviderAnthropic:
		provider = anthropic.NewProvider(func(o *anthropic.Options) {
			if cfg.ModelID != "" {
				o.Model = anthropicsdk.Model(cfg.ModelID)
			}
		})
	case config.ProviderOpenAI:
		provider = openai.NewProvider(func(o *openai.Options) {
			if cfg.ModelID != "" {
				o.Model = cfg.ModelID
			}
		})
	case config.ProviderMock:
		return model.NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported model provider %q", cfg.ModelProvider)
	}

	return model.NewRetryProvider(provider), nil
}

func timeTool() tool.Tool {
	return tool.NewFunctionTool(
		"current_time",
		"Returns the current time in RFC3339 format",
		core.InputSchema{Type: "object", Properties: map[string]any{}},
		func(ctx context.Context, params map[string]any) (any, error) {
			return time.Now().Format(time.RFC3339), nil
		},
	)
}

func echoTool() tool.Tool {
	return tool.NewFunctionTool(
		"echo",
		"Echoes the provided text back",
		core.InputSchema{
			Type: "object",
			Properties: map[string]any{
				"text": map[string]any{"type": "string", "description": "Text to echo"},
			},
			Required: []string{"text"},
		},
		func(ctx context.Context, params map[string]any) (any, error) {
			text, _ := params["text"].(string)
			return text, nil
		},
	)
}

func parseLogLevel(level string) logging.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logging.LogLevelDebug
	case "warn":
		return logging.LogLevelWarn
	case "error":
		return logging.LogLevelError
	default:
		return logging.LogLevelInfo
	}
}
