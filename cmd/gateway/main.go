package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bakerybot/internal/action"
	"bakerybot/internal/cart"
	"bakerybot/internal/chatbot"
	"bakerybot/internal/gateway/app"
	"bakerybot/internal/gateway/config"
	"bakerybot/internal/llm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "gateway",
		Short:         "Bakery order assistant",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), v)
		},
	}
	root.PersistentFlags().String("host", "", "listen host (default from PYTHON_SERVICE_HOST)")
	root.PersistentFlags().String("port", "", "listen port (default from PYTHON_SERVICE_PORT)")
	root.PersistentFlags().String("backend-url", "", "commerce backend base URL")
	root.PersistentFlags().String("log-level", "", "debug, info, warn or error")
	_ = v.BindPFlag(config.KeyHost, root.PersistentFlags().Lookup("host"))
	_ = v.BindPFlag(config.KeyPort, root.PersistentFlags().Lookup("port"))
	_ = v.BindPFlag(config.KeyBackendURL, root.PersistentFlags().Lookup("backend-url"))
	_ = v.BindPFlag(config.KeyLogLevel, root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the chat server",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmd.Context(), v)
			},
		},
		newAskCmd(v),
		newToolCmd(v),
	)
	return root
}

func loadConfig(v *viper.Viper) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func runServe(ctx context.Context, v *viper.Viper) error {
	cfg, logger, err := loadConfig(v)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "error", err)
			return err
		}
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server exiting")
	return nil
}

func newAskCmd(v *viper.Viper) *cobra.Command {
	var (
		cartJSON string
		session  string
		verbose  bool
	)
	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Run one turn against the configured models and backend and print the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(v)
			if err != nil {
				return err
			}
			var hooks []llm.PromptHook
			if verbose {
				logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
				hooks = append(hooks, llm.PromptLogger{Log: logger})
			}
			var lines []cart.Line
			if strings.TrimSpace(cartJSON) != "" {
				if err := json.Unmarshal([]byte(cartJSON), &lines); err != nil {
					return fmt.Errorf("invalid --cart: %w", err)
				}
			}

			comps, err := app.Build(cmd.Context(), cfg, logger, hooks...)
			if err != nil {
				return err
			}
			defer comps.Close()

			out := comps.Orchestrator.HandleTurn(cmd.Context(), chatbot.TurnInput{
				Messages:  []chatbot.Turn{{Role: "user", Content: strings.Join(args, " ")}},
				Cart:      lines,
				SessionID: session,
			})
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVar(&cartJSON, "cart", "", `current cart as JSON, e.g. '[{"product_name":"Donat","quantity":2}]'`)
	cmd.Flags().StringVar(&session, "session", "", "session id for log correlation")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log full prompts and model replies")
	return cmd
}

func newToolCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "tool <name> [json-args]",
		Short: "Call one catalog action directly against the backend",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(v)
			if err != nil {
				return err
			}
			comps, err := app.Build(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer comps.Close()

			name, ok := action.ParseName(args[0])
			if !ok {
				return errors.New("unknown action " + args[0] + "; one of " + actionList())
			}
			t, _ := comps.Catalog.Lookup(name)
			input := "{}"
			if len(args) == 2 {
				input = args[1]
			}
			out, err := t.Call(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func actionList() string {
	names := make([]string, 0, len(action.Names))
	for _, n := range action.Names {
		names = append(names, string(n))
	}
	return strings.Join(names, ", ")
}
