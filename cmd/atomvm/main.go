// SPDX-License-Identifier: Apache-2.0
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/jllopis/atomvm/pkg/capability/httpfetch"
	"github.com/jllopis/atomvm/pkg/capability/kvstore"
	"github.com/jllopis/atomvm/pkg/capability/llmcap"
	"github.com/jllopis/atomvm/pkg/capability/mcpagent"
	"github.com/jllopis/atomvm/pkg/capability/vectorstore"
	"github.com/jllopis/atomvm/pkg/config"
	"github.com/jllopis/atomvm/pkg/llm"
	"github.com/jllopis/atomvm/pkg/runtime"
	"github.com/jllopis/atomvm/pkg/telemetry"
	"github.com/jllopis/atomvm/pkg/vm"
)

type globalFlags struct {
	ConfigArgs []string
	ASTPath    string
	ArgsJSON   string
	Fuel       int
	JSON       bool
	Watch      bool
	Help       bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	flags, err := parseFlags(os.Args[1:])
	if err != nil {
		fatal(err)
	}
	if flags.Help {
		printUsage()
		return
	}

	cfg, err := config.LoadWithCLI(flags.ConfigArgs)
	if err != nil {
		fatal(err)
	}

	logger := telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	shutdown, err := telemetry.Init("atomvm", "dev")
	if err != nil {
		fatal(err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	atomMetrics, err := telemetry.NewAtomMetrics(ctx)
	if err != nil {
		logger.Warn("failed to set up atom dispatch metrics", "error", err)
	}
	errorMetrics, err := telemetry.NewErrorMetrics(ctx)
	if err != nil {
		logger.Warn("failed to set up error metrics", "error", err)
	}

	ast, err := readAST(flags.ASTPath)
	if err != nil {
		fatal(err)
	}
	runArgs, err := readArgs(flags.ArgsJSON)
	if err != nil {
		fatal(err)
	}

	if flags.Watch {
		if err := runWatch(ctx, flags, ast, runArgs, logger, atomMetrics, errorMetrics); err != nil {
			fatal(err)
		}
		return
	}

	caps := buildCapabilities(cfg, logger, errorMetrics)

	fuel := cfg.Run.DefaultFuel
	if flags.Fuel > 0 {
		fuel = flags.Fuel
	}

	result, err := vm.Run(ctx, ast, vm.RunConfig{
		Fuel:                 fuel,
		Args:                 runArgs,
		Capabilities:         caps,
		DefaultAtomTimeoutMs: cfg.Run.DefaultAtomTimeoutMs,
		Metrics:              atomMetrics,
		ErrorMetrics:         errorMetrics,
		Logger:               logger,
	})
	if err != nil {
		fatal(err)
	}

	printResult(result, flags.JSON)
}

// runWatch re-runs ast against the VM every time the config file named by
// --config changes, rebuilding capabilities from the reloaded config each
// time, until ctx is canceled. It blocks until then.
func runWatch(ctx context.Context, flags globalFlags, ast map[string]any, runArgs map[string]any, logger *slog.Logger, atomMetrics *telemetry.AtomMetrics, errorMetrics *telemetry.ErrorMetrics) error {
	configPath := configPathFromArgs(flags.ConfigArgs)
	if configPath == "" {
		return errors.New("--watch requires --config <path>")
	}

	watcher, cfg, err := config.WatchConfig(ctx, configPath, config.WithWatchLogger(logger))
	if err != nil {
		return fmt.Errorf("start config watcher: %w", err)
	}
	defer watcher.Stop()

	// reloadable gives runOnce a thread-safe handle onto whichever config
	// the watcher last loaded, rather than closing over the callback's cfg
	// directly.
	reloadable := config.NewReloadableConfig(cfg)

	runOnce := func() {
		cfg := reloadable.Get()
		caps := buildCapabilities(cfg, logger, errorMetrics)
		fuel := cfg.Run.DefaultFuel
		if flags.Fuel > 0 {
			fuel = flags.Fuel
		}
		result, err := vm.Run(ctx, ast, vm.RunConfig{
			Fuel:                 fuel,
			Args:                 runArgs,
			Capabilities:         caps,
			DefaultAtomTimeoutMs: cfg.Run.DefaultAtomTimeoutMs,
			Metrics:              atomMetrics,
			ErrorMetrics:         errorMetrics,
			Logger:               logger,
		})
		if err != nil {
			logger.Error("run failed", "error", err)
			return
		}
		printResult(result, flags.JSON)
	}

	runOnce()
	watcher.OnChange(func(cfg *config.Config) {
		logger.Info("config changed, re-running ast")
		reloadable.Update(cfg)
		runOnce()
	})

	<-ctx.Done()
	return nil
}

// configPathFromArgs extracts the value of a --config flag from a CLI
// argument list already filtered down to --config/--set pairs.
func configPathFromArgs(args []string) string {
	for i := 0; i < len(args); i++ {
		if args[i] == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func buildCapabilities(cfg *config.Config, logger *slog.Logger, errorMetrics *telemetry.ErrorMetrics) runtime.Capabilities {
	fetcher := httpfetch.New(time.Duration(cfg.HTTP.TimeoutMs) * time.Millisecond)
	fetcher.Metrics = errorMetrics
	caps := runtime.Capabilities{
		Fetch: fetcher,
	}

	switch strings.ToLower(cfg.Store.Provider) {
	case "qdrant":
		store, err := vectorstore.New(cfg.Store.QdrantAddr, "atomvm")
		if err != nil {
			logger.Warn("failed to connect to qdrant, falling back to in-memory store", "error", err)
			caps.Store = kvstore.New()
		} else {
			caps.Store = store
		}
	default:
		caps.Store = kvstore.New()
	}

	if strings.EqualFold(cfg.LLM.Provider, "ollama") {
		provider := llm.NewOllama(cfg.LLM.BaseURL)
		caps.LLM = llmcap.New(provider, provider, cfg.LLM.Model, cfg.Store.EmbedderModel)
	}

	if strings.EqualFold(cfg.Agent.Provider, "mcp") && cfg.Agent.Command != "" {
		client, err := mcpagent.NewClientWithStdio(cfg.Agent.Command, cfg.Agent.Args)
		if err != nil {
			logger.Warn("failed to start MCP agent process, agent.run will be unavailable", "error", err)
		} else {
			caps.Agent = mcpagent.NewRunner(client)
		}
	}

	return caps
}

func readAST(path string) (map[string]any, error) {
	var raw []byte
	var err error
	switch path {
	case "":
		return nil, errors.New("missing --ast <path> (use - for stdin)")
	case "-":
		raw, err = io.ReadAll(os.Stdin)
	default:
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read ast: %w", err)
	}
	var ast map[string]any
	if err := json.Unmarshal(raw, &ast); err != nil {
		return nil, fmt.Errorf("parse ast: %w", err)
	}
	return ast, nil
}

func readArgs(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("parse --args: %w", err)
	}
	return args, nil
}

func printResult(result *vm.RunResult, asJSON bool) {
	if asJSON {
		payload, _ := json.MarshalIndent(result.Output, "", "  ")
		fmt.Println(string(payload))
		return
	}
	fmt.Printf("output: %v\n", result.Output)
	fmt.Printf("fuel_used: %d\n", result.FuelUsed)
}

func parseFlags(args []string) (globalFlags, error) {
	flags := globalFlags{}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-h" || arg == "--help":
			flags.Help = true
			return flags, nil
		case arg == "--ast":
			if i+1 >= len(args) {
				return flags, fmt.Errorf("missing value for --ast")
			}
			i++
			flags.ASTPath = args[i]
		case strings.HasPrefix(arg, "--ast="):
			flags.ASTPath = strings.TrimPrefix(arg, "--ast=")
		case arg == "--args":
			if i+1 >= len(args) {
				return flags, fmt.Errorf("missing value for --args")
			}
			i++
			flags.ArgsJSON = args[i]
		case strings.HasPrefix(arg, "--args="):
			flags.ArgsJSON = strings.TrimPrefix(arg, "--args=")
		case arg == "--fuel":
			if i+1 >= len(args) {
				return flags, fmt.Errorf("missing value for --fuel")
			}
			i++
			n, err := strconv.Atoi(args[i])
			if err != nil {
				return flags, fmt.Errorf("invalid --fuel: %w", err)
			}
			flags.Fuel = n
		case arg == "--config":
			if i+1 >= len(args) {
				return flags, fmt.Errorf("missing value for --config")
			}
			flags.ConfigArgs = append(flags.ConfigArgs, arg, args[i+1])
			i++
		case strings.HasPrefix(arg, "--config="):
			flags.ConfigArgs = append(flags.ConfigArgs, arg)
		case arg == "--set":
			if i+1 >= len(args) {
				return flags, fmt.Errorf("missing value for --set")
			}
			flags.ConfigArgs = append(flags.ConfigArgs, arg, args[i+1])
			i++
		case strings.HasPrefix(arg, "--set="):
			flags.ConfigArgs = append(flags.ConfigArgs, arg)
		case arg == "--json":
			flags.JSON = true
		case arg == "--watch":
			flags.Watch = true
		default:
			return flags, fmt.Errorf("unknown flag %q", arg)
		}
	}
	return flags, nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func printUsage() {
	fmt.Println(`atomvm runs an atom AST against the VM.

Usage:
  atomvm --ast <path> [--args <json>] [--fuel N] [flags]

Flags:
  --ast <path>      Path to a JSON atom AST (a seq root), or - for stdin
  --args <json>     JSON object bound as the root args namespace
  --fuel N          Fuel budget override (default from config run.default_fuel)
  --config <path>   Path to a YAML config file
  --set key=value   Config override (repeatable)
  --json            Print the run output as JSON
  --watch           Re-run the ast every time --config's file changes
                     (requires --config; does not apply --set overrides
                     on reload)

Capability backends are selected through config (store.provider,
llm.provider, agent.provider, etc.) rather than flags; see --set and
--config above.`)
}
