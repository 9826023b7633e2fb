package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/fsagent/internal/infrastructure/config"
	"github.com/GriffinCanCode/fsagent/internal/infrastructure/logging"
	"github.com/GriffinCanCode/fsagent/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/fsagent/internal/infrastructure/server"
	"github.com/GriffinCanCode/fsagent/internal/types"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	tool    string
	args    string
	env     string
	port    string
	sandbox string
	output  string
	dev     bool
	list    bool
}

func parseFlags(argv []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("fsagent", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.tool, "tool", "", "Run one tool call and exit, e.g. filesystem.list_dir")
	fs.StringVar(&opts.args, "args", "{}", "Tool parameters as a JSON object")
	fs.StringVar(&opts.env, "env", ".env", "Dotenv file loaded before the environment")
	fs.StringVar(&opts.port, "port", "", "Server port (overrides PORT)")
	fs.StringVar(&opts.sandbox, "sandbox", "", "Sandbox directory (overrides SANDBOX_DIR)")
	fs.StringVar(&opts.output, "output", "text", "Result format for -tool: text, json or yaml")
	fs.BoolVar(&opts.dev, "dev", false, "Development logging (debug level, console encoding)")
	fs.BoolVar(&opts.list, "list", false, "List the available tools and exit")
	if err := fs.Parse(argv); err != nil {
		return nil, err
	}

	switch opts.output {
	case "text", "json", "yaml":
	default:
		return nil, fmt.Errorf("unknown output format %q", opts.output)
	}
	return opts, nil
}

func run(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(argv, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	cfg, err := config.LoadEnvFile(opts.env)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if opts.port != "" {
		cfg.Server.Port = opts.port
	}
	if opts.sandbox != "" {
		cfg.Sandbox.Dir = opts.sandbox
	}
	if opts.dev {
		cfg.Logging.Development = true
	}

	logger, err := logging.FromConfig(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	if opts.list || opts.tool != "" {
		return runOnce(ctx, cfg, logger, opts, stdout, stderr)
	}

	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		logger.Error("Failed to create server", zap.Error(err))
		return 1
	}
	defer srv.Close()

	if err := srv.Run(ctx); err != nil {
		logger.Error("Server error", zap.Error(err))
		return 1
	}
	return 0
}

// runOnce executes a single tool call, or lists the tools, and prints the
// outcome on stdout.
func runOnce(ctx context.Context, cfg *config.Config, logger *logging.Logger, opts *options, stdout, stderr io.Writer) int {
	registry, _, err := server.NewRegistry(cfg, monitoring.NewMetrics(), logger)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if opts.list {
		for _, svc := range registry.List(nil) {
			for _, tool := range svc.Tools {
				fmt.Fprintf(stdout, "%-36s %s\n", tool.ID, tool.Description)
			}
		}
		return 0
	}

	var params map[string]interface{}
	if err := sonic.UnmarshalString(opts.args, &params); err != nil {
		fmt.Fprintf(stderr, "invalid -args: %v\n", err)
		return 2
	}

	result, err := registry.Execute(ctx, opts.tool, params, &types.Context{})
	if result == nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if err := printResult(stdout, opts.output, result); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if !result.Success {
		return 1
	}
	return 0
}

func printResult(w io.Writer, format string, result *types.Result) error {
	switch format {
	case "json":
		data, err := sonic.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		data, err := yaml.Marshal(result)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		if !result.Success {
			msg := "failed"
			if result.Error != nil {
				msg = *result.Error
			}
			_, err := fmt.Fprintf(w, "error [%s]: %s\n", result.Code, msg)
			return err
		}
		out, ok := result.Data["output"].(string)
		if !ok {
			data, err := sonic.MarshalIndent(result.Data, "", "  ")
			if err != nil {
				return err
			}
			out = string(data)
		}
		if !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		_, err := io.WriteString(w, out)
		return err
	}
}
