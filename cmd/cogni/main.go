// Package main provides the cogni command: it assembles a conversation from
// flags, a file or stdin, sends it to a chat completion endpoint and prints
// the reply.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/minhyannv/cogni/pkg/completion"
	configpkg "github.com/minhyannv/cogni/pkg/config"
	"github.com/minhyannv/cogni/pkg/input"
	loggerpkg "github.com/minhyannv/cogni/pkg/logger"
	"github.com/minhyannv/cogni/pkg/render"
	"github.com/spf13/cobra"
)

func main() {
	// Writes to a closed pipe return EPIPE instead of killing the process.
	signal.Ignore(syscall.SIGPIPE)

	var stdin io.Reader = os.Stdin
	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		stdin = nil
	}
	os.Exit(run(context.Background(), os.Args[1:], stdin, os.Stdout, os.Stderr))
}

// run executes one invocation and returns the process exit status. A nil
// stdin means there is no piped input.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	appLogger := loggerpkg.NewWriterLogger(stderr)
	opts := &cliOptions{}
	verbose := false

	cmd := &cobra.Command{
		Use:   "cogni [flags] [file]",
		Short: "Send a conversation to a chat completion model",
		Long: `cogni builds a conversation and prints the model's reply.

The optional system message comes first, then -u/-a messages in the order
given, then one user message read from the file argument or, without one,
from piped stdin. Use "-" as the file to read stdin explicitly.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}
			verbose = cfg.Verbose
			return runChat(cmd.Context(), cfg, opts, args, stdin, stdout, appLogger)
		},
	}
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	bindFlags(cmd.Flags(), opts)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	if isBrokenPipe(err) {
		loggerpkg.Debugf(verbose || opts.verbose, appLogger, "output closed: %v", err)
		return exitRender
	}
	_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitCode(err)
}

// resolveConfig layers defaults, profile file, environment and flags.
func resolveConfig(cmd *cobra.Command, opts *cliOptions) (configpkg.Config, error) {
	env, err := configpkg.LoadEnv()
	if err != nil {
		return configpkg.Config{}, err
	}
	cfg, err := configpkg.Resolve(env, opts.configPath, opts.profile)
	if err != nil {
		return configpkg.Config{}, err
	}
	if cfg, err = opts.apply(cmd.Flags(), cfg); err != nil {
		return configpkg.Config{}, err
	}
	cfg = configpkg.Normalize(cfg)
	if err := cfg.Validate(); err != nil {
		return configpkg.Config{}, err
	}
	return cfg, nil
}

// runChat aggregates the input, performs the call and renders the reply.
func runChat(
	ctx context.Context,
	cfg configpkg.Config,
	opts *cliOptions,
	paths []string,
	stdin io.Reader,
	stdout io.Writer,
	appLogger loggerpkg.Logger,
) error {
	conv, err := input.Aggregate(input.Sources{
		System:   opts.systemPrompt(cfg),
		Messages: opts.messages,
		Paths:    paths,
		Stdin:    stdin,
	})
	if err != nil {
		return err
	}
	loggerpkg.Debug(cfg.Verbose, appLogger, "conversation", conv)

	params, err := completion.Encode(conv, generationOptions(cfg))
	if err != nil {
		return err
	}
	client, err := completion.New(clientConfig(cfg), completion.WithLogger(appLogger))
	if err != nil {
		return err
	}
	renderer := render.New(stdout, cfg.Output,
		render.WithPretty(cfg.Pretty),
		render.WithLogger(appLogger, cfg.Verbose),
	)

	if cfg.Stream {
		stream := client.Stream(ctx, params)
		defer stream.Close()
		return renderer.RenderStream(stream)
	}
	reply, err := client.Complete(ctx, params)
	if err != nil {
		return err
	}
	return renderer.RenderReply(reply)
}
