package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/minhyannv/cogni/pkg/chat"
	"github.com/minhyannv/cogni/pkg/completion"
	configpkg "github.com/minhyannv/cogni/pkg/config"
	"github.com/minhyannv/cogni/pkg/render"
	"github.com/spf13/pflag"
)

// cliOptions collects the raw flag values of one invocation.
type cliOptions struct {
	system   systemFlag
	messages []chat.Message

	output          render.Format
	json            bool
	jsonPretty      bool
	pretty          bool
	stream          bool
	timeout         time.Duration
	model           string
	apiKey          string
	baseURL         string
	temperature     float64
	maxTokens       int64
	reasoningEffort string
	profile         string
	configPath      string
	verbose         bool
}

func bindFlags(fs *pflag.FlagSet, opts *cliOptions) {
	fs.SortFlags = false

	fs.VarP(&opts.system, "system", "s", "System message (at most once)")
	fs.VarP(&messageFlag{role: chat.RoleUser, list: &opts.messages}, "user", "u", "User message (repeatable, order is kept)")
	fs.VarP(&messageFlag{role: chat.RoleAssistant, list: &opts.messages}, "assistant", "a", "Assistant message (repeatable, order is kept)")

	fs.VarP(&opts.output, "output", "o", "Output format: text, json or ndjson")
	fs.BoolVar(&opts.json, "json", false, "Shorthand for --output json")
	fs.BoolVar(&opts.jsonPretty, "jsonp", false, "Shorthand for --output json --pretty")
	fs.BoolVar(&opts.pretty, "pretty", false, "Indent the JSON document")
	fs.BoolVar(&opts.stream, "stream", false, "Stream the reply as it is generated")

	fs.DurationVar(&opts.timeout, "timeout", configpkg.DefaultTimeout, "Bound on the whole call, e.g. 30s")
	fs.StringVarP(&opts.model, "model", "m", configpkg.DefaultModel, "Model name")
	fs.StringVar(&opts.apiKey, "apikey", "", "API key (overrides OPENAI_API_KEY)")
	fs.StringVar(&opts.baseURL, "base-url", "", "API base URL (overrides OPENAI_BASE_URL)")
	fs.Float64VarP(&opts.temperature, "temperature", "t", 0, "Sampling temperature between 0 and 2")
	fs.Int64Var(&opts.maxTokens, "max-tokens", 0, "Maximum completion tokens (0 leaves it to the model)")
	fs.StringVar(&opts.reasoningEffort, "reasoning-effort", "", "Reasoning effort: low, medium or high")

	fs.StringVar(&opts.profile, "profile", "", "Profile name from the config file (overrides COGNI_PROFILE)")
	fs.StringVar(&opts.configPath, "config", "", "Config file path (default ~/.config/cogni/config.yaml)")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose diagnostics on stderr")
}

// apply overlays the flags the user actually set onto cfg.
func (o *cliOptions) apply(fs *pflag.FlagSet, cfg configpkg.Config) (configpkg.Config, error) {
	jsonFlag := ""
	switch {
	case fs.Changed("jsonp") && o.jsonPretty:
		jsonFlag = "--jsonp"
	case fs.Changed("json") && o.json:
		jsonFlag = "--json"
	}
	if jsonFlag != "" {
		if fs.Changed("output") && o.output != render.FormatJSON {
			return cfg, fmt.Errorf("%s conflicts with --output %s", jsonFlag, o.output)
		}
		cfg.Output = render.FormatJSON
	} else if fs.Changed("output") {
		cfg.Output = o.output
	}
	if fs.Changed("pretty") {
		cfg.Pretty = o.pretty
	}
	if jsonFlag == "--jsonp" {
		cfg.Pretty = true
	}
	if fs.Changed("stream") {
		cfg.Stream = o.stream
	}
	if fs.Changed("timeout") {
		if o.timeout <= 0 {
			return cfg, fmt.Errorf("--timeout must be positive, got %s", o.timeout)
		}
		cfg.Timeout = o.timeout
	}
	if fs.Changed("model") {
		cfg.Model = o.model
	}
	if fs.Changed("apikey") {
		cfg.APIKey = o.apiKey
	}
	if fs.Changed("base-url") {
		cfg.BaseURL = o.baseURL
	}
	if fs.Changed("temperature") {
		t := o.temperature
		cfg.Temperature = &t
	}
	if fs.Changed("max-tokens") {
		cfg.MaxTokens = o.maxTokens
	}
	if fs.Changed("reasoning-effort") {
		cfg.ReasoningEffort = o.reasoningEffort
	}
	if fs.Changed("verbose") {
		cfg.Verbose = o.verbose
	}
	return cfg, nil
}

// systemPrompt returns the -s value, falling back to the profile default.
func (o *cliOptions) systemPrompt(cfg configpkg.Config) string {
	if o.system.set {
		return o.system.value
	}
	return cfg.System
}

// generationOptions projects the sampling settings the encoder needs.
func generationOptions(cfg configpkg.Config) completion.Options {
	return completion.Options{
		Model:           cfg.Model,
		Temperature:     cfg.Temperature,
		MaxTokens:       cfg.MaxTokens,
		ReasoningEffort: cfg.ReasoningEffort,
	}
}

func clientConfig(cfg configpkg.Config) completion.Config {
	return completion.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Verbose: cfg.Verbose,
	}
}

// messageFlag appends to a list shared by -u and -a, so the relative order
// of both flags survives parsing.
type messageFlag struct {
	role chat.Role
	list *[]chat.Message
}

func (f *messageFlag) String() string {
	if f == nil || f.list == nil {
		return ""
	}
	var parts []string
	for _, msg := range *f.list {
		if msg.Role() == f.role {
			parts = append(parts, msg.Content())
		}
	}
	return strings.Join(parts, ",")
}

func (f *messageFlag) Set(value string) error {
	msg, err := chat.NewMessage(f.role, value)
	if err != nil {
		return err
	}
	*f.list = append(*f.list, msg)
	return nil
}

func (f *messageFlag) Type() string { return "string" }

var errSystemRepeated = errors.New("system message given more than once")

// systemFlag accepts a single value.
type systemFlag struct {
	value string
	set   bool
}

func (f *systemFlag) String() string {
	if f == nil {
		return ""
	}
	return f.value
}

func (f *systemFlag) Set(value string) error {
	if f.set {
		return errSystemRepeated
	}
	f.value = value
	f.set = true
	return nil
}

func (f *systemFlag) Type() string { return "string" }
