package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mquist/cantrip"
)

func main() {
	if err := runCLI(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCLI(args []string) error {
	if len(args) < 2 {
		return usageError()
	}
	switch args[1] {
	case "run":
		return runCommand(args[2:])
	case "check":
		return checkCommand(args[2:])
	case "tools":
		return toolsCommand(args[2:])
	case "repl":
		return replCommand(args[2:])
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		return usageError()
	}
}

type sessionFlags struct {
	timeout   time.Duration
	stepQuota int
	mockPath  string
	dbPath    string
	model     string
	modelName string
	verbose   bool
}

func addSessionFlags(fs *flag.FlagSet) *sessionFlags {
	sf := &sessionFlags{}
	fs.DurationVar(&sf.timeout, "timeout", cantrip.DefaultExecutionTimeout, "wall-clock limit per execution")
	fs.IntVar(&sf.stepQuota, "step-quota", 0, "maximum interpreter steps per execution (0 = engine default)")
	fs.StringVar(&sf.mockPath, "mock", "", "YAML file of mock capabilities to register")
	fs.StringVar(&sf.dbPath, "db", "", "bolt database path for the kv_* capabilities (default: temp file)")
	fs.StringVar(&sf.model, "model", "", "selection model provider: anthropic or openai (default: lexical)")
	fs.StringVar(&sf.modelName, "model-name", "", "model identifier for the selected provider")
	fs.BoolVar(&sf.verbose, "verbose", false, "log orchestration events to stderr")
	return sf
}

func (sf *sessionFlags) buildSession() (*cantrip.Orchestration, func(), error) {
	caps, cleanup, err := demoCapabilities(sf.dbPath)
	if err != nil {
		return nil, nil, err
	}
	if sf.mockPath != "" {
		mocks, err := loadMockCapabilities(sf.mockPath)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		caps = append(caps, mocks...)
	}

	model, err := buildModel(sf.model, sf.modelName)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	opts := cantrip.Options{
		Capabilities:     caps,
		SelectionModel:   model,
		ExecutionTimeout: sf.timeout,
		StepQuota:        sf.stepQuota,
	}
	if sf.verbose {
		logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().
			Timestamp().
			Str("session_id", uuid.NewString()).
			Logger()
		opts.Logger = &logger
	}

	session, err := cantrip.New(opts)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return session, cleanup, nil
}

func buildModel(provider, name string) (cantrip.SelectionModel, error) {
	switch provider {
	case "":
		return nil, nil
	case "anthropic":
		key := os.Getenv("ANTHROPIC_API_KEY")
		if key == "" {
			return nil, errors.New("ANTHROPIC_API_KEY is not set")
		}
		if name == "" {
			name = "claude-sonnet-4-20250514"
		}
		return cantrip.NewAnthropicModel(key, name), nil
	case "openai":
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			return nil, errors.New("OPENAI_API_KEY is not set")
		}
		if name == "" {
			name = "gpt-4o-mini"
		}
		return cantrip.NewOpenAIModel(key, name), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", provider)
	}
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	sf := addSessionFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	remaining := fs.Args()
	if len(remaining) == 0 {
		return errors.New("cantrip run: script path required")
	}
	input, err := os.ReadFile(remaining[0])
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	session, cleanup, err := sf.buildSession()
	if err != nil {
		return err
	}
	defer cleanup()

	outcome := session.Run(context.Background(), string(input))
	return printOutcome(os.Stdout, outcome)
}

func checkCommand(args []string) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	if err := fs.Parse(args); err != nil {
		return err
	}
	remaining := fs.Args()
	if len(remaining) == 0 {
		return errors.New("cantrip check: script path required")
	}
	input, err := os.ReadFile(remaining[0])
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	session, err := cantrip.New(cantrip.Options{})
	if err != nil {
		return err
	}
	if err := session.Check(string(input)); err != nil {
		return fmt.Errorf("syntax check failed: %w", err)
	}
	fmt.Println("ok")
	return nil
}

func toolsCommand(args []string) error {
	fs := flag.NewFlagSet("tools", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	sf := addSessionFlags(fs)
	hint := fs.String("hint", "", "search hint to narrow the catalog")
	request := fs.String("request", "", "original request, for semantic selection")
	if err := fs.Parse(args); err != nil {
		return err
	}

	session, cleanup, err := sf.buildSession()
	if err != nil {
		return err
	}
	defer cleanup()

	selection := session.Select(context.Background(), *hint, *request)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(selection)
}

func replCommand(args []string) error {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	sf := addSessionFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	session, cleanup, err := sf.buildSession()
	if err != nil {
		return err
	}
	defer cleanup()

	return runREPL(session)
}

// printOutcome writes the wire shape of a run result as indented JSON.
func printOutcome(w *os.File, outcome cantrip.Outcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(outcome.AsMap()); err != nil {
		return err
	}
	if outcome.Failed() {
		return errors.New("execution failed")
	}
	return nil
}

func usageError() error {
	printUsage()
	return errors.New("invalid command")
}

func printUsage() {
	prog := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [flags]\n", prog)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  run <script>    execute a script against the capability catalog")
	fmt.Fprintln(os.Stderr, "  check <script>  compile a script without executing it")
	fmt.Fprintln(os.Stderr, "  tools           print the capabilities matching a hint")
	fmt.Fprintln(os.Stderr, "  repl            interactive session")
	fmt.Fprintln(os.Stderr, "Common flags:")
	fmt.Fprintln(os.Stderr, "  -timeout <dur>      wall-clock limit per execution")
	fmt.Fprintln(os.Stderr, "  -mock <file>        register mock capabilities from a YAML file")
	fmt.Fprintln(os.Stderr, "  -db <path>          bolt database path for kv_* capabilities")
	fmt.Fprintln(os.Stderr, "  -model <provider>   anthropic or openai for semantic selection")
	fmt.Fprintln(os.Stderr, "  -verbose            log orchestration events to stderr")
}

type flagErrorSink struct{}

func (flagErrorSink) Write(p []byte) (int, error) {
	return len(p), nil
}
