package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	apppkg "github.com/kk-code-lab/rfind/internal/app"
	"github.com/kk-code-lab/rfind/internal/config"
	"github.com/kk-code-lab/rfind/internal/logger"
)

func printHelp() {
	fmt.Print(`rfind - Terminal text editor with live find and replace

USAGE:
    rfind [OPTIONS] [FILE]

OPTIONS:
    -h, --help            Show this help message and exit
    -c, --config PATH     Read options from PATH (default: <config dir>/rfind/config.toml)

Press F1 inside the editor for key bindings.
`)
}

type cliArgs struct {
	help       bool
	configPath string
	file       string
}

var errUsage = errors.New("usage")

func parseArgs(args []string) (cliArgs, error) {
	var out cliArgs
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-h" || arg == "--help":
			out.help = true
		case arg == "-c" || arg == "--config":
			if i+1 >= len(args) {
				return out, fmt.Errorf("%w: %s needs a path", errUsage, arg)
			}
			i++
			out.configPath = args[i]
		case strings.HasPrefix(arg, "--config="):
			out.configPath = strings.TrimPrefix(arg, "--config=")
		case strings.HasPrefix(arg, "-") && arg != "-":
			return out, fmt.Errorf("%w: unknown option %s", errUsage, arg)
		default:
			if out.file != "" {
				return out, fmt.Errorf("%w: only one file can be opened", errUsage)
			}
			out.file = arg
		}
	}
	out.configPath = apppkg.ExpandUserPath(out.configPath)
	return out, nil
}

func loadOptions(path string) (config.Options, string, error) {
	if path == "" {
		if found, ok := apppkg.DefaultConfigPath(); ok {
			path = found
		}
	}
	if path == "" {
		return config.Default(), "", nil
	}
	opts, err := config.Load(path)
	return opts, path, err
}

func main() {
	// Set UTF-8 as fallback encoding for maximum compatibility
	tcell.SetEncodingFallback(tcell.EncodingFallbackUTF8)

	args, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		printHelp()
		os.Exit(2)
	}
	if args.help {
		printHelp()
		os.Exit(0)
	}

	opts, configPath, err := loadOptions(args.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(opts.Log.Path, opts.Log.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()
	log.Info("starting", zap.String("file", args.file), zap.String("config", configPath))

	app, err := apppkg.NewApplication(apppkg.Config{
		Path:       args.file,
		ConfigPath: configPath,
		Options:    opts,
		Logger:     log,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing application: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = app.Close()
	}()

	app.Run()
}
