// Command image-convert detects, inspects and converts image values.
//
// Usage:
//
//	image-convert detect [-kind K] <value>
//	image-convert convert -to TARGET [-kind K] [-o path] [-format F] [-jobs N] <value>...
//	image-convert info [-kind K] <value>
//	image-convert serve
//	image-convert version
//
// A value is an http(s) URL, a file path, base64 text, or "-" for image
// bytes on stdin. The global -config flag names a YAML config file; every
// setting can also be overridden with IMAGE_CONVERT_* environment variables.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ironsheep/image-convert/internal/config"
	"github.com/ironsheep/image-convert/internal/server"
	"github.com/ironsheep/image-convert/pkg/convert"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// app carries what every command needs.
type app struct {
	conv   *convert.Converter
	logger *zap.Logger
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("image-convert", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to YAML config file")
	fs.Usage = func() { printUsage(stderr) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if fs.NArg() == 0 {
		printUsage(stderr)
		return 2
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "version", "--version", "-v":
		printVersion(stdout)
		return 0
	case "help", "--help", "-h":
		printUsage(stdout)
		return 0
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return 1
	}

	logger := initLogger(cfg, stderr)
	defer logger.Sync()

	a := &app{
		conv:   convert.New(cfg.ConverterOptions(logger)...),
		logger: logger,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}

	switch cmd {
	case "detect":
		err = a.runDetect(rest)
	case "convert":
		err = a.runConvert(ctx, rest)
	case "info":
		err = a.runInfo(ctx, rest)
	case "serve":
		err = a.runServe(ctx, rest)
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", cmd)
		printUsage(stderr)
		return 2
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "image-convert %s: %v\n", cmd, err)
		return 1
	}
	return 0
}

// initLogger builds a JSON logger on stderr; stdout carries command output
// and the MCP protocol.
func initLogger(cfg *config.Config, stderr io.Writer) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.Lock(zapcore.AddSync(stderr)),
		zap.NewAtomicLevelAt(cfg.Level()),
	)
	return zap.New(core).With(zap.String("service", "image-convert"))
}

func (a *app) flagSet(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	kind := fs.String("kind", "auto", "Kind of the input value: "+kindList())
	return fs, kind
}

// input returns the Go value for an argument. "-" reads image bytes from
// stdin.
func (a *app) input(arg string, kind convert.Kind) (any, error) {
	if arg != "-" {
		if kind == convert.KindBytes || kind == convert.KindBase64 {
			return []byte(arg), nil
		}
		return arg, nil
	}
	data, err := io.ReadAll(a.stdin)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read stdin")
	}
	return data, nil
}

// stdinKind is the kind "-" is read as unless one is given.
func stdinKind(arg string, kind convert.Kind) convert.Kind {
	if arg == "-" && kind == convert.KindAuto {
		return convert.KindBytes
	}
	return kind
}

func (a *app) runDetect(args []string) error {
	fs, kindName := a.flagSet("detect")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("expected exactly one value")
	}

	kind, err := convert.ParseKind(*kindName)
	if err != nil {
		return err
	}
	value, err := a.input(fs.Arg(0), kind)
	if err != nil {
		return err
	}
	kind, err = convert.Resolve(value, kind)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, kind)
	return nil
}

func (a *app) runInfo(ctx context.Context, args []string) error {
	fs, kindName := a.flagSet("info")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("expected exactly one value")
	}

	kind, err := convert.ParseKind(*kindName)
	if err != nil {
		return err
	}
	arg := fs.Arg(0)
	value, err := a.input(arg, kind)
	if err != nil {
		return err
	}
	desc, err := a.conv.Describe(ctx, value, stdinKind(arg, kind))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(desc)
}

func (a *app) runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	a.logger.Info("starting MCP server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)
	srv := server.New(a.conv, server.WithLogger(a.logger), server.WithVersion(Version))
	if err := srv.Serve(ctx, a.stdin, a.stdout); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "image-convert %s\n", Version)
	fmt.Fprintf(w, "  Build time: %s\n", BuildTime)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "image-convert - detect, inspect and convert image values")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: image-convert [-config file.yaml] <command> [options] <value>...")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  detect     Print the kind of a value")
	fmt.Fprintln(w, "  convert    Convert values (-to "+strings.Join(targets, "|")+")")
	fmt.Fprintln(w, "  info       Print dimensions, mode and format as JSON")
	fmt.Fprintln(w, "  serve      Run the MCP server on stdin/stdout")
	fmt.Fprintln(w, "  version    Print version information")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "A value is an http(s) URL, a file path, base64 text, or - for stdin.")
	fmt.Fprintln(w, "Encoded inputs are copied unchanged unless convert -format asks to re-encode.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintln(w, "  IMAGE_CONVERT_LOG_LEVEL=debug      Enable debug logging")
	fmt.Fprintln(w, "  IMAGE_CONVERT_FETCH_TIMEOUT=10s    URL fetch timeout")
	fmt.Fprintln(w, "  IMAGE_CONVERT_ENCODE_FORMAT=jpeg   Encoding for decoded images and arrays")
}

func kindList() string {
	names := make([]string, 0, len(convert.Kinds()))
	for _, k := range convert.Kinds() {
		names = append(names, k.String())
	}
	return strings.Join(names, ", ")
}

// outputPath names the file written for input i of n when converting to
// files. A single input writes to out itself unless out is a directory;
// otherwise files are written into out, named after the source file when
// there is one and given ext, the extension of the written content.
func outputPath(out, arg string, kind convert.Kind, i, n int, ext string) string {
	if st, err := os.Stat(out); n == 1 && (err != nil || !st.IsDir()) {
		return out
	}
	base := fmt.Sprintf("image-%d", i+1)
	if kind == convert.KindFile {
		name := filepath.Base(arg)
		if stem := strings.TrimSuffix(name, filepath.Ext(name)); stem != "" {
			base = fmt.Sprintf("%s-%d", stem, i+1)
		}
	}
	return filepath.Join(out, base+"."+ext)
}
