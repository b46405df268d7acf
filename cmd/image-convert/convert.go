package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/image-convert/internal/imaging"
	"github.com/ironsheep/image-convert/pkg/convert"
)

// targets are the values accepted by convert -to.
var targets = []string{"bytes", "base64", "base64_text", "file", "image", "array", "cv"}

type convertOptions struct {
	to   string
	kind convert.Kind
	out  string
	jobs int

	// reencode is set by -format. Encoded inputs are then decoded and
	// written as format instead of passing through unchanged.
	reencode bool
	format   imaging.Format
}

func (a *app) runConvert(ctx context.Context, args []string) error {
	fs, kindName := a.flagSet("convert")
	to := fs.String("to", "", "Target representation: "+strings.Join(targets, ", "))
	out := fs.String("o", "", "Output path for -to file (a directory when converting several values)")
	format := fs.String("format", "", "Re-encode bytes, base64 and file output as png, jpeg, gif, bmp or tiff")
	jobs := fs.Int("jobs", runtime.NumCPU(), "Maximum concurrent conversions")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := convertOptions{to: *to, out: *out, jobs: *jobs}
	kind, err := convert.ParseKind(*kindName)
	if err != nil {
		return err
	}
	opts.kind = kind

	if *format != "" {
		opts.reencode = true
		opts.format, err = imaging.ParseFormat(*format)
		if err != nil {
			return err
		}
	}

	inputs := fs.Args()
	if err := opts.validate(inputs); err != nil {
		return err
	}

	results := make([]string, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.jobs)
	for i, arg := range inputs {
		g.Go(func() error {
			res, err := a.convertOne(gctx, opts, arg, i, len(inputs))
			if err != nil {
				return errors.Wrapf(err, "%s", displayName(arg))
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, res := range results {
		if opts.to == "bytes" {
			if _, err := a.stdout.Write([]byte(res)); err != nil {
				return errors.Wrap(err, "failed to write output")
			}
			continue
		}
		fmt.Fprintln(a.stdout, res)
	}
	return nil
}

func (o convertOptions) validate(inputs []string) error {
	if len(inputs) == 0 {
		return errors.New("expected at least one value")
	}
	if o.jobs < 1 {
		return errors.Errorf("-jobs must be at least 1, got %d", o.jobs)
	}

	stdin := 0
	for _, arg := range inputs {
		if arg == "-" {
			stdin++
		}
	}
	if stdin > 1 {
		return errors.New("stdin (-) can only be given once")
	}

	switch o.to {
	case "":
		return errors.New("-to is required")
	case "bytes":
		if len(inputs) > 1 {
			return errors.New("-to bytes takes a single value")
		}
	case "file":
		if o.out == "" {
			return errors.New("-o is required with -to file")
		}
		if len(inputs) > 1 {
			st, err := os.Stat(o.out)
			if err != nil || !st.IsDir() {
				return errors.Errorf("-o must be an existing directory when converting %d values", len(inputs))
			}
		}
	case "base64", "base64_text", "image", "array", "cv":
	default:
		return errors.Errorf("unknown target %q", o.to)
	}
	return nil
}

// convertOne converts input i and returns the text printed for it.
func (a *app) convertOne(ctx context.Context, o convertOptions, arg string, i, n int) (string, error) {
	conv := a.conv
	value, err := a.input(arg, o.kind)
	if err != nil {
		return "", err
	}
	kind, err := convert.Resolve(value, stdinKind(arg, o.kind))
	if err != nil {
		return "", err
	}
	a.logger.Debug("converting", zap.String("input", displayName(arg)), zap.Stringer("kind", kind), zap.String("to", o.to))

	switch o.to {
	case "bytes":
		data, err := o.encoded(ctx, conv, value, kind)
		return string(data), err

	case "base64", "base64_text":
		if !o.reencode {
			return conv.ToBase64Text(ctx, value, kind)
		}
		data, err := o.encoded(ctx, conv, value, kind)
		if err != nil {
			return "", err
		}
		return base64.StdEncoding.EncodeToString(data), nil

	case "file":
		data, err := o.encoded(ctx, conv, value, kind)
		if err != nil {
			return "", err
		}
		path := outputPath(o.out, arg, kind, i, n, imaging.ExtensionOf(data))
		written, err := conv.ToFile(ctx, data, path, convert.KindBytes)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s\t%d bytes", path, written), nil

	case "image":
		img, err := conv.ToImage(ctx, value, kind)
		if err != nil {
			return "", err
		}
		b := img.Bounds()
		return fmt.Sprintf("%dx%d %s", b.Dx(), b.Dy(), imaging.ModeOf(img)), nil

	case "array", "cv":
		toTensor, order := conv.ToArray, "RGB"
		if o.to == "cv" {
			toTensor, order = conv.ToCVImage, "BGR"
		}
		t, err := toTensor(ctx, value, kind)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%v uint8 %s", []int(t.Shape()), order), nil
	}
	return "", errors.Errorf("unknown target %q", o.to)
}

// encoded returns value as encoded image bytes, re-encoded when -format
// was given.
func (o convertOptions) encoded(ctx context.Context, conv *convert.Converter, value any, kind convert.Kind) ([]byte, error) {
	if o.reencode {
		return conv.Reencode(ctx, value, kind, o.format)
	}
	return conv.ToBytes(ctx, value, kind)
}

// displayName shortens long inputs such as base64 text for messages.
func displayName(arg string) string {
	if arg == "-" {
		return "stdin"
	}
	if len(arg) > 48 {
		return arg[:45] + "..."
	}
	return arg
}
