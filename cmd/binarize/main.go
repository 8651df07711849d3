// Command binarize thresholds a local image file and writes a black and
// white PNG.
//
//	binarize [-method m] [-threshold t] [-percent p] [-stretch] [-histogram] in out
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go-image-threshold/internal/analyzer"
	"go-image-threshold/internal/logger"
	"go-image-threshold/internal/storage"
	"go-image-threshold/pkg/engine"
	"go-image-threshold/pkg/models"
	"go-image-threshold/pkg/validation"

	"github.com/sirupsen/logrus"
)

func main() {
	logger.UseTextFormatter()

	method := flag.String("method", "", "threshold method; defaults to manual with -threshold, percent_black with -percent, else iterative_mean")
	threshold := flag.Int("threshold", -1, "manual threshold in [0,255]")
	percent := flag.Float64("percent", -1, "percentage of pixels to turn black in [0,100]")
	maxIterations := flag.Int("max-iterations", 0, "iteration bound for iterative_mean")
	stretch := flag.Bool("stretch", false, "stretch contrast before thresholding")
	histogram := flag.Bool("histogram", false, "print histograms of the input as JSON on stdout")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] in.png out.png\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}

	req := models.ProcessRequest{
		Method:        *method,
		MaxIterations: *maxIterations,
		Stretch:       *stretch,
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "threshold":
			req.Threshold = threshold
		case "percent":
			req.Percent = percent
		}
	})

	if err := run(req, *histogram, flag.Arg(0), flag.Arg(1)); err != nil {
		logger.WithError(err).Error("binarize failed")
		os.Exit(1)
	}
}

func run(req models.ProcessRequest, printHistogram bool, in, out string) error {
	params, err := validation.NewParamsValidator(engine.DefaultMaxIterations).ValidateThreshold(req)
	if err != nil {
		return err
	}

	buf, err := readImage(in)
	if err != nil {
		return err
	}

	processor := analyzer.NewImageProcessor(1)
	defer processor.Close()
	ctx := context.Background()

	if printHistogram {
		analysis, err := processor.AnalyzeHistograms(ctx, buf, engine.RoundingRounded)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(analysis); err != nil {
			return err
		}
	}

	options := analyzer.DefaultOptions().WithMethod(params.Method)
	options.Params = params.Params
	options.Stretch = params.Stretch

	outcome, err := processor.Binarize(ctx, buf, options)
	if err != nil {
		return err
	}
	data, err := storage.EncodePNG(outcome.Binary)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	fields := logrus.Fields{
		"method":           outcome.Threshold.Method,
		"threshold":        outcome.Threshold.Value,
		"level":            outcome.Threshold.Level(),
		"direction":        outcome.Threshold.Direction.String(),
		"foreground_ratio": outcome.ForegroundRatio,
		"output":           out,
	}
	if outcome.Stretch != nil && len(outcome.Stretch.Degenerate) > 0 {
		fields["degenerate_channels"] = len(outcome.Stretch.Degenerate)
	}
	logger.WithFields(fields).Info("image binarized")
	return nil
}

func readImage(path string) (*engine.PixelBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, format, err := storage.DecodeImage(f, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	b := img.Bounds()
	logger.WithFields(logrus.Fields{
		"input":  path,
		"format": format,
		"width":  b.Dx(),
		"height": b.Dy(),
	}).Debug("image decoded")
	return engine.FromImage(img), nil
}
