package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli"

	"github.com/cjliu20152/qiskit/cmd/common"
	"github.com/cjliu20152/qiskit/internal/wavescript"
	"github.com/cjliu20152/qiskit/pkg/pulse"
)

var (
	wfDuration int64
	wfAmp      float64
	wfAmpImag  float64
	wfSigma    float64
	wfWidth    int64
	wfBeta     float64
	wfScript   string
	wfParams   cli.StringSlice
	wfFull     bool

	waveformFlags = []cli.Flag{
		cli.Int64Flag{
			Name:        "duration, d",
			Usage:       "waveform length in dt ticks",
			Destination: &wfDuration,
		},
		cli.Float64Flag{
			Name:        "amp, a",
			Usage:       "real amplitude of the envelope",
			Destination: &wfAmp,
		},
		cli.Float64Flag{
			Name:        "amp-imag",
			Usage:       "imaginary amplitude of the envelope",
			Destination: &wfAmpImag,
		},
		cli.Float64Flag{
			Name:        "sigma, s",
			Usage:       "gaussian standard deviation in dt ticks",
			Destination: &wfSigma,
		},
		cli.Int64Flag{
			Name:        "width, w",
			Usage:       "flat-top width for gaussian_square",
			Destination: &wfWidth,
		},
		cli.Float64Flag{
			Name:        "beta, b",
			Usage:       "drag correction coefficient",
			Destination: &wfBeta,
		},
		cli.StringFlag{
			Name:        "script, p",
			Usage:       "path of the waveform script for the script shape",
			Destination: &wfScript,
		},
		cli.StringSliceFlag{
			Name:  "param, P",
			Usage: "key=value parameter passed to the script (repeatable)",
			Value: &wfParams,
		},
		cli.BoolFlag{
			Name:        "full",
			Usage:       "print every sample instead of the summary view",
			Destination: &wfFull,
		},
	}
)

const waveformPreview = 8

func waveform(ctx *cli.Context) error {
	shape := ctx.Args().First()
	if shape == "" {
		return common.PrintErrWithCmdHelp(
			ctx,
			errors.New("no waveform shape provided"),
		)
	} else if shape == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}

	wave, err := buildWaveform(shape)
	if err != nil {
		common.PrintRuntimeErr(ctx, "waveform", shape, err)
		return nil
	}
	printWaveform(wave)
	return nil
}

func buildWaveform(shape string) (*pulse.Waveform, error) {
	amp := complex(wfAmp, wfAmpImag)
	switch shape {
	case "gaussian":
		return pulse.Gaussian(wfDuration, amp, wfSigma, nil)
	case "gaussian_square":
		return pulse.GaussianSquare(wfDuration, amp, wfSigma, wfWidth, nil)
	case "drag":
		return pulse.Drag(wfDuration, amp, wfSigma, wfBeta, nil)
	case "constant":
		return pulse.Constant(wfDuration, amp, nil)
	case "script":
		if wfScript == "" {
			return nil, errors.New("script shape needs --script")
		}
		params, err := parseWaveformParams(wfParams)
		if err != nil {
			return nil, err
		}
		eng := wavescript.NewEngine(nil, nil)
		return eng.Waveform(wfScript, wfDuration, params, nil)
	default:
		return nil, fmt.Errorf("unknown shape %q (want gaussian, gaussian_square, drag, constant or script)", shape)
	}
}

func parseWaveformParams(raw []string) (map[string]float64, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	params := make(map[string]float64, len(raw))
	for _, kv := range raw {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid parameter %q, want key=value", kv)
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid parameter %q: %w", kv, err)
		}
		params[k] = f
	}
	return params, nil
}

func printWaveform(wave *pulse.Waveform) {
	samples := wave.Samples()
	fmt.Printf("Name\t\t: %s\n", wave.Name())
	fmt.Printf("Samples\t\t: %d\n", len(samples))
	fmt.Printf("Max Norm\t: %.6f\n", wave.MaxNorm())
	fmt.Printf("Digest\t\t: %s\n", wave.Digest()[:16])
	fmt.Println()
	if wfFull || len(samples) <= 2*waveformPreview {
		for i, s := range samples {
			fmt.Printf("  [%4d] %+.6f%+.6fi\n", i, real(s), imag(s))
		}
		return
	}
	for i := 0; i < waveformPreview; i++ {
		s := samples[i]
		fmt.Printf("  [%4d] %+.6f%+.6fi\n", i, real(s), imag(s))
	}
	fmt.Printf("  ... %d samples elided, pass --full to print all ...\n", len(samples)-2*waveformPreview)
	for i := len(samples) - waveformPreview; i < len(samples); i++ {
		s := samples[i]
		fmt.Printf("  [%4d] %+.6f%+.6fi\n", i, real(s), imag(s))
	}
}
