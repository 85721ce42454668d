package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"

	"github.com/cjliu20152/qiskit/cmd/common"
	"github.com/cjliu20152/qiskit/internal/program"
	"github.com/cjliu20152/qiskit/pkg/pulse"
	"github.com/cjliu20152/qiskit/pkg/pulse/drawer"
)

var (
	drawFormat   string
	drawOutput   string
	drawSchedule int
	drawWidth    int

	drawFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "format, f",
			Usage:       "output format: text, svg or dot (default: text)",
			Destination: &drawFormat,
		},
		cli.StringFlag{
			Name:        "output, o",
			Usage:       "write to a file instead of stdout",
			Destination: &drawOutput,
		},
		cli.IntFlag{
			Name:        "schedule, n",
			Usage:       "index of the schedule to draw (default: 0)",
			Destination: &drawSchedule,
		},
		cli.IntFlag{
			Name:        "width, w",
			Usage:       "timeline width in cells for text output",
			Destination: &drawWidth,
		},
	}
)

func draw(ctx *cli.Context) error {
	path := ctx.Args().First()
	if path == "" {
		if ctx.Command.Name == "" {
			return common.Help(ctx)
		}
		return common.PrintErrWithCmdHelp(
			ctx,
			errors.New("no program file provided"),
		)
	} else if path == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}

	prog, err := program.LoadFile(path, nil)
	if err != nil {
		common.PrintRuntimeErr(ctx, "draw", "load_program", err)
		return nil
	}
	if drawSchedule < 0 || drawSchedule >= len(prog.Schedules) {
		common.PrintRuntimeErr(ctx, "draw", "pick_schedule",
			fmt.Errorf("schedule index %d out of range (program has %d)", drawSchedule, len(prog.Schedules)))
		return nil
	}
	sched := prog.Schedules[drawSchedule]

	var w io.Writer = os.Stdout
	if drawOutput != "" {
		f, err := os.Create(drawOutput)
		if err != nil {
			common.PrintRuntimeErr(ctx, "draw", "create_output", err)
			return nil
		}
		defer f.Close()
		w = f
	}

	switch drawFormat {
	case "", "text":
		err = sched.Draw(w, &pulse.DrawOpts{Width: drawWidth})
	case "svg":
		err = drawer.NewSVGRenderer().Render(sched, w)
	case "dot":
		err = drawer.NewDOTRenderer().Render(sched, w)
	default:
		return common.PrintErrWithCmdHelp(
			ctx,
			fmt.Errorf("unknown format %q (want text, svg or dot)", drawFormat),
		)
	}
	if err != nil {
		common.PrintRuntimeErr(ctx, "draw", "render", err)
	}
	return nil
}
