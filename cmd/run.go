package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/urfave/cli"

	"github.com/cjliu20152/qiskit/cmd/common"
	"github.com/cjliu20152/qiskit/internal/program"
	"github.com/cjliu20152/qiskit/pkg/provider"
	"github.com/cjliu20152/qiskit/pkg/qiskitcli"
	"github.com/cjliu20152/qiskit/pkg/qobj"
)

var (
	runBackend    string
	runName       string
	runShots      int
	runMeasLevel  int
	runMeasReturn string
	runSeed       int64
	runPriority   int
	runAt         string
	runEvery      string
	runDetach     bool

	runFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "backend, b",
			Usage:       "backend to run on (default: the program's backend)",
			Destination: &runBackend,
		},
		cli.StringFlag{
			Name:        "name, n",
			Usage:       "job name (default: the program name)",
			Destination: &runName,
		},
		cli.IntFlag{
			Name:        "shots, s",
			Usage:       "number of shots per experiment",
			Destination: &runShots,
		},
		cli.IntFlag{
			Name:        "meas-level",
			Usage:       "measurement level: 1 for IQ points, 2 for counts",
			Destination: &runMeasLevel,
		},
		cli.StringFlag{
			Name:        "meas-return",
			Usage:       "kerneled memory: 'avg' or 'single'",
			Destination: &runMeasReturn,
		},
		cli.Int64Flag{
			Name:        "seed",
			Usage:       "fix the sampling seed (0 picks a random one)",
			Destination: &runSeed,
		},
		cli.IntFlag{
			Name:        "priority, p",
			Usage:       "queue priority, higher runs earlier",
			Destination: &runPriority,
		},
		cli.StringFlag{
			Name:        "at",
			Usage:       "defer the run to an RFC 3339 instant",
			Destination: &runAt,
		},
		cli.StringFlag{
			Name:        "every",
			Usage:       "re-run on a cron cadence (e.g. '0 * * * *')",
			Destination: &runEvery,
		},
		cli.BoolFlag{
			Name:        "detach, d",
			Usage:       "return after submission instead of attaching",
			Destination: &runDetach,
		},
		daemonURIFlag(),
	}
)

func run(ctx *cli.Context) error {
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
		common.PrintRuntimeErr(ctx, "run", "load_program", err)
		return nil
	}

	backend := runBackend
	if backend == "" {
		backend = prog.Backend
	}
	if backend == "" {
		return common.PrintErrWithCmdHelp(
			ctx,
			errors.New("no backend: pass --backend or set it in the program"),
		)
	}

	client, err := newClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "run", "new_client", err)
		return nil
	}

	bres, err := client.Backend(backend)
	if err != nil {
		common.PrintRuntimeErr(ctx, "run", "get_backend", err)
		return nil
	}

	opts := runOptsFromProgram(prog)
	raw, err := assembleProgram(prog, bres.Configuration, opts)
	if err != nil {
		common.PrintRuntimeErr(ctx, "run", "assemble", err)
		return nil
	}

	name := runName
	if name == "" {
		name = prog.Name
	}
	sres, err := client.Submit(backend, raw, &qiskitcli.SubmitOpts{
		Name:     name,
		Priority: runPriority,
		At:       runAt,
		Every:    runEvery,
	})
	if err != nil {
		common.PrintRuntimeErr(ctx, "run", "submit", err)
		return nil
	}

	fmt.Printf(`
Job Submitted
Job Id`+"\t\t"+`: %s
Backend`+"\t"+`: %s
Status`+"\t\t"+`: %s
`,
		sres.JobId,
		sres.Backend,
		sres.Status,
	)
	if sres.ScheduledAt != "" {
		fmt.Printf("Scheduled At\t: %s\n", sres.ScheduledAt)
		return nil
	}
	if runDetach {
		return nil
	}

	total := int64(opts.Shots) * int64(len(prog.Schedules))
	return attachAndRender(ctx, client, sres.JobId, total)
}

// runOptsFromProgram merges the run flags over the program's own settings.
// Flags win; unset values fall back to the program, then to defaults.
func runOptsFromProgram(prog *program.Program) provider.RunOpts {
	opts := provider.RunOpts{
		Shots:      prog.Shots,
		MeasLevel:  prog.MeasLevel,
		MeasReturn: prog.MeasReturn,
		Seed:       prog.Seed,
	}
	if runShots > 0 {
		opts.Shots = runShots
	}
	if opts.Shots <= 0 {
		opts.Shots = DEF_SHOTS
	}
	if runMeasLevel > 0 {
		opts.MeasLevel = runMeasLevel
	}
	if opts.MeasLevel == 0 {
		opts.MeasLevel = DEF_MEAS_LEVEL
	}
	if runMeasReturn != "" {
		opts.MeasReturn = runMeasReturn
	}
	if runSeed != 0 {
		opts.Seed = runSeed
	}
	return opts
}

// assembleProgram assembles the program's schedules into a qobj payload
// against the target backend's configuration.
func assembleProgram(prog *program.Program, cfg *provider.Configuration, opts provider.RunOpts) (json.RawMessage, error) {
	if cfg == nil {
		return nil, errors.New("backend carried no configuration")
	}
	opts.Name = prog.Name
	q, err := qobj.Assemble(prog.Schedules, *cfg, opts)
	if err != nil {
		return nil, err
	}
	return json.Marshal(q)
}

// attachAndRender subscribes to a job's event stream and blocks painting
// progress until the job reaches a terminal state, then prints results.
func attachAndRender(ctx *cli.Context, client *qiskitcli.Client, jobId string, totalShots int64) error {
	if _, err := client.Attach(jobId); err != nil {
		common.PrintRuntimeErr(ctx, "run", "attach", err)
		return nil
	}
	p := RegisterHandlers(client, totalShots)
	if err := client.Listen(); err != nil {
		common.PrintRuntimeErr(ctx, "run", "listen", err)
		return nil
	}
	p.Wait()

	// Reconnect for the result fetch; Listen consumed the connection.
	rc, err := newClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "run", "new_client", err)
		return nil
	}
	defer rc.Close()
	res, err := rc.Result(jobId)
	if err != nil {
		common.PrintRuntimeErr(ctx, "run", "result", err)
		return nil
	}
	printResults(res)
	return nil
}
