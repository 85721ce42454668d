package cmd

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/cjliu20152/qiskit/cmd/common"
)

var (
	forceFlush bool
	jobToFlush string

	flsFlags = []cli.Flag{
		cli.BoolFlag{
			Name:        "force, f",
			Usage:       "use this flag to force flush (default: false)",
			Destination: &forceFlush,
		},
		cli.StringFlag{
			Name:        "job-id, j",
			Usage:       "use this flag to flush a particular job (default: all terminal jobs)",
			Destination: &jobToFlush,
		},
		daemonURIFlag(),
	}
)

func flush(ctx *cli.Context) error {
	if !confirm(command("flush"), forceFlush) {
		return nil
	}
	client, err := newClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "flush", "new_client", err)
		return nil
	}
	defer client.Close()
	res, err := client.Flush(jobToFlush)
	if err != nil {
		common.PrintRuntimeErr(ctx, "flush", "flush", err)
		return nil
	}
	if jobToFlush == "" {
		fmt.Printf("Flushed %d finished jobs!\n", res.Flushed)
	} else {
		fmt.Printf("Flushed %s\n", jobToFlush)
	}
	return nil
}
