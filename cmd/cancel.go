package cmd

import (
	"errors"
	"fmt"

	"github.com/urfave/cli"

	"github.com/cjliu20152/qiskit/cmd/common"
)

func cancel(ctx *cli.Context) error {
	jobId := ctx.Args().First()
	if jobId == "" {
		if ctx.Command.Name == "" {
			return common.Help(ctx)
		}
		return common.PrintErrWithCmdHelp(
			ctx,
			errors.New("no job id provided"),
		)
	} else if jobId == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := newClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "cancel", "new_client", err)
		return nil
	}
	defer client.Close()
	res, err := client.Cancel(jobId)
	if err != nil {
		common.PrintRuntimeErr(ctx, "cancel", "cancel_job", err)
		return nil
	}
	fmt.Printf("Job %s: %s\n", res.JobId, res.Status)
	return nil
}
