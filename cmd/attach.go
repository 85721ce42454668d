package cmd

import (
	"errors"
	"fmt"

	"github.com/urfave/cli"

	"github.com/cjliu20152/qiskit/cmd/common"
)

var attachFlags = []cli.Flag{
	daemonURIFlag(),
}

func attach(ctx *cli.Context) (err error) {
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
		common.PrintRuntimeErr(ctx, "attach", "new_client", err)
		return nil
	}
	s, err := client.Attach(jobId)
	if err != nil {
		common.PrintRuntimeErr(ctx, "attach", "client-attach", err)
		return nil
	}
	job := s.Job
	fmt.Printf(`
Job Info
Name`+"\t\t"+`: %s
Backend`+"\t"+`: %s
Status`+"\t\t"+`: %s
`,
		job.Name,
		job.Backend,
		job.Status,
	)
	total := int64(job.Shots)
	p := RegisterHandlers(client, total)
	if err := client.Listen(); err != nil {
		common.PrintRuntimeErr(ctx, "attach", "listen", err)
		return nil
	}
	p.Wait()

	rc, err := newClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "attach", "new_client", err)
		return nil
	}
	defer rc.Close()
	res, err := rc.Result(jobId)
	if err != nil {
		common.PrintRuntimeErr(ctx, "attach", "result", err)
		return nil
	}
	printResults(res)
	return nil
}
