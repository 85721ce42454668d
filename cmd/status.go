package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli"

	"github.com/cjliu20152/qiskit/cmd/common"
)

func status(ctx *cli.Context) error {
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
		common.PrintRuntimeErr(ctx, "status", "new_client", err)
		return nil
	}
	defer client.Close()
	s, err := client.Status(jobId)
	if err != nil {
		common.PrintRuntimeErr(ctx, "status", "get_status", err)
		return nil
	}
	job := s.Job
	txt := fmt.Sprintf(`
Job Status
Job Id`+"\t\t"+`: %s
Name`+"\t\t"+`: %s
Backend`+"\t"+`: %s
Status`+"\t\t"+`: %s
Shots`+"\t\t"+`: %d
`,
		job.JobId,
		job.Name,
		job.Backend,
		job.Status,
		job.Shots,
	)
	if s.QueuePosition >= 0 {
		txt += fmt.Sprintf("Queue Position\t: %d\n", s.QueuePosition)
	}
	if !job.ScheduledAt.IsZero() {
		txt += fmt.Sprintf("Scheduled At\t: %s\n", job.ScheduledAt.Format(time.RFC3339))
	}
	if job.CronExpr != "" {
		txt += fmt.Sprintf("Cron\t\t: %s\n", job.CronExpr)
	}
	if job.Error != "" {
		txt += fmt.Sprintf("Error\t\t: %s\n", job.Error)
	}
	fmt.Println(txt)
	return nil
}
