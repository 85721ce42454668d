package cmd

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/cjliu20152/qiskit/cmd/common"
	"github.com/cjliu20152/qiskit/pkg/qiskitcli"
)

var (
	jobsBackend string
	jobsStatus  string
	jobsLimit   int

	jobsFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "backend, b",
			Usage:       "only list jobs for this backend",
			Destination: &jobsBackend,
		},
		cli.StringFlag{
			Name:        "status, s",
			Usage:       "only list jobs with this status (e.g. RUNNING, DONE)",
			Destination: &jobsStatus,
		},
		cli.IntFlag{
			Name:        "limit, n",
			Usage:       "maximum number of jobs to list",
			Destination: &jobsLimit,
		},
		daemonURIFlag(),
	}
)

func jobs(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := newClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "jobs", "new_client", err)
		return nil
	}
	defer client.Close()
	l, err := client.List(&qiskitcli.ListOpts{
		Backend: jobsBackend,
		Status:  jobsStatus,
		Limit:   jobsLimit,
	})
	if err != nil {
		common.PrintRuntimeErr(ctx, "jobs", "get_list", err)
		return nil
	}
	if len(l.Jobs) == 0 {
		fmt.Println("qiskit: no jobs found")
		return nil
	}
	txt := "Here are your jobs:"
	txt += "\n\n--------------------------------------------------------------------"
	txt += "\n|Num|\t         Name         |      Job Id      | Backend |  Status  |"
	txt += "\n|---|-------------------------|------------------|---------|----------|"
	for i, job := range l.Jobs {
		name := job.Name
		n := len(name)
		switch {
		case n > 23:
			name = name[:20] + "..."
		case n < 23:
			name = common.Beaut(name, 23)
		}
		txt += fmt.Sprintf("\n| %d | %s | %s | %s | %s |",
			i+1, name, job.JobId, common.Beaut(job.Backend, 7), common.Beaut(job.Status, 8))
	}
	txt += "\n--------------------------------------------------------------------"
	fmt.Println(txt)
	return nil
}
