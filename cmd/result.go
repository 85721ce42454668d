package cmd

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/urfave/cli"

	"github.com/cjliu20152/qiskit/cmd/common"
	qcommon "github.com/cjliu20152/qiskit/common"
	"github.com/cjliu20152/qiskit/pkg/provider"
)

// histogramWidth is the bar length of a full-probability outcome.
const histogramWidth = 40

func result(ctx *cli.Context) error {
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
		common.PrintRuntimeErr(ctx, "result", "new_client", err)
		return nil
	}
	defer client.Close()
	res, err := client.Result(jobId)
	if err != nil {
		common.PrintRuntimeErr(ctx, "result", "get_result", err)
		return nil
	}
	printResults(res)
	return nil
}

func printResults(res *qcommon.ResultResponse) {
	fmt.Printf("\nResults for job %s:\n", res.JobId)
	for i, r := range res.Results {
		name := r.JobName
		if name == "" {
			name = fmt.Sprintf("experiment %d", i)
		}
		fmt.Printf("\n%s (%d shots)\n", name, r.Shots)
		if !r.Success {
			fmt.Printf("  failed: %s\n", r.ErrorText)
			continue
		}
		switch {
		case len(r.Counts) > 0:
			fmt.Print(renderCounts(r.Counts))
		case len(r.AvgIQ) > 0:
			for slot, iq := range r.AvgIQ {
				fmt.Printf("  mem[%d]\tI=%+.4f\tQ=%+.4f\n", slot, iq[0], iq[1])
			}
		case len(r.MemoryIQ) > 0:
			fmt.Printf("  %d single-shot IQ records (use meas_return \"avg\" for a summary)\n", len(r.MemoryIQ))
		default:
			fmt.Println("  no measurement data")
		}
	}
}

// renderCounts renders a counts histogram, one bar per outcome, sorted
// by key so repeated runs print stably.
func renderCounts(c provider.Counts) string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	total := c.Total()
	var sb strings.Builder
	for _, k := range keys {
		p := c.Probability(k)
		bar := strings.Repeat("█", int(p*histogramWidth+0.5))
		sb.WriteString(fmt.Sprintf("  %-6s %6d  %5.1f%%  %s\n", k, c[k], p*100, bar))
	}
	if total > 0 {
		sb.WriteString(fmt.Sprintf("  total  %6d\n", total))
	}
	return sb.String()
}
