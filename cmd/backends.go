package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli"

	"github.com/cjliu20152/qiskit/cmd/common"
	"github.com/cjliu20152/qiskit/pkg/ibmq"
	"github.com/cjliu20152/qiskit/pkg/provider"
)

var (
	remoteBackends bool
	remoteAccount  string

	backendsFlags = []cli.Flag{
		cli.BoolFlag{
			Name:        "remote, r",
			Usage:       "list backends of the selected remote account",
			Destination: &remoteBackends,
		},
		cli.StringFlag{
			Name:        "account, a",
			Usage:       "remote account name (default: the selected account)",
			Destination: &remoteAccount,
		},
		daemonURIFlag(),
	}
)

const remoteListTimeout = 30 * time.Second

func backends(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	if remoteBackends {
		return listRemoteBackends(ctx)
	}
	client, err := newClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "backends", "new_client", err)
		return nil
	}
	defer client.Close()
	res, err := client.Backends()
	if err != nil {
		common.PrintRuntimeErr(ctx, "backends", "get_backends", err)
		return nil
	}
	fmt.Println("Available backends:")
	for _, b := range res.Backends {
		kind := "device"
		if b.Simulator {
			kind = "simulator"
		}
		state := "down"
		if b.Operational {
			state = "up"
		}
		fmt.Printf("  %-10s %2d qubits  %-9s  %-4s  max shots %d  dt %.2gs\n",
			b.Name, b.NumQubits, kind, state, b.MaxShots, b.Dt)
	}
	return nil
}

func listRemoteBackends(ctx *cli.Context) error {
	prov, err := remoteProvider()
	if err != nil {
		common.PrintRuntimeErr(ctx, "backends", "remote_provider", err)
		return nil
	}
	cctx, cancel := context.WithTimeout(context.Background(), remoteListTimeout)
	defer cancel()
	bs, err := prov.Backends(cctx)
	if err != nil {
		common.PrintRuntimeErr(ctx, "backends", "remote_backends", err)
		return nil
	}
	fmt.Println("Remote backends:")
	for _, b := range bs {
		cfg := b.Configuration()
		kind := "device"
		if cfg.Simulator {
			kind = "simulator"
		}
		fmt.Printf("  %-14s %2d qubits  %-9s  max shots %d\n",
			b.Name(), cfg.NumQubits, kind, cfg.MaxShots)
	}
	return nil
}

// remoteProvider builds an IBMQ provider from the stored account.
func remoteProvider() (provider.Provider, error) {
	am, err := openAccountManager()
	if err != nil {
		return nil, err
	}
	acct, err := am.GetAccount(remoteAccount)
	if err != nil {
		return nil, err
	}
	cl, err := ibmq.NewClient(acct.URL, acct.Token, nil)
	if err != nil {
		return nil, err
	}
	return ibmq.NewProvider(cl), nil
}
