package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli"

	"github.com/cjliu20152/qiskit/cmd/common"
	"github.com/cjliu20152/qiskit/pkg/credman"
	"github.com/cjliu20152/qiskit/pkg/credman/types"
	"github.com/cjliu20152/qiskit/pkg/ibmq"
)

var (
	accountName   string
	accountURL    string
	accountToken  string
	accountNoPing bool

	accountLoginFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "name, n",
			Usage:       "account name (default: \"default\")",
			Destination: &accountName,
		},
		cli.StringFlag{
			Name:        "url, u",
			Usage:       "provider API base URL",
			Destination: &accountURL,
		},
		cli.StringFlag{
			Name:        "token, t",
			Usage:       "API token",
			Destination: &accountToken,
			EnvVar:      "QISKIT_API_TOKEN",
		},
		cli.BoolFlag{
			Name:        "no-verify",
			Usage:       "store the account without contacting the provider",
			Destination: &accountNoPing,
		},
	}

	accountLogoutFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "name, n",
			Usage:       "account name to remove (default: the selected account)",
			Destination: &accountName,
		},
	}
)

const loginVerifyTimeout = 30 * time.Second

func accountLogin(ctx *cli.Context) error {
	if accountURL == "" || accountToken == "" {
		return common.PrintErrWithCmdHelp(
			ctx,
			errors.New("both --url and --token are required"),
		)
	}
	name := accountName
	if name == "" {
		name = credman.DefaultAccountKey
	}

	if !accountNoPing {
		cl, err := ibmq.NewClient(accountURL, accountToken, nil)
		if err != nil {
			common.PrintRuntimeErr(ctx, "account", "new_client", err)
			return nil
		}
		cctx, cancel := context.WithTimeout(context.Background(), loginVerifyTimeout)
		defer cancel()
		if _, err := cl.Backends(cctx); err != nil {
			common.PrintRuntimeErr(ctx, "account", "verify", err)
			return nil
		}
	}

	am, err := openAccountManager()
	if err != nil {
		common.PrintRuntimeErr(ctx, "account", "open_vault", err)
		return nil
	}
	err = am.SetAccount(types.Account{
		Name:  name,
		URL:   accountURL,
		Token: accountToken,
	})
	if err != nil {
		common.PrintRuntimeErr(ctx, "account", "save", err)
		return nil
	}
	fmt.Printf("Account %q saved.\n", name)
	return nil
}

func accountShow(ctx *cli.Context) error {
	am, err := openAccountManager()
	if err != nil {
		common.PrintRuntimeErr(ctx, "account", "open_vault", err)
		return nil
	}
	accounts := am.Accounts()
	if len(accounts) == 0 {
		fmt.Println("qiskit: no accounts stored")
		return nil
	}
	selected := am.Selected()
	fmt.Println("Stored accounts:")
	for _, a := range accounts {
		marker := " "
		if a.Name == selected {
			marker = "*"
		}
		fmt.Printf("%s %-12s %s (added %s)\n",
			marker, a.Name, a.URL, a.AddedAt.Format("2006-01-02"))
	}
	return nil
}

func accountLogout(ctx *cli.Context) error {
	am, err := openAccountManager()
	if err != nil {
		common.PrintRuntimeErr(ctx, "account", "open_vault", err)
		return nil
	}
	name := accountName
	if name == "" {
		name = am.Selected()
	}
	if name == "" {
		common.PrintRuntimeErr(ctx, "account", "logout", errors.New("no account to remove"))
		return nil
	}
	if err := am.DeleteAccount(name); err != nil {
		common.PrintRuntimeErr(ctx, "account", "delete", err)
		return nil
	}
	fmt.Printf("Account %q removed.\n", name)
	return nil
}
