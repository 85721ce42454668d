package cmd

import (
	"fmt"
	"runtime"

	"github.com/urfave/cli"

	"github.com/cjliu20152/qiskit/cmd/common"
)

// BuildArgs carries build-time metadata injected through ldflags.
type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

// currentBuildArgs is set by Execute so command actions can reach the
// build metadata without threading it through every call.
var currentBuildArgs BuildArgs

func Execute(args []string, bArgs BuildArgs) error {
	currentBuildArgs = bArgs
	app := cli.App{
		Name:                  "qiskit",
		HelpName:              "qiskit",
		Usage:                 "A pulse-level quantum programming toolkit.",
		Version:               fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:             "qiskit <command> [arguments...]",
		Description:           DESCRIPTION,
		CustomAppHelpTemplate: HELP_TEMPL,
		OnUsageError:          common.UsageErrorCallback,
		Commands: append([]cli.Command{
			{
				Name:   "daemon",
				Usage:  "run the pulse daemon in the foreground",
				Action: getDaemonAction(),
			},
			{
				Name:   "stop-daemon",
				Usage:  "stop a daemon started in the background",
				Action: stopDaemon,
			},
			{
				Name:                   "run",
				Aliases:                []string{"r"},
				Usage:                  "compile and run a pulse program",
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				OnUsageError:           common.UsageErrorCallback,
				Action:                 run,
				Flags:                  runFlags,
				UseShortOptionHandling: true,
				Description:            RunDescription,
			},
			{
				Name:                   "draw",
				Usage:                  "render a program's schedule",
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				OnUsageError:           common.UsageErrorCallback,
				Action:                 draw,
				Flags:                  drawFlags,
				UseShortOptionHandling: true,
				Description:            DrawDescription,
			},
			{
				Name:                   "jobs",
				Aliases:                []string{"l"},
				Usage:                  "display submitted jobs",
				Action:                 jobs,
				OnUsageError:           common.UsageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Description:            JobsDescription,
				UseShortOptionHandling: true,
				Flags:                  jobsFlags,
			},
			{
				Name:               "status",
				Usage:              "show the state of a job",
				Action:             status,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        StatusDescription,
			},
			{
				Name:               "result",
				Usage:              "fetch and render job results",
				Action:             result,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        ResultDescription,
			},
			{
				Name:               "cancel",
				Usage:              "cancel a job",
				Action:             cancel,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        CancelDescription,
			},
			{
				Name:               "attach",
				Usage:              "re-attach to a job's progress stream",
				Action:             attach,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        AttachDescription,
				Flags:              attachFlags,
			},
			{
				Name:                   "flush",
				Aliases:                []string{"c"},
				Usage:                  "clear finished jobs from the store",
				Description:            FlushDescription,
				OnUsageError:           common.UsageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Action:                 flush,
				UseShortOptionHandling: true,
				Flags:                  flsFlags,
			},
			{
				Name:                   "backends",
				Aliases:                []string{"b"},
				Usage:                  "list execution backends",
				Action:                 backends,
				OnUsageError:           common.UsageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Description:            BackendsDescription,
				UseShortOptionHandling: true,
				Flags:                  backendsFlags,
			},
			{
				Name:               "waveform",
				Usage:              "evaluate a waveform and print its samples",
				Action:             waveform,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        WaveformDescription,
				Flags:              waveformFlags,
			},
			{
				Name:               "account",
				Usage:              "manage remote provider accounts",
				Description:        AccountDescription,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Subcommands: []cli.Command{
					{
						Name:   "login",
						Usage:  "store an account in the vault",
						Action: accountLogin,
						Flags:  accountLoginFlags,
					},
					{
						Name:   "show",
						Usage:  "list stored accounts",
						Action: accountShow,
					},
					{
						Name:   "logout",
						Usage:  "remove an account from the vault",
						Action: accountLogout,
						Flags:  accountLogoutFlags,
					},
				},
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action:  common.Help,
			},
			{
				Name:               "version",
				Aliases:            []string{"v"},
				Usage:              "prints installed version of qiskit",
				UsageText:          " ",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             common.GetVersion,
			},
		}, getPlatformCommands()...),
		Action:                 run,
		Flags:                  runFlags,
		UseShortOptionHandling: true,
		HideHelp:               true,
		HideVersion:            true,
	}
	common.VersionCmdStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)
	return app.Run(args)
}
