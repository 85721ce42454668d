package cmd

import (
	"time"

	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"

	cmdCommon "github.com/cjliu20152/qiskit/cmd/common"
	"github.com/cjliu20152/qiskit/common"
	"github.com/cjliu20152/qiskit/pkg/qiskitcli"
)

// daemonURI holds the --daemon-uri flag shared by client commands. Empty
// means the default local transport with daemon auto-spawn.
var daemonURI string

func daemonURIFlag() cli.Flag {
	return cli.StringFlag{
		Name:        "daemon-uri",
		Usage:       "daemon URI to connect to (e.g., tcp://localhost:4024, unix:///tmp/qiskitd.sock)",
		Destination: &daemonURI,
		EnvVar:      "QISKIT_DAEMON_URI",
	}
}

// newClient connects to the daemon and warns about version skew.
func newClient() (*qiskitcli.Client, error) {
	client, err := qiskitcli.NewClientWithURI(daemonURI)
	if err != nil {
		return nil, err
	}
	client.CheckVersionMismatch(currentBuildArgs.Version)
	return client, nil
}

func jobStopped(sc *ShotCounter) func(r *common.RunningResponse) error {
	return func(r *common.RunningResponse) error {
		sc.bar.Abort(false)
		sc.Stop()
		return qiskitcli.ErrDisconnect
	}
}

func jobProgress(sc *ShotCounter) func(r *common.RunningResponse) error {
	return func(r *common.RunningResponse) error {
		sc.Observe(r.TotalShots, r.CompletedShots)
		return nil
	}
}

func jobComplete(bar *mpb.Bar, sc *ShotCounter) func(r *common.RunningResponse) error {
	return func(r *common.RunningResponse) error {
		sc.Stop()
		if !bar.Completed() {
			if r.TotalShots > 0 {
				bar.SetTotal(r.TotalShots, true)
			} else {
				bar.SetTotal(bar.Current(), true)
			}
		}
		return qiskitcli.ErrDisconnect
	}
}

// RegisterHandlers wires the mpb progress bar to a job's pushed events.
// totalShots may be zero when unknown up front; the bar total is then
// taken from the first progress event.
func RegisterHandlers(client *qiskitcli.Client, totalShots int64) *mpb.Progress {
	rr := time.Millisecond * 30
	sc := NewShotCounter(rr)
	p := mpb.New(mpb.WithWidth(64), mpb.WithRefreshRate(rr))
	bar := cmdCommon.InitShotsBar(p, "", totalShots)
	sc.SetBar(bar)
	sc.Start()
	client.AddHandler(
		common.UPDATE_RUNNING,
		qiskitcli.NewRunningHandler(common.JobProgress, jobProgress(sc)),
	)
	client.AddHandler(
		common.UPDATE_RUNNING,
		qiskitcli.NewRunningHandler(common.JobDone, jobComplete(bar, sc)),
	)
	client.AddHandler(
		common.UPDATE_RUNNING,
		qiskitcli.NewRunningHandler(common.JobErrored, jobStopped(sc)),
	)
	client.AddHandler(
		common.UPDATE_RUNNING,
		qiskitcli.NewRunningHandler(common.JobCancelled, jobStopped(sc)),
	)
	client.AddHandler(
		common.UPDATE_RUNNING,
		qiskitcli.NewRunningHandler(common.JobStarted, func(r *common.RunningResponse) error {
			return nil
		}),
	)
	client.AddHandler(
		common.UPDATE_RUNNING,
		qiskitcli.NewRunningHandler(common.JobQueued, func(r *common.RunningResponse) error {
			return nil
		}),
	)
	return p
}
