package cmd

import (
	"os"
	"path/filepath"

	"github.com/cjliu20152/qiskit/pkg/credman"
	"github.com/cjliu20152/qiskit/pkg/credman/keyring"
)

// ConfigDirEnv overrides the config directory, mainly for tests and
// containers without a home directory.
const ConfigDirEnv = "QISKIT_CONFIG_DIR"

const (
	DEF_SHOTS      = 1024
	DEF_MEAS_LEVEL = 2
	dbFileName     = "jobs.db"
	vaultFileName  = "accounts.vault"
)

// configDir resolves the directory holding the job database, the account
// vault and the pid file. It is created on first use.
func configDir() (string, error) {
	dir := os.Getenv(ConfigDirEnv)
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(base, "qiskit")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// openAccountManager opens the account vault under the config dir, with
// the vault key resolved from the OS keyring or its fallbacks.
func openAccountManager() (*credman.AccountManager, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}
	key, err := keyring.LoadOrCreate(keyring.Resolve(dir))
	if err != nil {
		return nil, err
	}
	return credman.NewAccountManager(filepath.Join(dir, vaultFileName), key)
}

const DESCRIPTION = `
Qiskit is a pulse-level quantum programming toolkit. It compiles
pulse programs to schedules, runs them on built-in simulator
backends through a local daemon, and talks to IBM-Quantum-style
remote services with the same interfaces.
`

const (
	RunDescription = `The run command compiles a pulse program file (.hcl, or an
assembled qobj .json) and submits it to a backend. Unless --detach
is given it stays attached, rendering shot progress, and prints the
measurement counts when the job finishes.

Example:
        qiskit run rabi.hcl
        qiskit run --backend sim5q --shots 4096 rabi.hcl
        qiskit run --every '0 * * * *' calibration.hcl

`
	DrawDescription = `The draw command compiles a pulse program file and renders its
first schedule as a text timeline, an SVG envelope plot or a DOT
dependency graph.

Example:
        qiskit draw rabi.hcl
        qiskit draw --format svg --output rabi.svg rabi.hcl

`
	JobsDescription = `The jobs command displays submitted jobs along with their unique
job ids, which the status, result, cancel and attach commands take.

Example:
        qiskit jobs
        qiskit jobs --status RUNNING

`
	StatusDescription = `The status command reports the lifecycle state of one job,
including its queue position while it waits.

Example:
        qiskit status <job id>

`
	ResultDescription = `The result command fetches the measurement results of a finished
job and renders a counts histogram per experiment.

Example:
        qiskit result <job id>

`
	CancelDescription = `The cancel command stops a queued, scheduled or running job.

Example:
        qiskit cancel <job id>

`
	AttachDescription = `The attach command re-attaches to a submitted job and renders its
shot progress until it reaches a terminal state.

Example:
        qiskit attach <job id>

`
	FlushDescription = `The flush command deletes finished jobs from the job store, a
single job when --job-id is given or every terminal job otherwise.

Example:
        qiskit flush

`
	BackendsDescription = `The backends command lists the execution backends the daemon
serves, or the backends of the selected remote account with
--remote.

Example:
        qiskit backends
        qiskit backends --remote

`
	WaveformDescription = `The waveform command evaluates a library waveform (gaussian,
gaussian_square, drag, constant) or a JavaScript waveform script and
prints its samples.

Example:
        qiskit waveform gaussian --duration 160 --amp 0.5 --sigma 40
        qiskit waveform script --path envelope.js --duration 160

`
	AccountDescription = `The account command manages remote provider credentials in an
encrypted vault: login stores an account, show lists stored
accounts, logout removes one.

Example:
        qiskit account login --name ibmq --url https://api.example.com --token <token>
        qiskit account show
        qiskit account logout --name ibmq

`
)
