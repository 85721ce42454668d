// Package program loads declarative pulse programs. A program file is
// either an HCL document describing schedules instruction by
// instruction, or an assembled qobj JSON payload. Both forms compile to
// the same in-memory Program.
package program

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/cjliu20152/qiskit/internal/wavescript"
	"github.com/cjliu20152/qiskit/pkg/pulse"
	"github.com/cjliu20152/qiskit/pkg/qobj"
)

// Program is a compiled pulse program ready for assembly and
// submission.
type Program struct {
	Name       string
	Backend    string
	Shots      int
	MeasLevel  int
	MeasReturn string
	Seed       int64
	Schedules  []*pulse.Schedule
}

// Opts carries the optional loader knobs.
type Opts struct {
	// Fs resolves program and script files. Nil means the host
	// filesystem.
	Fs afero.Fs
	// Scripts evaluates script() waveforms. Nil builds an engine on
	// Fs.
	Scripts *wavescript.Engine
}

func (o *Opts) withDefaults() *Opts {
	out := &Opts{}
	if o != nil {
		*out = *o
	}
	if out.Fs == nil {
		out.Fs = afero.NewOsFs()
	}
	if out.Scripts == nil {
		out.Scripts = wavescript.NewEngine(out.Fs, nil)
	}
	return out
}

// LoadFile reads and compiles the program at path. The format is picked
// by extension: .hcl programs are compiled, .json files are parsed as
// assembled qobj payloads and disassembled back into schedules.
func LoadFile(path string, opts *Opts) (*Program, error) {
	opts = opts.withDefaults()
	src, err := afero.ReadFile(opts.Fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "read program %s", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return Parse(path, src, opts)
	case ".json":
		return fromQobjJSON(path, src)
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "%s", path)
	}
}

// fromQobjJSON rebuilds a Program from an assembled payload.
func fromQobjJSON(path string, src []byte) (*Program, error) {
	var q qobj.Qobj
	if err := json.Unmarshal(src, &q); err != nil {
		return nil, errors.Wrapf(err, "parse qobj %s", path)
	}
	scheds, err := qobj.Disassemble(&q)
	if err != nil {
		return nil, errors.Wrapf(err, "disassemble qobj %s", path)
	}
	name := q.Header.JobName
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &Program{
		Name:       name,
		Backend:    q.Header.BackendName,
		Shots:      q.Config.Shots,
		MeasLevel:  q.Config.MeasLevel,
		MeasReturn: q.Config.MeasReturn,
		Seed:       q.Config.Seed,
		Schedules:  scheds,
	}, nil
}
