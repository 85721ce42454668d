package wavescript

import "errors"

var (
	ErrScriptLoad          = errors.New("failed to load waveform script")
	ErrNoSamplesExport     = errors.New("waveform script has no samples export")
	ErrBadReturnShape      = errors.New("waveform script returned unexpected shape")
	ErrBadSampleCount      = errors.New("invalid sample count")
	ErrSampleCountMismatch = errors.New("sample count mismatch")
)
