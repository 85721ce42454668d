package program

import "errors"

var (
	ErrUnknownFormat = errors.New("unknown program file format")
	ErrNoProgram     = errors.New("file contains no program block")
	ErrNoSchedules   = errors.New("program has no schedule blocks")
)
