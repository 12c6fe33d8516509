package main

import (
	"strings"

	"github.com/pkg/errors"

	"crucible/internal/vmprogram"
	"crucible/internal/vmsource"
)

const binaryExt = ".cbc"

// loadProgram loads a Program from path, assembling it from text
// source unless it carries the binary extension produced by build.
func loadProgram(path string) (*vmprogram.Program, error) {
	if strings.HasSuffix(path, binaryExt) {
		data, err := vmsource.ReadBinaryFile(path)
		if err != nil {
			return nil, err
		}
		program, err := vmsource.DecodeProgram(data)
		if err != nil {
			return nil, errors.Wrap(err, "decoding binary")
		}
		return program, nil
	}
	return assembleFile(path)
}
