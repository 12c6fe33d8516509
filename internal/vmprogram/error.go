// Package vmprogram defines the immutable Program container the
// interpreter consumes, its Instruction/Operand encoding, the OPCode
// enumeration, and the front-end Error descriptor.
package vmprogram

import "fmt"

// ErrorKind is the three-letter classification of a front-end or VM
// error, per the glossary's error-kind set.
type ErrorKind string

const (
	KindFileManager  ErrorKind = "flm"
	KindLexer        ErrorKind = "lxr"
	KindPreprocessor ErrorKind = "ppr"
	KindSyntax       ErrorKind = "syx"
	KindType         ErrorKind = "typ"
	KindLogic        ErrorKind = "lgc"
	KindEval         ErrorKind = "evl"
)

// Error is the descriptor carried by front-end collaborators (and, for
// KindEval, by the VM's own crash reporting at the CLI boundary). Only
// the VM's Crash type is returned directly from Processor methods;
// Error is what vmsource/wings/lexer/compiler return.
type Error struct {
	File    string
	Message string
	Line    int
	Start   int
	End     int
	Kind    ErrorKind
}

// Code returns the three-letter textual code for the error's kind.
func (e Error) Code() string { return string(e.Kind) }

func (e Error) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s:%d: %s", e.Code(), e.File, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code(), e.Message)
}
