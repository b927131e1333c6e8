package cant

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Script-visible error types. A rescue clause names one of these to
// narrow what it handles; RuntimeError and Error match everything.
const (
	ErrTypeRuntime                 = "RuntimeError"
	ErrTypeType                    = "TypeError"
	ErrTypeRange                   = "RangeError"
	ErrTypeReference               = "ReferenceError"
	ErrTypeSyntax                  = "SyntaxError"
	ErrTypeAssert                  = "AssertError"
	ErrTypeCapability              = "CapabilityError"
	ErrTypeCapabilityNotExecutable = "CapabilityNotExecutable"
)

// Quota breaches surface as errors wrapping these sentinels. They are
// host control signals: scripts cannot rescue them, and embedders
// classify them with errors.Is.
var (
	ErrStepQuota   = errors.New("step quota exceeded")
	ErrMemoryQuota = errors.New("memory quota exceeded")
)

// RuntimeError is a script-level failure: an error type the script can
// rescue by name, a message, and the call stack captured where it was
// raised. It carries script positions only, never host file paths or
// Go stack frames.
type RuntimeError struct {
	Type      string
	Message   string
	CodeFrame string
	Frames    []string
}

const (
	renderedFrameHead = 8
	renderedFrameTail = 8
)

func (e *RuntimeError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)

	if e.CodeFrame != "" {
		sb.WriteByte('\n')
		sb.WriteString(e.CodeFrame)
	}

	head := e.Frames
	var tail []string
	omitted := 0
	if len(e.Frames) > renderedFrameHead+renderedFrameTail+1 {
		omitted = len(e.Frames) - renderedFrameHead - renderedFrameTail
		head = e.Frames[:renderedFrameHead]
		tail = e.Frames[len(e.Frames)-renderedFrameTail:]
	}

	for _, frame := range head {
		fmt.Fprintf(&sb, "\n  at %s", frame)
	}
	if omitted > 0 {
		fmt.Fprintf(&sb, "\n  ... %d frames omitted ...", omitted)
	}
	for _, frame := range tail {
		fmt.Fprintf(&sb, "\n  at %s", frame)
	}

	return sb.String()
}

// SyntaxError is returned by Compile when the source does not parse.
// Message holds every parse problem, one per line; CodeFrame points at
// the first.
type SyntaxError struct {
	Message   string
	CodeFrame string
}

func (e *SyntaxError) Error() string {
	if e.CodeFrame == "" {
		return e.Message
	}
	return e.Message + "\n" + e.CodeFrame
}

// NewError builds a script-rescuable error carrying an explicit kind.
// Adapters use it to surface host-side failures under the kind a
// rescue clause can name, such as CapabilityNotExecutable.
func NewError(kind, format string, args ...any) error {
	return &kindError{typ: kind, msg: fmt.Sprintf(format, args...)}
}

// kindError tags an error with a script-visible type before wrapError
// attaches a position and call stack to it.
type kindError struct {
	typ string
	msg string
}

func (e *kindError) Error() string { return e.msg }

func typeErrorf(format string, args ...any) error {
	return &kindError{typ: ErrTypeType, msg: fmt.Sprintf(format, args...)}
}

func rangeErrorf(format string, args ...any) error {
	return &kindError{typ: ErrTypeRange, msg: fmt.Sprintf(format, args...)}
}

func referenceErrorf(format string, args ...any) error {
	return &kindError{typ: ErrTypeReference, msg: fmt.Sprintf(format, args...)}
}

func capabilityErrorf(format string, args ...any) error {
	return &kindError{typ: ErrTypeCapability, msg: fmt.Sprintf(format, args...)}
}

// classifyErrorType maps a raw evaluation error to its script-visible
// type. Untagged errors are plain runtime errors.
func classifyErrorType(err error) string {
	var tagged *kindError
	if errors.As(err, &tagged) {
		return tagged.typ
	}
	return ErrTypeRuntime
}

// formatCodeFrame renders the offending source line with a caret under
// the reported column.
func formatCodeFrame(source string, pos Position) string {
	if source == "" || pos.Line <= 0 {
		return ""
	}

	lines := strings.Split(source, "\n")
	if pos.Line > len(lines) {
		return ""
	}
	line := lines[pos.Line-1]

	column := pos.Column
	if column < 1 {
		column = 1
	}
	if column > len(line)+1 {
		column = len(line) + 1
	}

	gutter := strconv.Itoa(pos.Line)
	pad := strings.Repeat(" ", len(gutter))
	caret := strings.Repeat(" ", column-1)

	var sb strings.Builder
	fmt.Fprintf(&sb, "  --> line %d, column %d\n", pos.Line, pos.Column)
	fmt.Fprintf(&sb, " %s | %s\n", gutter, line)
	fmt.Fprintf(&sb, " %s | %s^", pad, caret)
	return sb.String()
}
