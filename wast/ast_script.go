package wast

import (
	"bytes"

	"github.com/gowasm/toolkit/wasm"
)

// Pos is a line/column position in the source a script command was read from. It is
// informational only: it never affects equality or the behavior of any
// operation on a Command.
type Pos struct {
	Line, Column int
}

type Command interface {
	CommandPos() Pos

	isCommand()
}

type Script struct {
	Commands []Command
}

type ModuleCommand interface {
	Command

	Decode() (*wasm.Module, error)
	ModuleName() string
}

// ModuleLiteral carries the already-encoded bytes of a module definition
// appearing in a script. Script sources that spell modules in the text
// format are expected to have been lowered to binary by an external
// front-end before reaching this package.
type ModuleLiteral struct {
	Pos Pos

	Name string
	Data []byte

	// TextForm is true when the script named this module's source as the
	// text dialect rather than binary. Decode still reads Data as a binary
	// module; callers that can't parse the text dialect should treat a
	// TextForm module's decode/validate verdict as unverifiable instead of
	// trusting whatever DecodeModule makes of a .wat file's raw bytes.
	TextForm bool
}

func (m *ModuleLiteral) Decode() (*wasm.Module, error) {
	return wasm.DecodeModule(bytes.NewReader(m.Data))
}

func (m *ModuleLiteral) ModuleName() string {
	return m.Name
}

func (m *ModuleLiteral) CommandPos() Pos {
	return m.Pos
}

func (*ModuleLiteral) isCommand() {}

type Register struct {
	Pos Pos

	Export string
	Name   string
}

func (r *Register) CommandPos() Pos {
	return r.Pos
}

func (*Register) isCommand() {}

type Action interface {
	Command
	isAction()
}

type Invoke struct {
	Pos Pos

	Name   string
	Export string
	Args   []interface{}
}

func (i *Invoke) CommandPos() Pos {
	return i.Pos
}

func (*Invoke) isCommand() {}
func (*Invoke) isAction()  {}

type Get struct {
	Pos Pos

	Name   string
	Export string
}

func (g *Get) CommandPos() Pos {
	return g.Pos
}

func (*Get) isCommand() {}
func (*Get) isAction()  {}

type AssertReturn struct {
	Pos Pos

	Action  Action
	Results []interface{}
}

func (a *AssertReturn) CommandPos() Pos {
	return a.Pos
}

func (*AssertReturn) isCommand() {}

// NaNKind distinguishes the two NaN payload classes the conformance test
// format cares about: canonical (the single bit pattern IEEE 754 prefers)
// versus arithmetic (any NaN with the quiet bit set).
type NaNKind int

const (
	CanonicalNaN NaNKind = iota
	ArithmeticNaN
)

func (k NaNKind) String() string {
	switch k {
	case CanonicalNaN:
		return "canonical"
	case ArithmeticNaN:
		return "arithmetic"
	default:
		return "unknown"
	}
}

// AssertReturnNaN is assert_return_canonical_nan / assert_return_arithmetic_nan,
// the older wast2json command pair that asserts a float-returning action
// produces some member of a NaN class rather than one specific bit pattern.
type AssertReturnNaN struct {
	Pos Pos

	Action Action
	Kind   NaNKind
}

func (a *AssertReturnNaN) CommandPos() Pos {
	return a.Pos
}

func (*AssertReturnNaN) isCommand() {}

type AssertTrap struct {
	Pos Pos

	Command Command
	Failure string
}

func (a *AssertTrap) CommandPos() Pos {
	return a.Pos
}

func (*AssertTrap) isCommand() {}

type AssertExhaustion struct {
	Pos Pos

	Action  Action
	Failure string
}

func (a *AssertExhaustion) CommandPos() Pos {
	return a.Pos
}

func (*AssertExhaustion) isCommand() {}

// AssertionKind distinguishes the three module-level assertions that judge a
// module definition itself rather than an action performed against an
// instance of it.
type AssertionKind int

const (
	AssertMalformed AssertionKind = iota
	AssertInvalid
	AssertUnlinkable
)

func (k AssertionKind) String() string {
	switch k {
	case AssertMalformed:
		return "assert_malformed"
	case AssertInvalid:
		return "assert_invalid"
	case AssertUnlinkable:
		return "assert_unlinkable"
	default:
		return "assert_unknown"
	}
}

// ModuleAssertion is assert_malformed, assert_invalid, or assert_unlinkable:
// a claim about the module definition itself (decode failure, validation
// failure, or import-resolution failure), rather than about an action run
// against an instantiated module.
type ModuleAssertion struct {
	Pos Pos

	Kind    AssertionKind
	Module  ModuleCommand
	Failure string
}

func (m *ModuleAssertion) CommandPos() Pos {
	return m.Pos
}

func (*ModuleAssertion) isCommand() {}

type ScriptCommand struct {
	Pos Pos

	Name   string
	Script *Script
}

func (s *ScriptCommand) CommandPos() Pos {
	return s.Pos
}

func (*ScriptCommand) isCommand() {}

type Input struct {
	Pos Pos

	Name string
	Path string
}

func (i *Input) CommandPos() Pos {
	return i.Pos
}

func (*Input) isCommand() {}

type Output struct {
	Pos Pos

	Name string
	Path string
}

func (o *Output) CommandPos() Pos {
	return o.Pos
}

func (*Output) isCommand() {}
