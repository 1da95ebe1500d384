package script

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gowasm/toolkit/wasm"
	"github.com/gowasm/toolkit/wast"
)

func encodeTestModule(t *testing.T, m *wasm.Module) []byte {
	var buf bytes.Buffer
	require.NoError(t, m.WriteTo(&buf))
	return buf.Bytes()
}

// invalidModule decodes cleanly but fails validation: its function section
// references a type index with no corresponding entry in the type section.
func invalidModule(t *testing.T) []byte {
	m := wasm.NewModule()
	m.Function = &wasm.SectionFunctions{Types: []uint32{0}}
	m.Code = &wasm.SectionCode{Bodies: []wasm.FunctionBody{{}}}
	return encodeTestModule(t, m)
}

func TestRunAssertMalformedAgainstUndecodableModule(t *testing.T) {
	sc := &wast.Script{Commands: []wast.Command{
		&wast.ModuleAssertion{
			Kind:   wast.AssertMalformed,
			Module: &wast.ModuleLiteral{Data: []byte{0x00, 0x00, 0x00, 0x00}},
		},
	}}

	stats := run(sc)
	require.Equal(t, 1, stats.checked)
	require.Equal(t, 0, stats.failed)
}

func TestRunAssertMalformedAgainstDecodableModule(t *testing.T) {
	sc := &wast.Script{Commands: []wast.Command{
		&wast.ModuleAssertion{
			Kind:   wast.AssertMalformed,
			Module: &wast.ModuleLiteral{Data: invalidModule(t)},
		},
	}}

	stats := run(sc)
	require.Equal(t, 1, stats.checked)
	require.Equal(t, 1, stats.failed, "a module that decodes should fail assert_malformed regardless of validation outcome")
}

func TestRunAssertInvalidAgainstDecodableButInvalidModule(t *testing.T) {
	sc := &wast.Script{Commands: []wast.Command{
		&wast.ModuleAssertion{
			Kind:   wast.AssertInvalid,
			Module: &wast.ModuleLiteral{Data: invalidModule(t)},
		},
	}}

	stats := run(sc)
	require.Equal(t, 1, stats.checked)
	require.Equal(t, 0, stats.failed)
}

func TestRunAssertInvalidAgainstUndecodableModule(t *testing.T) {
	sc := &wast.Script{Commands: []wast.Command{
		&wast.ModuleAssertion{
			Kind:   wast.AssertInvalid,
			Module: &wast.ModuleLiteral{Data: []byte{0x00, 0x00, 0x00, 0x00}},
		},
	}}

	stats := run(sc)
	require.Equal(t, 1, stats.checked)
	require.Equal(t, 1, stats.failed, "assert_invalid expects a decodable module, so a decode failure is the wrong kind of failure")
}

func TestRunSkipsTextFormModules(t *testing.T) {
	sc := &wast.Script{Commands: []wast.Command{
		&wast.ModuleLiteral{Data: []byte("(module)"), TextForm: true},
		&wast.ModuleAssertion{
			Kind:   wast.AssertMalformed,
			Module: &wast.ModuleLiteral{Data: []byte("(module"), TextForm: true},
		},
	}}

	stats := run(sc)
	require.Equal(t, 0, stats.checked)
	require.Equal(t, 0, stats.failed)
	require.Equal(t, 2, stats.skipped)
}

func TestRunSkipsUnexecutedCommands(t *testing.T) {
	sc := &wast.Script{Commands: []wast.Command{
		&wast.Register{},
		&wast.Invoke{},
		&wast.Get{},
		&wast.AssertReturn{},
		&wast.AssertReturnNaN{},
		&wast.AssertTrap{},
		&wast.AssertExhaustion{},
	}}

	stats := run(sc)
	require.Equal(t, 0, stats.checked)
	require.Equal(t, 0, stats.failed)
	require.Equal(t, len(sc.Commands), stats.skipped)
}
