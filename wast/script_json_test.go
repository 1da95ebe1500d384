// Copyright 2020 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wast_test

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gowasm/toolkit/wasm"
	"github.com/gowasm/toolkit/wast"
)

func encodeModule(t *testing.T) []byte {
	m := wasm.NewModule()
	var buf bytes.Buffer
	require.NoError(t, m.WriteTo(&buf))
	return buf.Bytes()
}

func TestParseScriptModuleAndAssertReturn(t *testing.T) {
	const doc = `{
		"source_filename": "test.wast",
		"commands": [
			{"type": "module", "line": 1, "filename": "test.0.wasm", "name": "$m"},
			{"type": "assert_return", "line": 2, "action": {
				"type": "invoke", "module": "$m", "field": "add",
				"args": [{"type": "i32", "value": "1"}, {"type": "i32", "value": "2"}]
			}, "expected": [{"type": "i32", "value": "3"}]}
		]
	}`

	load := func(filename string) ([]byte, error) {
		return encodeModule(t), nil
	}

	script, err := wast.ParseScript(strings.NewReader(doc), load)
	require.NoError(t, err)
	require.Len(t, script.Commands, 2)

	mod, ok := script.Commands[0].(*wast.ModuleLiteral)
	require.True(t, ok)
	require.Equal(t, "$m", mod.ModuleName())

	assertReturn, ok := script.Commands[1].(*wast.AssertReturn)
	require.True(t, ok)
	invoke, ok := assertReturn.Action.(*wast.Invoke)
	require.True(t, ok)
	require.Equal(t, "add", invoke.Export)
	require.Equal(t, []interface{}{int32(1), int32(2)}, invoke.Args)
	require.Equal(t, []interface{}{int32(3)}, assertReturn.Results)
}

func TestParseScriptAssertMalformed(t *testing.T) {
	const doc = `{
		"source_filename": "test.wast",
		"commands": [
			{"type": "assert_malformed", "line": 1, "filename": "bad.0.wasm", "text": "unexpected end"}
		]
	}`

	load := func(filename string) ([]byte, error) {
		return []byte{0x00}, nil
	}

	script, err := wast.ParseScript(strings.NewReader(doc), load)
	require.NoError(t, err)
	require.Len(t, script.Commands, 1)

	assertion, ok := script.Commands[0].(*wast.ModuleAssertion)
	require.True(t, ok)
	require.Equal(t, wast.AssertMalformed, assertion.Kind)
	require.Equal(t, "unexpected end", assertion.Failure)
}

func TestParseScriptUnknownCommand(t *testing.T) {
	const doc = `{"source_filename": "x.wast", "commands": [{"type": "bogus", "line": 1}]}`

	_, err := wast.ParseScript(strings.NewReader(doc), func(string) ([]byte, error) {
		return nil, nil
	})
	require.Error(t, err)
}

func TestParseScriptAssertReturnNaN(t *testing.T) {
	const doc = `{
		"source_filename": "test.wast",
		"commands": [
			{"type": "assert_return_canonical_nan", "line": 1, "action": {
				"type": "invoke", "field": "f32.nan", "args": []
			}},
			{"type": "assert_return_arithmetic_nan", "line": 2, "action": {
				"type": "invoke", "field": "f64.nan", "args": []
			}}
		]
	}`

	script, err := wast.ParseScript(strings.NewReader(doc), func(string) ([]byte, error) {
		return nil, nil
	})
	require.NoError(t, err)
	require.Len(t, script.Commands, 2)

	canonical, ok := script.Commands[0].(*wast.AssertReturnNaN)
	require.True(t, ok)
	require.Equal(t, wast.CanonicalNaN, canonical.Kind)

	arithmetic, ok := script.Commands[1].(*wast.AssertReturnNaN)
	require.True(t, ok)
	require.Equal(t, wast.ArithmeticNaN, arithmetic.Kind)
}

func TestParseScriptAssertReturnExpectedNaN(t *testing.T) {
	const doc = `{
		"source_filename": "test.wast",
		"commands": [
			{"type": "assert_return", "line": 1, "action": {
				"type": "invoke", "field": "f", "args": []
			}, "expected": [{"type": "f32", "value": "nan:canonical"}, {"type": "f64", "value": "inf"}]}
		]
	}`

	script, err := wast.ParseScript(strings.NewReader(doc), func(string) ([]byte, error) {
		return nil, nil
	})
	require.NoError(t, err)

	assertReturn, ok := script.Commands[0].(*wast.AssertReturn)
	require.True(t, ok)
	require.Len(t, assertReturn.Results, 2)

	nan, ok := assertReturn.Results[0].(float32)
	require.True(t, ok)
	require.True(t, nan != nan) // NaN is the only float that isn't equal to itself.

	inf, ok := assertReturn.Results[1].(float64)
	require.True(t, ok)
	require.True(t, math.IsInf(inf, 1))
}

func TestParseScriptTextFormModule(t *testing.T) {
	const doc = `{
		"source_filename": "test.wast",
		"commands": [
			{"type": "assert_malformed", "line": 1, "filename": "bad.0.wat", "module_type": "text", "text": "unexpected token"}
		]
	}`

	script, err := wast.ParseScript(strings.NewReader(doc), func(string) ([]byte, error) {
		return []byte("(module"), nil
	})
	require.NoError(t, err)

	assertion, ok := script.Commands[0].(*wast.ModuleAssertion)
	require.True(t, ok)
	mod, ok := assertion.Module.(*wast.ModuleLiteral)
	require.True(t, ok)
	require.True(t, mod.TextForm)
}
