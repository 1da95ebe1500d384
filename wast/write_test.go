// Copyright 2018 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wast_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gowasm/toolkit/wasm"
	"github.com/gowasm/toolkit/wasm/code"
	"github.com/gowasm/toolkit/wast"
)

func encodeBody(t *testing.T, instrs ...code.Instruction) wasm.FunctionBody {
	var buf bytes.Buffer
	require.NoError(t, code.Encode(&buf, instrs))
	return wasm.FunctionBody{Code: buf.Bytes()}
}

func writeText(t *testing.T, m *wasm.Module) string {
	var buf bytes.Buffer
	require.NoError(t, wast.WriteTo(&buf, m))
	return buf.String()
}

func TestWriteEmptyModule(t *testing.T) {
	text := writeText(t, wasm.NewModule())
	require.Equal(t, "(module)\n", text)
}

func TestWriteFunctionBody(t *testing.T) {
	m := wasm.NewModule()
	m.Types = &wasm.SectionTypes{Entries: []wasm.FunctionSig{
		{ReturnTypes: []wasm.ValueType{wasm.ValueTypeI32}},
	}}
	m.Function = &wasm.SectionFunctions{Types: []uint32{0}}
	m.Code = &wasm.SectionCode{Bodies: []wasm.FunctionBody{
		encodeBody(t, code.I32Const(42), code.End()),
	}}

	text := writeText(t, m)
	require.Contains(t, text, "(func")
	require.Contains(t, text, "i32.const 42")
}

func TestWriteActiveElementSegment(t *testing.T) {
	m := wasm.NewModule()
	m.Table = &wasm.SectionTables{Entries: []wasm.Table{{ElementType: wasm.ElemTypeAnyFunc}}}
	m.Elements = &wasm.SectionElements{Entries: []wasm.ElementSegment{
		{
			Mode:   wasm.ElementModeActive,
			Offset: mustEncode(t, code.I32Const(0), code.End()),
			Elems:  []uint32{0, 1},
		},
	}}

	text := writeText(t, m)
	require.Contains(t, text, "(elem")
	require.Contains(t, text, ") 0 1")
	require.NotContains(t, text, "func 0 1")
	require.NotContains(t, text, "declare")
}

func TestWriteActiveElementSegmentNonzeroTable(t *testing.T) {
	m := wasm.NewModule()
	m.Table = &wasm.SectionTables{Entries: []wasm.Table{
		{ElementType: wasm.ElemTypeAnyFunc},
		{ElementType: wasm.ElemTypeAnyFunc},
	}}
	m.Elements = &wasm.SectionElements{Entries: []wasm.ElementSegment{
		{
			Mode:   wasm.ElementModeActive,
			Index:  1,
			Offset: mustEncode(t, code.I32Const(0), code.End()),
			Elems:  []uint32{0},
		},
	}}

	text := writeText(t, m)
	require.Contains(t, text, "func 0")
}

func TestWriteDeclarativeElementSegment(t *testing.T) {
	m := wasm.NewModule()
	m.Elements = &wasm.SectionElements{Entries: []wasm.ElementSegment{
		{
			Mode:  wasm.ElementModeDeclarative,
			Elems: []uint32{0},
		},
	}}

	text := writeText(t, m)
	require.Contains(t, text, "(elem declare")
}

func TestWritePassiveDataSegment(t *testing.T) {
	m := wasm.NewModule()
	m.Data = &wasm.SectionData{Entries: []wasm.DataSegment{
		{Passive: true, Data: []byte("hi")},
	}}

	text := writeText(t, m)
	require.Contains(t, text, "(data")
	require.NotContains(t, text, "memory.init")
}

func mustEncode(t *testing.T, instrs ...code.Instruction) []byte {
	var buf bytes.Buffer
	require.NoError(t, code.Encode(&buf, instrs))
	return buf.Bytes()
}
