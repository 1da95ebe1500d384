// Copyright 2020 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validate_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gowasm/toolkit/wasm"
	"github.com/gowasm/toolkit/wasm/code"
	"github.com/gowasm/toolkit/wasm/validate"
)

func encodeBody(t *testing.T, instrs ...code.Instruction) wasm.FunctionBody {
	var buf bytes.Buffer
	require.NoError(t, code.Encode(&buf, instrs))
	return wasm.FunctionBody{Code: buf.Bytes()}
}

func TestValidateModuleEmptyFunction(t *testing.T) {
	m := wasm.NewModule()
	m.Types = &wasm.SectionTypes{Entries: []wasm.FunctionSig{{}}}
	m.Function = &wasm.SectionFunctions{Types: []uint32{0}}
	m.Code = &wasm.SectionCode{Bodies: []wasm.FunctionBody{
		encodeBody(t, code.End()),
	}}

	require.NoError(t, validate.ValidateModule(m, true))
}

func TestValidateModuleStackTypeMismatch(t *testing.T) {
	m := wasm.NewModule()
	m.Types = &wasm.SectionTypes{Entries: []wasm.FunctionSig{
		{ReturnTypes: []wasm.ValueType{wasm.ValueTypeI32}},
	}}
	m.Function = &wasm.SectionFunctions{Types: []uint32{0}}
	m.Code = &wasm.SectionCode{Bodies: []wasm.FunctionBody{
		encodeBody(t, code.I64Const(0), code.End()),
	}}

	err := validate.ValidateModule(m, true)
	require.Error(t, err)
}

func TestValidateModuleUnknownCallTarget(t *testing.T) {
	m := wasm.NewModule()
	m.Types = &wasm.SectionTypes{Entries: []wasm.FunctionSig{{}}}
	m.Function = &wasm.SectionFunctions{Types: []uint32{0}}
	m.Code = &wasm.SectionCode{Bodies: []wasm.FunctionBody{
		encodeBody(t, code.Call(5), code.End()),
	}}

	err := validate.ValidateModule(m, true)
	require.Error(t, err)
}

func TestValidateModuleDataCountMismatch(t *testing.T) {
	m := wasm.NewModule()
	m.DataCount = &wasm.SectionDataCount{Count: 1}
	m.Data = &wasm.SectionData{Entries: []wasm.DataSegment{
		{Passive: true, Data: []byte("a")},
		{Passive: true, Data: []byte("b")},
	}}

	err := validate.ValidateModule(m, false)
	require.Error(t, err)
}

func TestValidateModuleMemoryInitRequiresDataCount(t *testing.T) {
	m := wasm.NewModule()
	m.Memory = &wasm.SectionMemories{Entries: []wasm.Memory{{}}}
	m.Types = &wasm.SectionTypes{Entries: []wasm.FunctionSig{{}}}
	m.Function = &wasm.SectionFunctions{Types: []uint32{0}}
	m.Code = &wasm.SectionCode{Bodies: []wasm.FunctionBody{
		encodeBody(t, code.I32Const(0), code.I32Const(0), code.I32Const(0), code.MemoryInit(0), code.End()),
	}}

	err := validate.ValidateModule(m, true)
	require.Error(t, err)

	m.DataCount = &wasm.SectionDataCount{Count: 1}
	m.Data = &wasm.SectionData{Entries: []wasm.DataSegment{{Passive: true, Data: []byte("x")}}}

	require.NoError(t, validate.ValidateModule(m, true))
}
