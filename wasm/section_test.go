// Copyright 2020 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wasm_test

import (
	"bytes"
	"testing"

	"github.com/gowasm/toolkit/wasm"
)

func TestSectionCustomNameRoundTrip(t *testing.T) {
	names := wasm.NameSection{
		Entries: []wasm.NameSubsection{
			&wasm.ModuleNameSubsection{Name: "m"},
			&wasm.FunctionNamesSubsection{
				Names: []wasm.Naming{{Index: 0, Name: "main"}},
			},
		},
	}

	var data bytes.Buffer
	if err := names.MarshalWASM(&data); err != nil {
		t.Fatalf("marshal name section: %v", err)
	}

	m := wasm.NewModule()
	m.Customs = []*wasm.SectionCustom{
		{Name: wasm.CustomSectionName, Data: data.Bytes()},
	}

	var buf bytes.Buffer
	if err := m.WriteTo(&buf); err != nil {
		t.Fatalf("write module: %v", err)
	}

	decoded, err := wasm.DecodeModule(&buf)
	if err != nil {
		t.Fatalf("decode module: %v", err)
	}

	got, err := decoded.Names()
	if err != nil {
		t.Fatalf("names: %v", err)
	}
	if len(got.Entries) != len(names.Entries) {
		t.Fatalf("expected %d name subsections, got %d", len(names.Entries), len(got.Entries))
	}

	fn, ok := got.Entries[1].(*wasm.FunctionNamesSubsection)
	if !ok {
		t.Fatalf("expected function names subsection, got %T", got.Entries[1])
	}
	if len(fn.Names) != 1 || fn.Names[0].Name != "main" {
		t.Fatalf("unexpected function names: %+v", fn.Names)
	}
}

func TestModuleRoundTripEmpty(t *testing.T) {
	m := wasm.NewModule()

	var buf bytes.Buffer
	if err := m.WriteTo(&buf); err != nil {
		t.Fatalf("write module: %v", err)
	}

	decoded, err := wasm.DecodeModule(&buf)
	if err != nil {
		t.Fatalf("decode module: %v", err)
	}
	if decoded.Version != wasm.Version {
		t.Fatalf("expected version %d, got %d", wasm.Version, decoded.Version)
	}
}

func TestDecodeModuleBadVersion(t *testing.T) {
	_, err := wasm.DecodeModule(bytes.NewReader([]byte{0x00, 0x61, 0x73, 0x6d, 0x02, 0x00, 0x00, 0x00}))
	if err == nil {
		t.Fatal("expected an error for bad version")
	}
}
