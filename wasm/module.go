// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wasm

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/gowasm/toolkit/wasm/internal/readpos"
	"github.com/gowasm/toolkit/wasm/leb128"
)

var ErrInvalidMagic = errors.New("magic header not detected")

const (
	Magic   uint32 = 0x6d736100
	Version uint32 = 0x1
)

// Function represents an entry in the function index space of a module.
type Function struct {
	Sig  *FunctionSig
	Body *FunctionBody
	Host reflect.Value
	Name string
}

// IsHost indicates whether this function is a host function as defined in:
//  https://webassembly.github.io/spec/core/exec/modules.html#host-functions
func (fct *Function) IsHost() bool {
	return fct.Host != reflect.Value{}
}

// Module represents a parsed WebAssembly module:
// http://webassembly.org/docs/modules/
type Module struct {
	Version  uint32
	Sections []Section

	Types    *SectionTypes
	Import   *SectionImports
	Function *SectionFunctions
	Table    *SectionTables
	Memory   *SectionMemories
	Global   *SectionGlobals
	Export   *SectionExports
	Start    *SectionStartFunction
	Elements  *SectionElements
	DataCount *SectionDataCount
	Code      *SectionCode
	Data      *SectionData
	Customs   []*SectionCustom
}

// TableEntry represents a table index and tracks its initialized state.
type TableEntry struct {
	Index       uint32
	Initialized bool
}

// Names returns the names section. If no names section exists, this function returns a MissingSectionError.
func (m *Module) Names() (*NameSection, error) {
	s := m.Custom(CustomSectionName)
	if s == nil {
		return nil, MissingSectionError(0)
	}

	var names NameSection
	if err := names.UnmarshalWASM(bytes.NewReader(s.Data)); err != nil {
		return nil, err
	}

	return &names, nil
}

// Custom returns a custom section with a specific name, if it exists.
func (m *Module) Custom(name string) *SectionCustom {
	for _, s := range m.Customs {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// NewModule creates a new empty module
func NewModule() *Module {
	return &Module{
		Types:    &SectionTypes{},
		Import:   &SectionImports{},
		Table:    &SectionTables{},
		Memory:   &SectionMemories{},
		Global:   &SectionGlobals{},
		Export:   &SectionExports{},
		Elements: &SectionElements{},
		Data:     &SectionData{},
	}
}

// ResolveFunc is a function that takes a module name and
// returns a valid resolved module.
type ResolveFunc func(name string) (*Module, error)

// DecodeModule decodes a WASM module.
func DecodeModule(r io.Reader) (*Module, error) {
	reader := &readpos.ReadPos{
		R:      r,
		CurPos: 0,
	}
	m := &Module{}
	magic, err := readU32(reader)
	if err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, ErrInvalidMagic
	}
	if m.Version, err = readU32(reader); err != nil {
		return nil, err
	}
	if m.Version != Version {
		return nil, errors.New("unknown binary version")
	}

	err = newSectionsReader(m).readSections(reader)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// MustDecode decodes a WASM module and panics on failure.
func MustDecode(r io.Reader) *Module {
	m, err := DecodeModule(r)
	if err != nil {
		panic(fmt.Errorf("decoding module: %w", err))
	}
	return m
}

// orderedSections lists the module's sections in the canonical encoding
// order, for modules built up through the typed fields rather than
// produced by DecodeModule.
func (m *Module) orderedSections() []Section {
	var out []Section
	if m.Types != nil {
		out = append(out, m.Types)
	}
	if m.Import != nil {
		out = append(out, m.Import)
	}
	if m.Function != nil {
		out = append(out, m.Function)
	}
	if m.Table != nil {
		out = append(out, m.Table)
	}
	if m.Memory != nil {
		out = append(out, m.Memory)
	}
	if m.Global != nil {
		out = append(out, m.Global)
	}
	if m.Export != nil {
		out = append(out, m.Export)
	}
	if m.Start != nil {
		out = append(out, m.Start)
	}
	if m.Elements != nil {
		out = append(out, m.Elements)
	}
	if m.DataCount != nil {
		out = append(out, m.DataCount)
	}
	if m.Code != nil {
		out = append(out, m.Code)
	}
	if m.Data != nil {
		out = append(out, m.Data)
	}
	for _, c := range m.Customs {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// WriteTo encodes the module back to the WASM binary format. If m was
// produced by DecodeModule, the original section order (including where
// custom sections were interleaved) is preserved; otherwise sections are
// emitted in the canonical order from the module's typed fields.
func (m *Module) WriteTo(w io.Writer) (err error) {
	if err = writeU32(w, Magic); err != nil {
		return err
	}
	version := m.Version
	if version == 0 {
		version = Version
	}
	if err = writeU32(w, version); err != nil {
		return err
	}

	sections := m.Sections
	if len(sections) == 0 {
		sections = m.orderedSections()
	}

	for _, sec := range sections {
		payload := new(bytes.Buffer)
		if err = sec.WritePayload(payload); err != nil {
			return err
		}
		if _, err = w.Write([]byte{byte(sec.SectionID())}); err != nil {
			return err
		}
		if _, err = leb128.WriteVarUint32(w, uint32(payload.Len())); err != nil {
			return err
		}
		if _, err = w.Write(payload.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

// EncodeModule is a convenience wrapper around m.WriteTo.
func EncodeModule(w io.Writer, m *Module) error {
	return m.WriteTo(w)
}
