// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wasm

import (
	"fmt"
	"io"

	"github.com/gowasm/toolkit/wasm/leb128"
)

// Marshaler is implemented by types that know how to encode themselves into
// the WASM binary format.
type Marshaler interface {
	MarshalWASM(w io.Writer) error
}

// Unmarshaler is implemented by types that know how to decode themselves
// from the WASM binary format.
type Unmarshaler interface {
	UnmarshalWASM(r io.Reader) error
}

// ValueType represents the type of a value on the stack, a local, a global,
// or a function parameter or result. Its encoding mirrors the signed LEB128
// byte used for valtype in the binary format: reading that single byte as a
// signed varint yields one of the constants below.
type ValueType int8

const (
	ValueTypeI32 ValueType = -0x01
	ValueTypeI64 ValueType = -0x02
	ValueTypeF32 ValueType = -0x03
	ValueTypeF64 ValueType = -0x04
	ValueTypeV128 ValueType = -0x05

	// ValueTypeFuncRef and ValueTypeExternRef are reference types, gated
	// behind the reference-types feature.
	ValueTypeFuncRef   ValueType = -0x10
	ValueTypeExternRef ValueType = -0x11

	// ValueTypeT is the bottom/"any" type used by the validator once a
	// point in the instruction stream becomes unreachable: every pop and
	// push on the operand stack succeeds polymorphically until control
	// flow rejoins a reachable branch.
	ValueTypeT ValueType = 0
)

func (t ValueType) String() string {
	switch t {
	case ValueTypeI32:
		return "i32"
	case ValueTypeI64:
		return "i64"
	case ValueTypeF32:
		return "f32"
	case ValueTypeF64:
		return "f64"
	case ValueTypeV128:
		return "v128"
	case ValueTypeFuncRef:
		return "funcref"
	case ValueTypeExternRef:
		return "externref"
	case ValueTypeT:
		return "any"
	default:
		return fmt.Sprintf("valtype(%d)", int8(t))
	}
}

// IsRefType reports whether t is one of the reference types.
func (t ValueType) IsRefType() bool {
	return t == ValueTypeFuncRef || t == ValueTypeExternRef
}

func (t *ValueType) UnmarshalWASM(r io.Reader) error {
	v, err := leb128.ReadVarint32(r)
	if err != nil {
		return err
	}
	*t = ValueType(v)
	return nil
}

func (t ValueType) MarshalWASM(w io.Writer) error {
	_, err := leb128.WriteVarint32(w, int32(t))
	return err
}

// ElemType is the type of element stored in a table. In the MVP the only
// legal value is ElemTypeAnyFunc; the reference-types feature widens this to
// any reference type.
type ElemType ValueType

const ElemTypeAnyFunc = ElemType(ValueTypeFuncRef)

// External identifies the kind of entity named by an import or export entry.
type External uint8

const (
	ExternalFunction External = 0
	ExternalTable    External = 1
	ExternalMemory   External = 2
	ExternalGlobal   External = 3
)

func (k External) String() string {
	switch k {
	case ExternalFunction:
		return "func"
	case ExternalTable:
		return "table"
	case ExternalMemory:
		return "memory"
	case ExternalGlobal:
		return "global"
	default:
		return fmt.Sprintf("external(%d)", uint8(k))
	}
}

func (k *External) UnmarshalWASM(r io.Reader) error {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return err
	}
	*k = External(buf[0])
	return nil
}

func (k External) MarshalWASM(w io.Writer) error {
	_, err := w.Write([]byte{byte(k)})
	return err
}

// ResizableLimits bounds the size of a table or linear memory. Flags bit 0
// indicates that Maximum is present; when clear the entity is unbounded.
type ResizableLimits struct {
	Flags   uint32
	Initial uint32
	Maximum uint32
}

func (l ResizableLimits) HasMax() bool {
	return l.Flags&0x1 != 0
}

func (l *ResizableLimits) UnmarshalWASM(r io.Reader) error {
	var err error
	if l.Flags, err = leb128.ReadVarUint32(r); err != nil {
		return err
	}
	if l.Initial, err = leb128.ReadVarUint32(r); err != nil {
		return err
	}
	if l.Flags&0x1 != 0 {
		if l.Maximum, err = leb128.ReadVarUint32(r); err != nil {
			return err
		}
	}
	return nil
}

func (l ResizableLimits) MarshalWASM(w io.Writer) error {
	if _, err := leb128.WriteVarUint32(w, l.Flags); err != nil {
		return err
	}
	if _, err := leb128.WriteVarUint32(w, l.Initial); err != nil {
		return err
	}
	if l.Flags&0x1 != 0 {
		if _, err := leb128.WriteVarUint32(w, l.Maximum); err != nil {
			return err
		}
	}
	return nil
}

// Table describes a table of opaque references, indexed by table.get/set
// and call_indirect.
type Table struct {
	ElementType ElemType
	Limits      ResizableLimits
}

func (t *Table) UnmarshalWASM(r io.Reader) error {
	var vt ValueType
	if err := vt.UnmarshalWASM(r); err != nil {
		return err
	}
	t.ElementType = ElemType(vt)
	return t.Limits.UnmarshalWASM(r)
}

func (t Table) MarshalWASM(w io.Writer) error {
	if err := ValueType(t.ElementType).MarshalWASM(w); err != nil {
		return err
	}
	return t.Limits.MarshalWASM(w)
}

// Memory describes a linear memory, sized in units of 64KiB pages.
type Memory struct {
	Limits ResizableLimits
}

func (m *Memory) UnmarshalWASM(r io.Reader) error {
	return m.Limits.UnmarshalWASM(r)
}

func (m Memory) MarshalWASM(w io.Writer) error {
	return m.Limits.MarshalWASM(w)
}

// GlobalVar describes the type and mutability of a global variable.
type GlobalVar struct {
	Type    ValueType
	Mutable bool
}

func (g *GlobalVar) UnmarshalWASM(r io.Reader) error {
	if err := g.Type.UnmarshalWASM(r); err != nil {
		return err
	}
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return err
	}
	g.Mutable = buf[0] != 0
	return nil
}

func (g GlobalVar) MarshalWASM(w io.Writer) error {
	if err := g.Type.MarshalWASM(w); err != nil {
		return err
	}
	b := byte(0)
	if g.Mutable {
		b = 1
	}
	_, err := w.Write([]byte{b})
	return err
}

// FunctionSig is a function signature: an entry in the type section's index
// space, and the type every function, import and call_indirect resolves to.
type FunctionSig struct {
	ParamTypes  []ValueType
	ReturnTypes []ValueType
}

// funcTypeForm is the leading byte of an encoded func type, 0x60 per the spec.
const funcTypeForm = 0x60

func (f *FunctionSig) UnmarshalWASM(r io.Reader) error {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return err
	}
	if buf[0] != funcTypeForm {
		return fmt.Errorf("wasm: invalid func type form: %#x", buf[0])
	}

	paramCount, err := leb128.ReadVarUint32(r)
	if err != nil {
		return err
	}
	f.ParamTypes = make([]ValueType, paramCount)
	for i := range f.ParamTypes {
		if err := f.ParamTypes[i].UnmarshalWASM(r); err != nil {
			return err
		}
	}

	resultCount, err := leb128.ReadVarUint32(r)
	if err != nil {
		return err
	}
	f.ReturnTypes = make([]ValueType, resultCount)
	for i := range f.ReturnTypes {
		if err := f.ReturnTypes[i].UnmarshalWASM(r); err != nil {
			return err
		}
	}
	return nil
}

func (f FunctionSig) MarshalWASM(w io.Writer) error {
	if _, err := w.Write([]byte{funcTypeForm}); err != nil {
		return err
	}
	if _, err := leb128.WriteVarUint32(w, uint32(len(f.ParamTypes))); err != nil {
		return err
	}
	for _, t := range f.ParamTypes {
		if err := t.MarshalWASM(w); err != nil {
			return err
		}
	}
	if _, err := leb128.WriteVarUint32(w, uint32(len(f.ReturnTypes))); err != nil {
		return err
	}
	for _, t := range f.ReturnTypes {
		if err := t.MarshalWASM(w); err != nil {
			return err
		}
	}
	return nil
}

func (f FunctionSig) String() string {
	return fmt.Sprintf("%v -> %v", f.ParamTypes, f.ReturnTypes)
}

// ValidationError describes a violation of the module validation rules: a
// module that parses cleanly but whose types, indices or control flow don't
// satisfy the type system.
type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}
