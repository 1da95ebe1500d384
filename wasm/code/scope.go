package code

import "github.com/gowasm/toolkit/wasm"

type Scope interface {
	GetLocalType(localidx uint32) (wasm.ValueType, bool)
	GetGlobalType(globalidx uint32) (wasm.GlobalVar, bool)
	GetFunctionSignature(funcidx uint32) (wasm.FunctionSig, bool)
	GetType(typeidx uint32) (wasm.FunctionSig, bool)

	HasTable(tableidx uint32) bool
	HasMemory(memoryidx uint32) bool
	HasElem(elemidx uint32) bool
	HasData(dataidx uint32) bool

	// GetTableType reports the reference type a table holds, consulted by
	// table.get/table.set/table.grow/table.fill under the reference-types
	// feature.
	GetTableType(tableidx uint32) (wasm.ElemType, bool)
}

var UnknownTypes = []wasm.ValueType{}

var UnknownScope = unknownScope(0)

type unknownScope int

func (unknownScope) GetLocalType(localidx uint32) (wasm.ValueType, bool) {
	return wasm.ValueTypeT, true
}

func (unknownScope) GetGlobalType(globalidx uint32) (wasm.GlobalVar, bool) {
	return wasm.GlobalVar{Type: wasm.ValueTypeT}, true
}

func (unknownScope) GetFunctionSignature(funcidx uint32) (wasm.FunctionSig, bool) {
	return wasm.FunctionSig{ParamTypes: UnknownTypes, ReturnTypes: UnknownTypes}, true
}

func (unknownScope) GetType(typeidx uint32) (wasm.FunctionSig, bool) {
	return wasm.FunctionSig{ParamTypes: UnknownTypes, ReturnTypes: UnknownTypes}, true
}

func (unknownScope) HasTable(tableidx uint32) bool {
	return true
}

func (unknownScope) HasMemory(memoryidx uint32) bool {
	return true
}

func (unknownScope) HasElem(elemidx uint32) bool {
	return true
}

func (unknownScope) HasData(dataidx uint32) bool {
	return true
}

func (unknownScope) GetTableType(tableidx uint32) (wasm.ElemType, bool) {
	return wasm.ElemTypeAnyFunc, true
}
