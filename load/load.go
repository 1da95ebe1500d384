package load

import (
	"io"
	"os"

	"github.com/gowasm/toolkit/wasm"
)

// LoadModule decodes a module from its binary encoding. Text-format sources
// are expected to have already been lowered to binary upstream.
func LoadModule(r io.Reader) (*wasm.Module, error) {
	return wasm.DecodeModule(r)
}

func LoadFile(path string) (*wasm.Module, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return LoadModule(f)
}
