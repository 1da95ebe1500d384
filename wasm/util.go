// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wasm

import (
	"encoding/binary"
	"io"
	"io/ioutil"
	"log"
	"os"

	"github.com/gowasm/toolkit/wasm/leb128"
)

// logger carries verbose section-by-section decode tracing. It writes to
// os.Stderr only when WASM_TRACE is set, so normal decoding stays silent.
var logger = log.New(ioutil.Discard, "wasm: ", 0)

func init() {
	if os.Getenv("WASM_TRACE") != "" {
		logger.SetOutput(os.Stderr)
	}
}

func readU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func writeU32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// getInitialCap clamps a length-prefix read from untrusted input to a
// sane slice preallocation size, so a malformed module claiming billions
// of entries can't be used to force a huge allocation before the reader
// runs out of bytes.
func getInitialCap(n uint32) uint32 {
	const max = 1 << 16
	if n > max {
		return max
	}
	return n
}

func readBytes(r io.Reader, n uint32) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func readBytesUint(r io.Reader) ([]byte, error) {
	n, err := leb128.ReadVarUint32(r)
	if err != nil {
		return nil, err
	}
	return readBytes(r, n)
}

func writeBytesUint(w io.Writer, p []byte) error {
	if _, err := leb128.WriteVarUint32(w, uint32(len(p))); err != nil {
		return err
	}
	_, err := w.Write(p)
	return err
}

func readUTF8StringUint(r io.Reader) (string, error) {
	b, err := readBytesUint(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func writeStringUint(w io.Writer, s string) error {
	return writeBytesUint(w, []byte(s))
}

// readInitExpr reads a constant expression, delimited by the "end" opcode
// (0x0b), and returns the raw encoded bytes including the terminator so
// that callers can hand them straight to code.Decode.
func readInitExpr(r io.Reader) ([]byte, error) {
	var buf []byte
	var b [1]byte
	for {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, err
		}
		buf = append(buf, b[0])
		if b[0] == 0x0b {
			return buf, nil
		}
	}
}
