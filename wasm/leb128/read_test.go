// Copyright 2018 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package leb128

import (
	"bytes"
	"fmt"
	"testing"
)

var casesUint = []struct {
	v uint32
	b []byte
}{
	{0, []byte{0x00}},
	{1, []byte{0x01}},
	{127, []byte{0x7f}},
	{128, []byte{0x80, 0x01}},
	{0xff, []byte{0xff, 0x01}},
	{0x4000, []byte{0x80, 0x80, 0x01}},
	{0xffffffff, []byte{0xff, 0xff, 0xff, 0xff, 0x0f}},
}

var casesInt = []struct {
	v int64
	b []byte
}{
	{0, []byte{0x00}},
	{1, []byte{0x01}},
	{-1, []byte{0x7f}},
	{63, []byte{0x3f}},
	{64, []byte{0xc0, 0x00}},
	{-64, []byte{0x40}},
	{-65, []byte{0xbf, 0x7f}},
	{624485, []byte{0xe5, 0x8e, 0x26}},
	{-624485, []byte{0x9b, 0xf1, 0x59}},
}

func TestReadVarUint32(t *testing.T) {
	for _, c := range casesUint {
		t.Run(fmt.Sprint(c.v), func(t *testing.T) {
			v, err := ReadVarUint32(bytes.NewReader(c.b))
			if err != nil {
				t.Fatal(err)
			}
			if v != c.v {
				t.Fatalf("got %d, want %d", v, c.v)
			}
		})
	}
}

func TestReadVarint64(t *testing.T) {
	for _, c := range casesInt {
		t.Run(fmt.Sprint(c.v), func(t *testing.T) {
			v, err := ReadVarint64(bytes.NewReader(c.b))
			if err != nil {
				t.Fatal(err)
			}
			if v != c.v {
				t.Fatalf("got %d, want %d", v, c.v)
			}
		})
	}
}

func TestNonCanonicalEncodingRejected(t *testing.T) {
	// i32.const encoded in 5 bytes with a final byte whose high bits
	// don't sign-extend the value: malformed per the binary format spec.
	_, err := ReadVarint32(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff, 0x7f}))
	if err != nil {
		t.Fatalf("expected correctly sign-extended 5-byte -1 to decode, got %v", err)
	}

	_, err = ReadVarint32(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff, 0x2f}))
	if err == nil {
		t.Fatal("expected non-canonical sign extension to be rejected")
	}
}

func TestOverlongEncodingRejected(t *testing.T) {
	_, err := ReadVarUint32(bytes.NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x00}))
	if err == nil {
		t.Fatal("expected overlong u32 encoding to be rejected")
	}
}

func TestGetVarUint32ReportsConsumedBytes(t *testing.T) {
	v, n, err := GetVarUint32([]byte{0x80, 0x01, 0xff})
	if err != nil {
		t.Fatal(err)
	}
	if v != 128 || n != 2 {
		t.Fatalf("got v=%d n=%d, want v=128 n=2", v, n)
	}
}
