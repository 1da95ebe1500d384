// Copyright 2018 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package leb128 reads and writes the LEB128 variable-length integer
// encoding used throughout the WebAssembly binary format. Decoders
// reject non-canonical encodings: overlong byte sequences and, for
// signed values, sign-extension bits in the final byte that disagree
// with the value's sign.
package leb128

import (
	"errors"
	"io"
)

// ErrOverflow is returned when a LEB128 sequence encodes a value wider
// than the target type, or runs past the maximum number of bytes for
// that type without terminating.
var ErrOverflow = errors.New("leb128: integer overflow")

// ErrNonCanonical is returned when a LEB128 sequence has unused high
// bits in its final byte that do not match the sign of the decoded
// value; the WebAssembly spec requires encoders to produce the
// shortest possible sequence with those bits sign- or zero-extended.
var ErrNonCanonical = errors.New("leb128: non-canonical encoding")

// ReadVarUint32 reads an unsigned LEB128-encoded 32-bit integer.
func ReadVarUint32(r io.Reader) (uint32, error) {
	v, err := readVarUint(r, 32)
	return uint32(v), err
}

// ReadVarUint64 reads an unsigned LEB128-encoded 64-bit integer.
func ReadVarUint64(r io.Reader) (uint64, error) {
	return readVarUint(r, 64)
}

// ReadVarint32 reads a signed LEB128-encoded 32-bit integer.
func ReadVarint32(r io.Reader) (int32, error) {
	v, err := readVarint(r, 32)
	return int32(v), err
}

// ReadVarint64 reads a signed LEB128-encoded 64-bit integer.
func ReadVarint64(r io.Reader) (int64, error) {
	return readVarint(r, 64)
}

// GetVarUint32 decodes an unsigned LEB128 integer from the front of p,
// returning the value and the number of bytes consumed.
func GetVarUint32(p []byte) (uint32, int, error) {
	v, n, err := getVarUint(p, 32)
	return uint32(v), n, err
}

// GetVarUint64 decodes an unsigned LEB128 integer from the front of p.
func GetVarUint64(p []byte) (uint64, int, error) {
	return getVarUint(p, 64)
}

// GetVarint32 decodes a signed LEB128 integer from the front of p.
func GetVarint32(p []byte) (int32, int, error) {
	v, n, err := getVarint(p, 32)
	return int32(v), n, err
}

// GetVarint64 decodes a signed LEB128 integer from the front of p.
func GetVarint64(p []byte) (int64, int, error) {
	return getVarint(p, 64)
}

// WriteVarUint32 writes v as an unsigned LEB128 integer.
func WriteVarUint32(w io.Writer, v uint32) (int, error) {
	return writeVarUint(w, uint64(v))
}

// WriteVarUint64 writes v as an unsigned LEB128 integer.
func WriteVarUint64(w io.Writer, v uint64) (int, error) {
	return writeVarUint(w, v)
}

// WriteVarint32 writes v as a signed LEB128 integer.
func WriteVarint32(w io.Writer, v int32) (int, error) {
	return writeVarint(w, int64(v))
}

// WriteVarint64 writes v as a signed LEB128 integer.
func WriteVarint64(w io.Writer, v int64) (int, error) {
	return writeVarint(w, v)
}

func maxBytes(bits int) int {
	// ceil(bits/7)
	return (bits + 6) / 7
}

func readVarUint(r io.Reader, bits int) (uint64, error) {
	var result uint64
	var buf [1]byte
	max := maxBytes(bits)
	for i := 0; ; i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		b := buf[0]

		shift := uint(i * 7)
		chunk := uint64(b & 0x7f)
		if i == max-1 {
			// The final byte may only carry the remaining bits; anything
			// above that must be zero, or the encoding is non-canonical.
			usedBits := bits - i*7
			if chunk>>uint(usedBits) != 0 {
				return 0, ErrOverflow
			}
		}
		result |= chunk << shift

		if b&0x80 == 0 {
			return result, nil
		}
		if i+1 == max {
			return 0, ErrOverflow
		}
	}
}

func readVarint(r io.Reader, bits int) (int64, error) {
	var result int64
	var buf [1]byte
	max := maxBytes(bits)
	shift := 0
	for i := 0; ; i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		b := buf[0]

		result |= int64(b&0x7f) << uint(shift)
		shift += 7

		if i+1 == max {
			signBits := b & 0x7f
			usedBits := bits - i*7
			// Remaining high bits of the final byte must be a sign
			// extension of the value's top bit, zeros or all-ones.
			mask := byte(0x7f) &^ byte((1<<uint(usedBits-1))-1)
			zeroExt := signBits & mask
			if zeroExt != 0 && zeroExt != mask {
				return 0, ErrNonCanonical
			}
			if b&0x80 != 0 {
				return 0, ErrOverflow
			}
			if shift < 64 && b&0x40 != 0 {
				result |= -1 << uint(shift)
			}
			return result, nil
		}

		if b&0x80 == 0 {
			if shift < 64 && b&0x40 != 0 {
				result |= -1 << uint(shift)
			}
			return result, nil
		}
	}
}

func getVarUint(p []byte, bits int) (uint64, int, error) {
	var result uint64
	max := maxBytes(bits)
	for i := 0; ; i++ {
		if i >= len(p) {
			return 0, 0, io.ErrUnexpectedEOF
		}
		b := p[i]

		shift := uint(i * 7)
		chunk := uint64(b & 0x7f)
		if i == max-1 {
			usedBits := bits - i*7
			if chunk>>uint(usedBits) != 0 {
				return 0, 0, ErrOverflow
			}
		}
		result |= chunk << shift

		if b&0x80 == 0 {
			return result, i + 1, nil
		}
		if i+1 == max {
			return 0, 0, ErrOverflow
		}
	}
}

func getVarint(p []byte, bits int) (int64, int, error) {
	var result int64
	max := maxBytes(bits)
	shift := 0
	for i := 0; ; i++ {
		if i >= len(p) {
			return 0, 0, io.ErrUnexpectedEOF
		}
		b := p[i]

		result |= int64(b&0x7f) << uint(shift)
		shift += 7

		if i+1 == max {
			signBits := b & 0x7f
			usedBits := bits - i*7
			mask := byte(0x7f) &^ byte((1<<uint(usedBits-1))-1)
			zeroExt := signBits & mask
			if zeroExt != 0 && zeroExt != mask {
				return 0, 0, ErrNonCanonical
			}
			if b&0x80 != 0 {
				return 0, 0, ErrOverflow
			}
			if shift < 64 && b&0x40 != 0 {
				result |= -1 << uint(shift)
			}
			return result, i + 1, nil
		}

		if b&0x80 == 0 {
			if shift < 64 && b&0x40 != 0 {
				result |= -1 << uint(shift)
			}
			return result, i + 1, nil
		}
	}
}

func writeVarUint(w io.Writer, v uint64) (int, error) {
	var buf []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		buf = append(buf, b)
		if v == 0 {
			break
		}
	}
	return w.Write(buf)
}

func writeVarint(w io.Writer, v int64) (int, error) {
	var buf []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			buf = append(buf, b)
			break
		}
		buf = append(buf, b|0x80)
	}
	return w.Write(buf)
}
