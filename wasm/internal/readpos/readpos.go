// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package readpos wraps an io.Reader with a running byte offset, so
// callers can stamp the start/end position of whatever they just read
// without threading a counter through every call site.
package readpos

import "io"

// ReadPos is an io.Reader that tracks how many bytes have been read
// through it so far.
type ReadPos struct {
	R      io.Reader
	CurPos int64
}

func (r *ReadPos) Read(p []byte) (int, error) {
	n, err := r.R.Read(p)
	r.CurPos += int64(n)
	return n, err
}

// ReadByte satisfies io.ByteReader so *ReadPos can be handed directly
// to leb128 decoders without an extra bufio wrapper.
func (r *ReadPos) ReadByte() (byte, error) {
	var buf [1]byte
	_, err := io.ReadFull(r, buf[:])
	return buf[0], err
}
