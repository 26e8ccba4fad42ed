// Copyright (C) 2017. See AUTHORS.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package openssl

// #include "shim.h"
import "C"

import (
	"runtime"
	"unsafe"

	"github.com/pkg/errors"
)

// DigestComputer is a generic structure to compute message digest
// with any hash function supported by OpenSSL
type DigestComputer struct {
	ctx    *DigestContext
	engine *Engine
	evpMD  EVP_MD
}

func NewDigestComputer(digestType EVP_MD) (*DigestComputer, error) {
	return NewDigestComputerWithEngine(nil, digestType)
}

func NewDigestComputerWithEngine(e *Engine, digestType EVP_MD) (*DigestComputer, error) {
	if !digestType.Supported() {
		return nil, errors.Errorf("openssl: %s: digest not supported", digestType)
	}
	ctx, err := NewDigestContext()
	if err != nil {
		return nil, err
	}
	hash := &DigestComputer{ctx: ctx, engine: e, evpMD: digestType}
	if err := hash.Reset(); err != nil {
		ctx.Free()
		return nil, err
	}
	return hash, nil
}

// Close releases the underlying context. The computer is unusable afterwards.
func (s *DigestComputer) Close() {
	s.ctx.Free()
}

// context returns the live EVP_MD_CTX, or an error once Close was called.
func (s *DigestComputer) context() (*C.EVP_MD_CTX, error) {
	if s.ctx == nil || s.ctx.ctx == nil {
		return nil, errors.Errorf("openssl: %s: use after close", s.evpMD)
	}
	return s.ctx.ctx, nil
}

func (s *DigestComputer) Reset() error {
	ctx, err := s.context()
	if err != nil {
		return err
	}
	defer runtime.KeepAlive(s)
	if 1 != C.X_EVP_DigestInit_ex(ctx, s.evpMD.c(), engineRef(s.engine)) {
		return errors.Errorf("openssl: %s: cannot init digest ctx", s.evpMD)
	}
	return nil
}

func (s *DigestComputer) Write(p []byte) (n int, err error) {
	ctx, err := s.context()
	if err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	defer runtime.KeepAlive(s)
	if 1 != C.X_EVP_DigestUpdate(ctx, unsafe.Pointer(&p[0]),
		C.size_t(len(p))) {
		return 0, errors.Errorf("openssl: %s: cannot update digest", s.evpMD)
	}
	return len(p), nil
}

// Sum finalizes the digest and resets the computer for reuse.
func (s *DigestComputer) Sum() ([]byte, error) {
	ctx, err := s.context()
	if err != nil {
		return nil, err
	}
	result := make([]byte, s.evpMD.Size())
	if 1 != C.X_EVP_DigestFinal_ex(ctx,
		(*C.uchar)(unsafe.Pointer(&result[0])), nil) {
		runtime.KeepAlive(s)
		return result, errors.Errorf("openssl: %s: cannot finalize ctx", s.evpMD)
	}
	runtime.KeepAlive(s)
	return result, s.Reset()
}

// Size returns the number of bytes Sum will return.
func (s *DigestComputer) Size() int { return s.evpMD.Size() }

// BlockSize returns the hash's underlying block size.
func (s *DigestComputer) BlockSize() int { return s.evpMD.BlockSize() }
