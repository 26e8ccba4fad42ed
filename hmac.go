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

type HMAC struct {
	ctx    *HMACContext
	engine *Engine
	md     EVP_MD
}

func NewHMAC(key []byte, digestAlgorithm EVP_MD) (*HMAC, error) {
	return NewHMACWithEngine(key, digestAlgorithm, nil)
}

func NewHMACWithEngine(key []byte, digestAlgorithm EVP_MD, e *Engine) (*HMAC, error) {
	md := digestAlgorithm.c()
	if md == nil {
		return nil, errors.Errorf("openssl: hmac: %s: digest not supported",
			digestAlgorithm)
	}
	if len(key) == 0 {
		// HMAC_Init_ex treats a NULL key as "reuse the previous key". A
		// zero-filled key yields the same MAC as an empty one.
		key = make([]byte, C.EVP_MAX_MD_SIZE)
	}
	ctx, err := NewHMACContext()
	if err != nil {
		return nil, err
	}
	hmac := &HMAC{ctx: ctx, engine: e, md: digestAlgorithm}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	if 1 != C.X_HMAC_Init_ex(ctx.ctx, unsafe.Pointer(&key[0]), C.int(len(key)),
		md, engineRef(e)) {
		ctx.Free()
		return nil, errors.Wrapf(errorFromErrorQueue(),
			"openssl: hmac: %s: cannot init ctx", digestAlgorithm)
	}
	return hmac, nil
}

// Close releases the underlying context. The HMAC is unusable afterwards.
func (h *HMAC) Close() {
	h.ctx.Free()
}

// context returns the live HMAC_CTX, or an error once Close was called.
func (h *HMAC) context() (*C.HMAC_CTX, error) {
	if h.ctx == nil || h.ctx.ctx == nil {
		return nil, errors.Errorf("openssl: hmac: %s: use after close", h.md)
	}
	return h.ctx.ctx, nil
}

func (h *HMAC) Write(data []byte) (n int, err error) {
	ctx, err := h.context()
	if err != nil {
		return 0, err
	}
	if len(data) == 0 {
		return 0, nil
	}
	defer runtime.KeepAlive(h)
	if 1 != C.X_HMAC_Update(ctx, (*C.uchar)(unsafe.Pointer(&data[0])),
		C.size_t(len(data))) {
		return 0, errors.Errorf("openssl: hmac: %s: cannot update ctx", h.md)
	}
	return len(data), nil
}

// Reset restarts the computation with the same key and digest.
func (h *HMAC) Reset() error {
	ctx, err := h.context()
	if err != nil {
		return err
	}
	defer runtime.KeepAlive(h)
	if 1 != C.X_HMAC_Init_ex(ctx, nil, 0, nil, nil) {
		return errors.Errorf("openssl: hmac: %s: cannot reset ctx", h.md)
	}
	return nil
}

// Final returns the authentication code and resets the HMAC for reuse.
func (h *HMAC) Final() (result []byte, err error) {
	ctx, err := h.context()
	if err != nil {
		return nil, err
	}
	result = make([]byte, h.md.Size())
	var mdLength C.uint
	if 1 != C.X_HMAC_Final(ctx, (*C.uchar)(unsafe.Pointer(&result[0])),
		&mdLength) {
		runtime.KeepAlive(h)
		return nil, errors.Errorf("openssl: hmac: %s: cannot finalize ctx", h.md)
	}
	runtime.KeepAlive(h)
	return result[:mdLength], h.Reset()
}

// Size returns the length of the authentication code.
func (h *HMAC) Size() int { return h.md.Size() }

// ComputeHMAC is a one-shot HMAC of data under key.
func ComputeHMAC(digestAlgorithm EVP_MD, key, data []byte) ([]byte, error) {
	h, err := NewHMAC(key, digestAlgorithm)
	if err != nil {
		return nil, err
	}
	defer h.Close()
	if _, err := h.Write(data); err != nil {
		return nil, err
	}
	return h.Final()
}
