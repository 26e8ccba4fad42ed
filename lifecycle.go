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

	"github.com/pkg/errors"
)

// HMACContext owns an HMAC_CTX allocated through the shim. It is freed
// exactly once, either explicitly with Free or by its finalizer.
type HMACContext struct {
	ctx *C.HMAC_CTX
}

// NewHMACContext allocates an empty HMAC_CTX ready for HMAC_Init_ex.
func NewHMACContext() (*HMACContext, error) {
	c := &HMACContext{ctx: C.X_HMAC_CTX_new()}
	if c.ctx == nil {
		return nil, errors.New("openssl: hmac: unable to allocate ctx")
	}
	runtime.SetFinalizer(c, (*HMACContext).Free)
	return c, nil
}

// Free releases the context. It is safe to call on a nil *HMACContext and
// more than once.
func (c *HMACContext) Free() {
	if c == nil || c.ctx == nil {
		return
	}
	C.X_HMAC_CTX_free(c.ctx)
	c.ctx = nil
	runtime.SetFinalizer(c, nil)
}

// DigestContext owns an EVP_MD_CTX allocated through the shim.
type DigestContext struct {
	ctx *C.EVP_MD_CTX
}

// NewDigestContext allocates an empty EVP_MD_CTX ready for EVP_DigestInit_ex.
func NewDigestContext() (*DigestContext, error) {
	c := &DigestContext{ctx: C.X_EVP_MD_CTX_new()}
	if c.ctx == nil {
		return nil, errors.New("openssl: digest: unable to allocate ctx")
	}
	runtime.SetFinalizer(c, (*DigestContext).Free)
	return c, nil
}

// Free releases the context. It is safe to call on a nil *DigestContext and
// more than once.
func (c *DigestContext) Free() {
	if c == nil || c.ctx == nil {
		return
	}
	C.X_EVP_MD_CTX_free(c.ctx)
	c.ctx = nil
	runtime.SetFinalizer(c, nil)
}

// LegacyContextLifecycle reports whether this package was compiled against
// a library that needs contexts allocated and initialized by the caller
// (OpenSSL < 1.1.0, LibreSSL < 2.7.0).
func LegacyContextLifecycle() bool {
	return C.X_LEGACY_CTX_LIFECYCLE == 1
}

// ContextLifecycle names the compiled-in lifecycle strategy.
func ContextLifecycle() string {
	if LegacyContextLifecycle() {
		return "legacy"
	}
	return "modern"
}
