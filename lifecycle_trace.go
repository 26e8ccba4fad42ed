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

//go:build openssl_lifecycle_trace
// +build openssl_lifecycle_trace

package openssl

// #cgo CFLAGS: -DX_CTX_LIFECYCLE_TRACE
// #include "shim.h"
import "C"

import (
	"unsafe"
)

// lifecycleEvent is one step the shim recorded while allocating or
// releasing a context.
type lifecycleEvent int

const (
	traceHMACAlloc   lifecycleEvent = C.X_TRACE_HMAC_ALLOC
	traceHMACInit    lifecycleEvent = C.X_TRACE_HMAC_INIT
	traceHMACNew     lifecycleEvent = C.X_TRACE_HMAC_NEW
	traceHMACCleanup lifecycleEvent = C.X_TRACE_HMAC_CLEANUP
	traceHMACRelease lifecycleEvent = C.X_TRACE_HMAC_RELEASE
	traceHMACFree    lifecycleEvent = C.X_TRACE_HMAC_FREE
	traceMDAlloc     lifecycleEvent = C.X_TRACE_MD_ALLOC
	traceMDInit      lifecycleEvent = C.X_TRACE_MD_INIT
	traceMDNew       lifecycleEvent = C.X_TRACE_MD_NEW
	traceMDCleanup   lifecycleEvent = C.X_TRACE_MD_CLEANUP
	traceMDRelease   lifecycleEvent = C.X_TRACE_MD_RELEASE
	traceMDFree      lifecycleEvent = C.X_TRACE_MD_FREE
)

func resetLifecycleTrace() {
	C.X_trace_reset()
}

// lifecycleTrace returns the events recorded for the context at ptr,
// starting at its most recent allocation.
func lifecycleTrace(ptr unsafe.Pointer) []lifecycleEvent {
	var buf [64]C.int
	n := int(C.X_trace_collect(ptr, &buf[0], C.int(len(buf))))
	start := 0
	for i := 0; i < n; i++ {
		switch lifecycleEvent(buf[i]) {
		case traceHMACAlloc, traceHMACNew, traceMDAlloc, traceMDNew:
			start = i
		}
	}
	events := make([]lifecycleEvent, 0, n-start)
	for i := start; i < n; i++ {
		events = append(events, lifecycleEvent(buf[i]))
	}
	return events
}

func (c *HMACContext) tracePointer() unsafe.Pointer { return unsafe.Pointer(c.ctx) }

func (c *DigestContext) tracePointer() unsafe.Pointer { return unsafe.Pointer(c.ctx) }
