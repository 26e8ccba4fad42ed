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

import (
	"reflect"
	"testing"
)

func TestHMACContextTrace(t *testing.T) {
	resetLifecycleTrace()
	ctx, err := NewHMACContext()
	if err != nil {
		t.Fatal(err)
	}
	ptr := ctx.tracePointer()
	ctx.Free()

	exp := []lifecycleEvent{traceHMACNew, traceHMACFree}
	if LegacyContextLifecycle() {
		exp = []lifecycleEvent{traceHMACAlloc, traceHMACInit,
			traceHMACCleanup, traceHMACRelease}
	}
	if got := lifecycleTrace(ptr); !reflect.DeepEqual(got, exp) {
		t.Fatalf("exp:%v got:%v", exp, got)
	}
}

func TestDigestContextTrace(t *testing.T) {
	resetLifecycleTrace()
	ctx, err := NewDigestContext()
	if err != nil {
		t.Fatal(err)
	}
	ptr := ctx.tracePointer()
	ctx.Free()

	exp := []lifecycleEvent{traceMDNew, traceMDFree}
	if LegacyContextLifecycle() {
		exp = []lifecycleEvent{traceMDAlloc, traceMDInit,
			traceMDCleanup, traceMDRelease}
	}
	if got := lifecycleTrace(ptr); !reflect.DeepEqual(got, exp) {
		t.Fatalf("exp:%v got:%v", exp, got)
	}
}

func TestContextTraceInitBeforeUse(t *testing.T) {
	resetLifecycleTrace()
	h, err := NewHMAC([]byte("key"), EVP_SHA256)
	if err != nil {
		t.Fatal(err)
	}
	ptr := h.ctx.tracePointer()
	if _, err := h.Write([]byte("data")); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Final(); err != nil {
		t.Fatal(err)
	}
	events := lifecycleTrace(ptr)
	if len(events) == 0 {
		t.Fatal("no events recorded")
	}
	if LegacyContextLifecycle() {
		exp := []lifecycleEvent{traceHMACAlloc, traceHMACInit}
		if !reflect.DeepEqual(events, exp) {
			t.Fatalf("exp:%v got:%v", exp, events)
		}
	}
	h.Close()
	events = lifecycleTrace(ptr)
	last := events[len(events)-1]
	if last != traceHMACFree && last != traceHMACRelease {
		t.Fatalf("context not released, last event %v", last)
	}
}

func TestContextTraceFreeTwice(t *testing.T) {
	resetLifecycleTrace()
	ctx, err := NewDigestContext()
	if err != nil {
		t.Fatal(err)
	}
	ptr := ctx.tracePointer()
	ctx.Free()
	ctx.Free()

	exp := 2
	if LegacyContextLifecycle() {
		exp = 4
	}
	if got := len(lifecycleTrace(ptr)); got != exp {
		t.Fatalf("exp %d events got %d", exp, got)
	}
}
