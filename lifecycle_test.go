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

import (
	"strings"
	"testing"
)

func TestHMACContextAllocateRelease(t *testing.T) {
	ctx, err := NewHMACContext()
	if err != nil {
		t.Fatal(err)
	}
	if ctx.ctx == nil {
		t.Fatal("allocated context has no handle")
	}
	ctx.Free()
	if ctx.ctx != nil {
		t.Fatal("handle not cleared after Free")
	}
}

func TestDigestContextAllocateRelease(t *testing.T) {
	ctx, err := NewDigestContext()
	if err != nil {
		t.Fatal(err)
	}
	if ctx.ctx == nil {
		t.Fatal("allocated context has no handle")
	}
	ctx.Free()
	if ctx.ctx != nil {
		t.Fatal("handle not cleared after Free")
	}
}

func TestContextFreeNil(t *testing.T) {
	var h *HMACContext
	h.Free()
	var d *DigestContext
	d.Free()

	(&HMACContext{}).Free()
	(&DigestContext{}).Free()
}

func TestContextFreeTwice(t *testing.T) {
	h, err := NewHMACContext()
	if err != nil {
		t.Fatal(err)
	}
	h.Free()
	h.Free()

	d, err := NewDigestContext()
	if err != nil {
		t.Fatal(err)
	}
	d.Free()
	d.Free()
}

func TestContextsAreDistinct(t *testing.T) {
	h1, err := NewHMACContext()
	if err != nil {
		t.Fatal(err)
	}
	h2, err := NewHMACContext()
	if err != nil {
		t.Fatal(err)
	}
	if h1.ctx == h2.ctx {
		t.Fatal("two HMAC allocations share a handle")
	}
	h2.Free()
	h1.Free()

	d1, err := NewDigestContext()
	if err != nil {
		t.Fatal(err)
	}
	d2, err := NewDigestContext()
	if err != nil {
		t.Fatal(err)
	}
	if d1.ctx == d2.ctx {
		t.Fatal("two digest allocations share a handle")
	}
	d1.Free()
	d2.Free()
}

func TestContextLifecycleMatchesHeaders(t *testing.T) {
	legacy := HeaderVersionNumber() < 0x10100000
	if libre := LibreSSLVersionNumber(); libre != 0 && libre < 0x2070000f {
		legacy = true
	}
	if legacy != LegacyContextLifecycle() {
		t.Fatalf("headers 0x%x (libressl 0x%x) compiled %s lifecycle",
			HeaderVersionNumber(), LibreSSLVersionNumber(), ContextLifecycle())
	}
	exp := "modern"
	if legacy {
		exp = "legacy"
	}
	if got := ContextLifecycle(); got != exp {
		t.Fatalf("exp:%s got:%s", exp, got)
	}
}

func TestVersion(t *testing.T) {
	if Version() == "" {
		t.Fatal("empty version string")
	}
	if VersionNumber() == 0 {
		t.Fatal("zero version number")
	}
}

func TestVersionMatchesHeaders(t *testing.T) {
	if LibreSSLVersionNumber() != 0 {
		if !strings.HasPrefix(Version(), "LibreSSL") {
			t.Fatalf("libressl 0x%x reports %q", LibreSSLVersionNumber(), Version())
		}
		if VersionNumber() != HeaderVersionNumber() {
			t.Fatalf("exp:0x%x got:0x%x", HeaderVersionNumber(), VersionNumber())
		}
		return
	}
	if !strings.HasPrefix(Version(), "OpenSSL") {
		t.Fatalf("unexpected version string %q", Version())
	}
	if exp, got := HeaderVersionNumber()>>28, VersionNumber()>>28; exp != got {
		t.Fatalf("headers major %d, library major %d", exp, got)
	}
}

func BenchmarkHMACContext(b *testing.B) {
	for i := 0; i < b.N; i++ {
		ctx, err := NewHMACContext()
		if err != nil {
			b.Fatal(err)
		}
		ctx.Free()
	}
}

func BenchmarkDigestContext(b *testing.B) {
	for i := 0; i < b.N; i++ {
		ctx, err := NewDigestContext()
		if err != nil {
			b.Fatal(err)
		}
		ctx.Free()
	}
}

func TestEngineMissing(t *testing.T) {
	if _, err := EngineById("no-such-engine"); err == nil {
		t.Fatal("expected an error for an unknown engine")
	}
	// a nil engine selects the built-in implementation
	h, err := NewSHA256HashWithEngine(nil)
	if err != nil {
		t.Fatal(err)
	}
	h.Close()
}
