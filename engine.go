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

// Engine is an initialized OpenSSL ENGINE that digests and HMACs can be
// routed through. It is released by its finalizer.
type Engine struct {
	e *C.ENGINE
}

// EngineById loads and initializes an ENGINE. It fails on libraries built
// without ENGINE support.
func EngineById(name string) (*Engine, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	e := &Engine{
		e: C.X_ENGINE_by_id(cname),
	}
	if e.e == nil {
		return nil, errors.Errorf("openssl: engine %s missing", name)
	}
	if C.X_ENGINE_init(e.e) == 0 {
		C.X_ENGINE_free(e.e)
		return nil, errors.Errorf("openssl: engine %s not initialized", name)
	}
	runtime.SetFinalizer(e, func(e *Engine) {
		C.X_ENGINE_finish(e.e)
		C.X_ENGINE_free(e.e)
	})
	return e, nil
}

func engineRef(e *Engine) *C.ENGINE {
	if e == nil {
		return nil
	}
	return e.e
}
