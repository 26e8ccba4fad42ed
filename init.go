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

// Package openssl wraps the parts of OpenSSL's libcrypto needed to compute
// message digests and HMACs, hiding the differences between the OpenSSL
// 1.0 and 1.1+ (and matching LibreSSL) context lifecycles behind a small C
// shim that is resolved at compile time.
package openssl

// #include "shim.h"
import "C"

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/spacemonkeygo/spacelog"
)

var logger = spacelog.GetLogger()

func init() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if rc := C.X_shim_init(); rc != 1 {
		panic(fmt.Sprintf("openssl: initialization failed: %v",
			errorFromErrorQueue()))
	}
	logger.Debugf("openssl: loaded %s with %s context lifecycle",
		Version(), ContextLifecycle())
}

// errorFromErrorQueue needs to run in the same OS thread as the operation
// that caused the possible error
func errorFromErrorQueue() error {
	var errs []string
	for {
		err := C.ERR_get_error()
		if err == 0 {
			break
		}
		errs = append(errs, fmt.Sprintf("%s:%s",
			C.GoString(C.ERR_lib_error_string(err)),
			C.GoString(C.ERR_reason_error_string(err))))
	}
	if len(errs) == 0 {
		return errors.New("openssl: unknown error")
	}
	return errors.Errorf("openssl: %s", strings.Join(errs, "\n"))
}
