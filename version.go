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

// Version returns the human readable version string of the linked library,
// e.g. "OpenSSL 1.1.1w  11 Sep 2023".
func Version() string {
	return C.GoString(C.X_OpenSSL_version())
}

// VersionNumber returns the OPENSSL_VERSION_NUMBER of the linked library.
func VersionNumber() int {
	return int(C.X_OpenSSL_version_num())
}

// HeaderVersionNumber returns the OPENSSL_VERSION_NUMBER of the headers the
// package was compiled against. This is what selects the context lifecycle.
func HeaderVersionNumber() int {
	return int(C.OPENSSL_VERSION_NUMBER)
}

// LibreSSLVersionNumber returns LIBRESSL_VERSION_NUMBER, or 0 when compiled
// against OpenSSL proper.
func LibreSSLVersionNumber() int {
	return int(C.X_LibreSSL_version_num())
}
