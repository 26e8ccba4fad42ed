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

// EVP_MD represents hash function implemented by OpenSSL
type EVP_MD int

const (
	EVP_NULL EVP_MD = iota
	EVP_MD5
	EVP_SHA1
	EVP_SHA224
	EVP_SHA256
	EVP_SHA384
	EVP_SHA512
	EVP_SHA512_224
	EVP_SHA512_256
	EVP_SHA3_224
	EVP_SHA3_256
	EVP_SHA3_384
	EVP_SHA3_512
)

// Size returns the size of the digest
func (evp EVP_MD) Size() int {
	var bits int
	switch evp {
	case EVP_MD5:
		bits = 128
	case EVP_SHA1:
		bits = 160
	case EVP_SHA224, EVP_SHA512_224, EVP_SHA3_224:
		bits = 224
	case EVP_SHA256, EVP_SHA512_256, EVP_SHA3_256:
		bits = 256
	case EVP_SHA384, EVP_SHA3_384:
		bits = 384
	case EVP_SHA512, EVP_SHA3_512:
		bits = 512
	}
	return bits / 8
}

// BlockSize returns hash function block size in bytes
func (evp EVP_MD) BlockSize() int {
	var bits int
	switch evp {
	case EVP_MD5, EVP_SHA1, EVP_SHA224, EVP_SHA256:
		bits = 512
	case EVP_SHA384, EVP_SHA512, EVP_SHA512_224, EVP_SHA512_256:
		bits = 1024
	case EVP_SHA3_224:
		bits = 1152
	case EVP_SHA3_256:
		bits = 1088
	case EVP_SHA3_384:
		bits = 832
	case EVP_SHA3_512:
		bits = 576
	}
	return bits / 8
}

func (evp EVP_MD) String() string {
	switch evp {
	case EVP_MD5:
		return "MD5"
	case EVP_SHA1:
		return "SHA1"
	case EVP_SHA224:
		return "SHA224"
	case EVP_SHA256:
		return "SHA256"
	case EVP_SHA384:
		return "SHA384"
	case EVP_SHA512:
		return "SHA512"
	case EVP_SHA512_224:
		return "SHA512_224"
	case EVP_SHA512_256:
		return "SHA512_256"
	case EVP_SHA3_224:
		return "SHA3_224"
	case EVP_SHA3_256:
		return "SHA3_256"
	case EVP_SHA3_384:
		return "SHA3_384"
	case EVP_SHA3_512:
		return "SHA3_512"
	default:
		return "UNKNOWN"
	}
}

/*
OpenSSL compatibility table:

Digest      1.0.2   1.1.0   1.1.1+
MD5         +       +       +
SHA1        +       +       +
SHA224      +       +       +
SHA256      +       +       +
SHA384      +       +       +
SHA512      +       +       +
SHA512-224  -       -       +
SHA512-256  -       -       +
SHA3-224    -       -       +
SHA3-256    -       -       +
SHA3-384    -       -       +
SHA3-512    -       -       +

The shim resolves missing digests to NULL when it is compiled.
*/

// Supported checks if this hash function is available in the OpenSSL the
// package was compiled against.
func (evp EVP_MD) Supported() bool {
	return evp.c() != nil
}

// c returns pointer to the struct that is used during digest initialization,
// or nil if the digest is unknown or unavailable.
func (evp EVP_MD) c() (evpMD *C.EVP_MD) {
	switch evp {
	case EVP_MD5:
		evpMD = C.X_EVP_md5()
	case EVP_SHA1:
		evpMD = C.X_EVP_sha1()
	case EVP_SHA224:
		evpMD = C.X_EVP_sha224()
	case EVP_SHA256:
		evpMD = C.X_EVP_sha256()
	case EVP_SHA384:
		evpMD = C.X_EVP_sha384()
	case EVP_SHA512:
		evpMD = C.X_EVP_sha512()
	case EVP_SHA512_224:
		evpMD = C.X_EVP_sha512_224()
	case EVP_SHA512_256:
		evpMD = C.X_EVP_sha512_256()
	case EVP_SHA3_224:
		evpMD = C.X_EVP_sha3_224()
	case EVP_SHA3_256:
		evpMD = C.X_EVP_sha3_256()
	case EVP_SHA3_384:
		evpMD = C.X_EVP_sha3_384()
	case EVP_SHA3_512:
		evpMD = C.X_EVP_sha3_512()
	}
	return
}

// nativeSizes asks the linked library for the digest and block sizes.
func (evp EVP_MD) nativeSizes() (size, blockSize int) {
	md := evp.c()
	if md == nil {
		return 0, 0
	}
	return int(C.X_EVP_MD_size(md)), int(C.X_EVP_MD_block_size(md))
}
