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

//go:build cgo
// +build cgo

package signer

import (
	"github.com/awssigner/go-openssl"
)

const hashBackend = "openssl"

func sha256Hex(data []byte) (string, error) {
	sum, err := openssl.SHA256(data)
	if err != nil {
		return "", err
	}
	return hexEncode(sum[:]), nil
}

func hmacSHA256(key, data []byte) ([]byte, error) {
	return openssl.ComputeHMAC(openssl.EVP_SHA256, key, data)
}
