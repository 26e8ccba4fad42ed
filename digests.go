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

// digestInto hashes data with md and copies the digest into dst, which
// is md.Size() bytes long.
func digestInto(md EVP_MD, data, dst []byte) error {
	dc, err := NewDigestComputer(md)
	if err != nil {
		return err
	}
	defer dc.Close()
	if _, err := dc.Write(data); err != nil {
		return err
	}
	sum, err := dc.Sum()
	if err != nil {
		return err
	}
	copy(dst, sum)
	return nil
}

func MD5(data []byte) (sum [16]byte, err error) {
	err = digestInto(EVP_MD5, data, sum[:])
	return sum, err
}

func SHA1(data []byte) (sum [20]byte, err error) {
	err = digestInto(EVP_SHA1, data, sum[:])
	return sum, err
}

func SHA256(data []byte) (sum [32]byte, err error) {
	err = digestInto(EVP_SHA256, data, sum[:])
	return sum, err
}

func SHA384(data []byte) (sum [48]byte, err error) {
	err = digestInto(EVP_SHA384, data, sum[:])
	return sum, err
}

func SHA512(data []byte) (sum [64]byte, err error) {
	err = digestInto(EVP_SHA512, data, sum[:])
	return sum, err
}

// SHA256Hash is a streaming SHA256 with a fixed size Sum.
type SHA256Hash struct {
	*DigestComputer
}

func NewSHA256Hash() (*SHA256Hash, error) { return NewSHA256HashWithEngine(nil) }

func NewSHA256HashWithEngine(e *Engine) (*SHA256Hash, error) {
	dc, err := NewDigestComputerWithEngine(e, EVP_SHA256)
	if err != nil {
		return nil, err
	}
	return &SHA256Hash{DigestComputer: dc}, nil
}

func (s *SHA256Hash) Sum() (sum [32]byte, err error) {
	b, err := s.DigestComputer.Sum()
	if err != nil {
		return sum, err
	}
	copy(sum[:], b)
	return sum, nil
}
