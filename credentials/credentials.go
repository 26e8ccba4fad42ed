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

// Package credentials provides the AWS security credentials used to sign
// requests, read from static values, the environment or the shared
// credentials file.
package credentials

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spacemonkeygo/spacelog"
	"gopkg.in/ini.v1"

	"github.com/awssigner/go-openssl/utils"
)

var logger = spacelog.GetLogger()

// ErrNotFound is returned (possibly wrapped) by a Provider that has no
// credentials to offer.
var ErrNotFound = errors.New("credentials: not found")

const (
	EnvAccessKeyID     = "AWS_ACCESS_KEY_ID"
	EnvSecretAccessKey = "AWS_SECRET_ACCESS_KEY"
	EnvSessionToken    = "AWS_SESSION_TOKEN"
	EnvSharedFile      = "AWS_SHARED_CREDENTIALS_FILE"
	EnvProfile         = "AWS_PROFILE"

	DefaultSharedFile = "~/.aws/credentials"
	DefaultProfile    = "default"
)

// Provider supplies credentials.
type Provider interface {
	Retrieve() (Credential, error)
}

// Credential is a static set of AWS security credentials. It is its own
// Provider.
type Credential struct {
	AccessKeyID     string
	SecretAccessKey string
	// SessionToken is only set for temporary credentials.
	SessionToken string
}

func (c Credential) Retrieve() (Credential, error) {
	if c.AccessKeyID == "" || c.SecretAccessKey == "" {
		return Credential{}, errors.Wrap(ErrNotFound, "static credential is empty")
	}
	return c, nil
}

// Environment reads credentials from AWS_ACCESS_KEY_ID,
// AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN.
type Environment struct {
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

func (e Environment) getenv(key string) string {
	if e.Getenv != nil {
		return e.Getenv(key)
	}
	return os.Getenv(key)
}

func (e Environment) Retrieve() (Credential, error) {
	id := e.getenv(EnvAccessKeyID)
	if id == "" {
		return Credential{}, errors.Wrapf(ErrNotFound, "%s not set", EnvAccessKeyID)
	}
	secret := e.getenv(EnvSecretAccessKey)
	if secret == "" {
		return Credential{}, errors.Wrapf(ErrNotFound, "%s not set", EnvSecretAccessKey)
	}
	return Credential{
		AccessKeyID:     id,
		SecretAccessKey: secret,
		SessionToken:    e.getenv(EnvSessionToken),
	}, nil
}

// SharedFile reads a profile from the INI formatted shared credentials
// file.
type SharedFile struct {
	// Filename defaults to $AWS_SHARED_CREDENTIALS_FILE, then
	// ~/.aws/credentials. A leading ~ is expanded.
	Filename string
	// Profile defaults to $AWS_PROFILE, then "default".
	Profile string
}

func (s SharedFile) filename() (string, error) {
	name := s.Filename
	if name == "" {
		name = os.Getenv(EnvSharedFile)
	}
	if name == "" {
		name = DefaultSharedFile
	}
	return ExpandHome(name)
}

func (s SharedFile) profile() string {
	if s.Profile != "" {
		return s.Profile
	}
	if p := os.Getenv(EnvProfile); p != "" {
		return p
	}
	return DefaultProfile
}

func (s SharedFile) Retrieve() (Credential, error) {
	name, err := s.filename()
	if err != nil {
		return Credential{}, err
	}
	if _, err := os.Stat(name); os.IsNotExist(err) {
		return Credential{}, errors.Wrapf(ErrNotFound, "%s does not exist", name)
	}
	cfg, err := ini.Load(name)
	if err != nil {
		return Credential{}, errors.Wrapf(err, "credentials: parsing %s", name)
	}
	profile := s.profile()
	section, err := cfg.GetSection(profile)
	if err != nil {
		return Credential{}, errors.Wrapf(ErrNotFound, "profile %q not in %s",
			profile, name)
	}
	id := section.Key("aws_access_key_id").String()
	secret := section.Key("aws_secret_access_key").String()
	if id == "" || secret == "" {
		return Credential{}, errors.Wrapf(ErrNotFound,
			"profile %q in %s has no access key", profile, name)
	}
	return Credential{
		AccessKeyID:     id,
		SecretAccessKey: secret,
		SessionToken:    section.Key("aws_session_token").String(),
	}, nil
}

// Chain returns the credentials of the first provider that has some.
type Chain []Provider

func (c Chain) Retrieve() (Credential, error) {
	var group utils.ErrorGroup
	for i, p := range c {
		cred, err := p.Retrieve()
		if err == nil {
			return cred, nil
		}
		if errors.Is(err, ErrNotFound) {
			logger.Debugf("credentials: provider %d (%T): %v", i, p, err)
		} else {
			logger.Warnf("credentials: provider %d (%T): %v", i, p, err)
		}
		group.Addf(err, "provider %T", p)
	}
	if group.Len() == 0 {
		return Credential{}, errors.Wrap(ErrNotFound, "empty provider chain")
	}
	for _, err := range group.Errors {
		if !errors.Is(err, ErrNotFound) {
			return Credential{}, group.Finalize()
		}
	}
	return Credential{}, errors.Wrap(ErrNotFound, group.Finalize().Error())
}

// DefaultChain looks in the environment, then in the shared credentials
// file.
func DefaultChain() Chain {
	return Chain{Environment{}, SharedFile{}}
}

// ExpandHome replaces a leading ~ with the home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "credentials: expanding ~")
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
