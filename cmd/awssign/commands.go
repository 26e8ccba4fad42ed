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

package main

import (
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/spacemonkeygo/spacelog"
	"github.com/spf13/cobra"

	"github.com/awssigner/go-openssl/credentials"
	"github.com/awssigner/go-openssl/signer"
)

var (
	logger = spacelog.GetLogger()

	// now is replaced in tests.
	now = time.Now
)

type options struct {
	config   string
	service  string
	region   string
	profile  string
	method   string
	data     string
	expires  time.Duration
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "awssign",
		Short:         "Sign AWS requests with Signature Version 4",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.config, "config", defaultConfigFile, "TOML configuration file")
	flags.StringVar(&opts.service, "service", "", "signing name of the service")
	flags.StringVar(&opts.region, "region", "", "region of the endpoint")
	flags.StringVar(&opts.profile, "profile", "", "shared credentials file profile")
	flags.StringVar(&opts.method, "method", "GET", "HTTP method")
	flags.StringVar(&opts.data, "data", "", "request body")
	flags.StringVar(&opts.logLevel, "log-level", "", "debug, info, notice, warn, error or critical")

	presign := presignCmd(opts)
	presign.Flags().DurationVar(&opts.expires, "expires", signer.DefaultExpires,
		"validity of the presigned URL")

	root.AddCommand(headersCmd(opts), presign, versionCmd())
	return root
}

func headersCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "headers URL",
		Short: "Print the signed request headers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, u, err := opts.setup(cmd, args[0])
			if err != nil {
				return err
			}
			signed, err := s.SignHeaders(u, opts.method, nil, opts.body(), now())
			if err != nil {
				return err
			}
			names := make([]string, 0, len(signed))
			for name := range signed {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				for _, value := range signed[name] {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", name, value)
				}
			}
			return nil
		},
	}
}

func presignCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "presign URL",
		Short: "Print a presigned URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, u, err := opts.setup(cmd, args[0])
			if err != nil {
				return err
			}
			presigned, err := s.SignURL(u, opts.method, opts.body(), now(), opts.expires)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), presigned.String())
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the crypto library in use",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, line := range versionLines() {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
		},
	}
}

func (opts *options) body() []byte {
	if opts.data == "" {
		return nil
	}
	return []byte(opts.data)
}

// setup merges the configuration file under the flags, applies the log
// level and builds the signer for rawURL.
func (opts *options) setup(cmd *cobra.Command, rawURL string) (
	*signer.Signer, *url.URL, error) {
	flags := cmd.Flags()
	cfg, err := loadConfig(opts.config, flags.Changed("config"))
	if err != nil {
		return nil, nil, err
	}
	if flags.Changed("service") {
		cfg.Service = opts.service
	}
	if flags.Changed("region") {
		cfg.Region = opts.region
	}
	if flags.Changed("profile") {
		cfg.Profile = opts.profile
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}

	level, err := spacelog.LevelFromString(cfg.LogLevel)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "awssign: log level %q", cfg.LogLevel)
	}
	spacelog.SetLevel(nil, level)

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, nil, errors.Wrap(err, "awssign: parsing url")
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, nil, errors.Errorf("awssign: %q is not an absolute url", rawURL)
	}

	provider := credentials.Chain{
		credentials.Environment{},
		credentials.SharedFile{
			Filename: cfg.CredentialsFile,
			Profile:  cfg.Profile,
		},
	}
	logger.Debugf("awssign: signing for %s in %s with %s hashing",
		cfg.Service, cfg.Region, signer.HashBackend())
	return signer.New(provider, cfg.Service, cfg.Region), u, nil
}
