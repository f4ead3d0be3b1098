// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package opts

import (
	"io"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/scriptpack/pkg/config"
	"github.com/walteh/scriptpack/pkg/log"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "SCRIPTPACK"

// RootOpts contains shared options used by all commands
type RootOpts struct {
	Config     *config.Config
	UserLogger *log.UserLogger
	Stdin      io.Reader
	Async      bool
}

// 🏗️ NewViper returns a viper instance reading SCRIPTPACK_* variables.
// Key "merge.keep-paths" maps to SCRIPTPACK_MERGE_KEEP_PATHS.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// 🔗 BindFlags binds every flag in fs under section
func BindFlags(v *viper.Viper, section string, fs *pflag.FlagSet) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Name == "help" {
			return
		}
		key := f.Name
		if section != "" {
			key = section + "." + f.Name
		}
		if bindErr := v.BindPFlag(key, f); bindErr != nil {
			err = errors.Errorf("binding flag %s: %w", f.Name, bindErr)
		}
	})
	return err
}

// String overrides dst when key was set by a flag or the environment
func String(v *viper.Viper, key string, dst *string) bool {
	if !v.IsSet(key) {
		return false
	}
	*dst = v.GetString(key)
	return true
}

// Bool overrides dst when key was set by a flag or the environment
func Bool(v *viper.Viper, key string, dst *bool) bool {
	if !v.IsSet(key) {
		return false
	}
	*dst = v.GetBool(key)
	return true
}

// Int overrides dst when key was set by a flag or the environment
func Int(v *viper.Viper, key string, dst *int) bool {
	if !v.IsSet(key) {
		return false
	}
	*dst = v.GetInt(key)
	return true
}

// Int64 overrides dst when key was set by a flag or the environment
func Int64(v *viper.Viper, key string, dst *int64) bool {
	if !v.IsSet(key) {
		return false
	}
	*dst = v.GetInt64(key)
	return true
}

// StringSlice overrides dst when key was set by a flag or the environment.
// Environment values are split on commas. An empty value gives an empty, non-nil slice.
func StringSlice(v *viper.Viper, key string, dst *[]string) bool {
	if !v.IsSet(key) {
		return false
	}
	out := []string{}
	for _, s := range v.GetStringSlice(key) {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	*dst = out
	return true
}
