// Copyright 2026 by the vaultci authors
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy
// of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations
// under the License.

// Package config loads command settings from environment variables and
// command line flags into validated structs.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var validate = validator.New()

// New returns a viper instance reading environment variables with the
// specified prefix (which might be empty) and knowing about the specified keys
// with their default values. Keys use underscores, so the key “disk_path” with
// the prefix “MONITOR” is read from $MONITOR_DISK_PATH.
func New(prefix string, defaults map[string]any) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	return v
}

// BindFlags binds the named flags to the keys of the same name, with dashes
// replaced by underscores. Flags only take precedence over environment
// variables when set explicitly.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet, names ...string) error {
	for _, name := range names {
		flag := flags.Lookup(name)
		if flag == nil {
			return fmt.Errorf("cannot bind unknown flag %q", name)
		}
		if err := v.BindPFlag(strings.ReplaceAll(name, "-", "_"), flag); err != nil {
			return fmt.Errorf("cannot bind flag %q, reason: %w", name, err)
		}
	}
	return nil
}

// Load decodes the settings known to v into target, which must be a pointer
// to a struct with “mapstructure” tags, and then validates target according to
// its “validate” tags.
func Load(v *viper.Viper, target any) error {
	if err := v.Unmarshal(target); err != nil {
		return fmt.Errorf("cannot decode configuration, reason: %w", err)
	}
	return Validate(target)
}

// Validate validates the struct pointed to by target according to its
// “validate” tags.
func Validate(target any) error {
	if err := validate.Struct(target); err != nil {
		return fmt.Errorf("invalid configuration, reason: %w", err)
	}
	return nil
}
