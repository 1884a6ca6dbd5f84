// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

package cmd

import (
	"github.com/nanoshaper/ns-setup/internal/config"
	"github.com/nanoshaper/ns-setup/internal/install"
	"github.com/nanoshaper/ns-setup/internal/platform"
)

// Shared environment variable lists used by doctor and env show.
func requiredEnvVars(os platform.OSFamily) []string {
	return []string{rootEnv, install.LibrarySearchVar(os)}
}

var optionalEnvVars = []string{
	config.EnvPath,
	"NO_COLOR",
}

// allEnvVars returns required + optional in order.
func allEnvVars(os platform.OSFamily) []string {
	required := requiredEnvVars(os)
	out := make([]string, 0, len(required)+len(optionalEnvVars))
	out = append(out, required...)
	out = append(out, optionalEnvVars...)
	return out
}
