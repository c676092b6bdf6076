// SPDX-License-Identifier: BSD-3-Clause

// Package app defines application-wide names used by the CLI's root
// command.
package app

import (
	"os"
	"path/filepath"
)

// Name is the name of the application executable.
var Name = filepath.Base(os.Args[0])

// Flag names for flags defined on the root command.
const (
	FlagDebugName  = "debug"
	FlagConfigName = "config"
)
