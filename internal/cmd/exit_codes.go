package cmd

import (
	"errors"
	"strings"

	"github.com/spf13/pflag"

	"github.com/taskman/taskman-cli/internal/api"
	"github.com/taskman/taskman-cli/internal/config"
)

const (
	exitOK      = 0
	exitGeneric = 1
	exitUsage   = 2
	exitConfig  = 3
	exitRequest = 4
	exitNetwork = 8
)

// ExitCode maps an error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if errors.Is(err, pflag.ErrHelp) {
		return exitOK
	}
	var handled *handledError
	if errors.As(err, &handled) {
		if handled.exitCode != 0 {
			return handled.exitCode
		}
		err = handled.err
	}

	switch {
	case api.IsConfigurationError(err), errors.Is(err, config.ErrNotConfigured):
		return exitConfig
	case api.IsRequestError(err):
		return exitRequest
	case api.IsTransportError(err):
		return exitNetwork
	case api.IsDecodeError(err):
		return exitGeneric
	case isUsageError(err):
		return exitUsage
	}
	return exitGeneric
}

func isUsageError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	indicators := []string{
		"unknown command",
		"unknown flag",
		"unknown shorthand flag",
		"flag needs an argument",
		"accepts 1 arg",
		"requires at least",
		"requires exactly",
		"invalid argument",
		"invalid source",
		"invalid rsn",
		"exceeds maximum length",
		"conflicts with",
		"must be",
		"is required",
		"are required",
		"requires --output",
		"invalid output format",
	}
	for _, indicator := range indicators {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}
