//go:build windows
// +build windows

package cmd

import (
	"github.com/pkg/errors"

	"github.com/lorahub/lorahub-keyserver/internal/config"
)

func setSyslog() error {
	if config.C.General.LogToSyslog {
		return errors.New("syslog logging is not supported on Windows")
	}

	return nil
}
