// Lectern - Authentication and Access Control Core for Coaching-Center LMS
// Copyright 2026 The Lectern Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-lms/lectern

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lectern",
		Short: "Authentication and access control for the coaching-center LMS",
		Long: `Lectern is the authentication, session, and authorization core
for the coaching-center LMS. It issues and verifies identity tokens,
keeps the revocable session directory, and gates every request on role
and permission.`,
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		sessionsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
