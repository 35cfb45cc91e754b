package main

import (
	"fmt"
	"io"

	"github.com/jonathan/jobboard/internal/types"
	"github.com/spf13/cobra"
)

var validateSeedCmd = &cobra.Command{
	Use:   "validate-seed [path]",
	Short: "Check a seed fixture against the schema and its cross references",
	Long:  "Validate a seed fixture file, or the built-in fixture when no path is given, and print what it contains.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		return validateSeed(cmd.OutOrStdout(), path)
	},
}

func init() {
	rootCmd.AddCommand(validateSeedCmd)
}

func validateSeed(out io.Writer, path string) error {
	fx, err := loadFixture(path)
	if err != nil {
		return err
	}

	roles := map[types.Role]int{}
	for _, u := range fx.Users {
		roles[u.Role()]++
	}
	name := path
	if name == "" {
		name = "built-in seed"
	}
	_, err = fmt.Fprintf(out, "%s OK: %d users (%d job seekers, %d employers, %d admins), %d jobs, %d applications\n",
		name, len(fx.Users), roles[types.RoleJobSeeker], roles[types.RoleEmployer], roles[types.RoleAdmin],
		len(fx.Snapshot.Jobs), len(fx.Snapshot.Applications))
	return err
}
