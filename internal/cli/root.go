// Package cli implements turnctl, an operator tool for inspecting and
// driving rotations directly against the WhoseTurn store.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose       bool
	Format        string // "text" | "json" | "yaml"
	MongoURI      string
	MongoDatabase string
	DeletePolicy  string

	open Opener
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command backed by MongoDB.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWith(OpenMongo)
}

// NewRootCommandWith creates the root command with a custom backend opener.
func NewRootCommandWith(open Opener) *cobra.Command {
	opts := &RootOptions{open: open}

	cmd := &cobra.Command{
		Use:   "turnctl",
		Short: "turnctl - WhoseTurn operator tool",
		Long:  "Inspect and drive WhoseTurn rotations and notifications directly against the store.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true, // main prints the error and picks the exit code
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVar(&opts.MongoURI, "mongo-uri", envOr("WHOSETURN_MONGO_URI", "mongodb://localhost:27017"), "MongoDB connection URI")
	cmd.PersistentFlags().StringVar(&opts.MongoDatabase, "mongo-database", envOr("WHOSETURN_MONGO_DATABASE", "whoseturn"), "MongoDB database name")
	cmd.PersistentFlags().StringVar(&opts.DeletePolicy, "delete-policy", envOr("WHOSETURN_DELETE_POLICY", "creator"), "who may delete a group (creator|any)")

	cmd.AddCommand(NewGroupsCommand(opts))
	cmd.AddCommand(NewNotificationsCommand(opts))

	return cmd
}
