package cli

import (
	"github.com/dalemusser/whoseturn/internal/app/rotation"
	"github.com/dalemusser/whoseturn/internal/app/turns"
	"github.com/spf13/cobra"
)

func reasonText(r rotation.Reason) string {
	switch r {
	case rotation.NotYourTurn:
		return "It's not your turn yet!"
	case rotation.SelfNudge:
		return "You can't nudge yourself."
	case rotation.NotAMember:
		return "Not a member of this group."
	case rotation.NotCreator:
		return "Only the group's creator can delete it."
	case turns.NotFound:
		return "Not found."
	}
	return string(r)
}

func formatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
}
