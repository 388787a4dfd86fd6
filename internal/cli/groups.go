package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dalemusser/whoseturn/internal/app/store/storeerr"
	"github.com/dalemusser/whoseturn/internal/app/turns"
	"github.com/dalemusser/whoseturn/internal/domain/models"
	"github.com/spf13/cobra"
)

// NewGroupsCommand creates the groups command tree.
func NewGroupsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List and drive rotations",
	}
	cmd.AddCommand(newGroupsListCommand(rootOpts))
	cmd.AddCommand(newGroupsShowCommand(rootOpts))
	cmd.AddCommand(newGroupsActionCommand(rootOpts, "complete", "Complete the current turn on behalf of a member"))
	cmd.AddCommand(newGroupsActionCommand(rootOpts, "nudge", "Remind the current turn holder on behalf of a member"))
	cmd.AddCommand(newGroupsActionCommand(rootOpts, "delete", "Delete a group on behalf of a member"))
	return cmd
}

func newGroupsListCommand(rootOpts *RootOptions) *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List groups, optionally only those a user belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(rootOpts, cmd)
			return withBackend(cmd.Context(), rootOpts, func(b *Backend) error {
				var (
					list []models.Group
					err  error
				)
				if userID != "" {
					list, err = b.Groups.ListForUser(cmd.Context(), userID)
				} else {
					list, err = b.Groups.All(cmd.Context())
				}
				if err != nil {
					return WrapExitError(ExitCommandError, "list groups", err)
				}
				if list == nil {
					list = []models.Group{}
				}
				return out.Success(map[string]any{"groups": list}, func(w io.Writer) {
					printGroups(w, list)
				})
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "only groups this user id belongs to")
	return cmd
}

func newGroupsShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <group-id>",
		Short: "Show one group and its rotation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(rootOpts, cmd)
			return withBackend(cmd.Context(), rootOpts, func(b *Backend) error {
				g, err := b.Groups.Get(cmd.Context(), args[0])
				if errors.Is(err, storeerr.ErrNotFound) {
					return refuseOrFail(out, turns.Outcome{Reason: turns.NotFound}, nil, "show")
				}
				if err != nil {
					return WrapExitError(ExitCommandError, "load group", err)
				}
				return out.Success(g, func(w io.Writer) { printGroup(w, g) })
			})
		},
	}
}

func newGroupsActionCommand(rootOpts *RootOptions, action, short string) *cobra.Command {
	var actor string
	cmd := &cobra.Command{
		Use:   action + " <group-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(rootOpts, cmd)
			return withBackend(cmd.Context(), rootOpts, func(b *Backend) error {
				svc, err := b.service(rootOpts)
				if err != nil {
					return WrapExitError(ExitCommandError, "invalid options", err)
				}
				var res turns.Outcome
				switch action {
				case "complete":
					res, err = svc.CompleteTurn(cmd.Context(), args[0], actor)
				case "nudge":
					res, err = svc.NudgeMember(cmd.Context(), args[0], actor)
				case "delete":
					res, err = svc.DeleteGroup(cmd.Context(), args[0], actor)
				}
				if err != nil || !res.OK {
					return refuseOrFail(out, res, err, action)
				}
				return out.Success(outcomeView(res), func(w io.Writer) {
					fmt.Fprintf(w, "%s ok", action)
					if res.Group != nil {
						if m, ok := res.Group.TurnHolder(); ok {
							fmt.Fprintf(w, "; now %s's turn", m.Name)
						}
					}
					if action != "delete" && !res.Delivered {
						fmt.Fprint(w, " (notification suppressed)")
					}
					fmt.Fprintln(w)
				})
			})
		},
	}
	cmd.Flags().StringVar(&actor, "as", "", "user id acting (required)")
	_ = cmd.MarkFlagRequired("as")
	return cmd
}

func outcomeView(res turns.Outcome) map[string]any {
	v := map[string]any{"notified": res.Delivered}
	if res.Group != nil {
		v["group"] = res.Group
	}
	return v
}

// refuseOrFail reports a rejected outcome with ExitFailure, or a store
// error with ExitCommandError.
func refuseOrFail(out *OutputFormatter, res turns.Outcome, err error, what string) error {
	if err != nil && res.Reason == "" {
		return WrapExitError(ExitCommandError, what, err)
	}
	if err := out.Error(string(res.Reason), reasonText(res.Reason)); err != nil {
		return err
	}
	return NewExitError(ExitFailure, what+": "+string(res.Reason))
}

func printGroups(w io.Writer, list []models.Group) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tMEMBERS\tTURN")
	for _, g := range list {
		holder := "-"
		if m, ok := g.TurnHolder(); ok {
			holder = m.Name
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", g.ID, g.Name, len(g.Members), holder)
	}
	_ = tw.Flush()
}

func printGroup(w io.Writer, g models.Group) {
	fmt.Fprintf(w, "%s (%s)\n%s\n", g.Name, g.ID, g.Description)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, m := range g.Members {
		mark := " "
		if i == g.CurrentTurnIndex {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", mark, m.ID, m.Name, m.Email)
	}
	_ = tw.Flush()
}
