package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dalemusser/whoseturn/internal/domain/models"
	"github.com/spf13/cobra"
)

// NewNotificationsCommand creates the notifications command tree.
func NewNotificationsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notes"},
		Short:   "Inspect a user's notifications",
	}
	cmd.AddCommand(newNotificationsListCommand(rootOpts))
	cmd.AddCommand(newNotificationsUnreadCommand(rootOpts))
	cmd.AddCommand(newNotificationsReadCommand(rootOpts))
	return cmd
}

func newNotificationsListCommand(rootOpts *RootOptions) *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's notifications, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(rootOpts, cmd)
			return withBackend(cmd.Context(), rootOpts, func(b *Backend) error {
				list, err := b.Notifications.ListForUser(cmd.Context(), userID)
				if err != nil {
					return WrapExitError(ExitCommandError, "list notifications", err)
				}
				if list == nil {
					list = []models.Notification{}
				}
				return out.Success(map[string]any{"notifications": list}, func(w io.Writer) {
					tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
					for _, n := range list {
						state := "new"
						if n.Read {
							state = "read"
						}
						at := time.UnixMilli(n.Timestamp).UTC().Format(time.RFC3339)
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", n.ID, at, state, n.GroupName, n.Message)
					}
					_ = tw.Flush()
				})
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "recipient user id (required)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newNotificationsUnreadCommand(rootOpts *RootOptions) *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "unread",
		Short: "Print a user's unread notification count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(rootOpts, cmd)
			return withBackend(cmd.Context(), rootOpts, func(b *Backend) error {
				n, err := b.Notifications.UnreadCount(cmd.Context(), userID)
				if err != nil {
					return WrapExitError(ExitCommandError, "unread count", err)
				}
				return out.Success(map[string]any{"unreadCount": n}, func(w io.Writer) {
					fmt.Fprintln(w, n)
				})
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "recipient user id (required)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newNotificationsReadCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "read <notification-id>",
		Short: "Mark a notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(rootOpts, cmd)
			return withBackend(cmd.Context(), rootOpts, func(b *Backend) error {
				svc, err := b.service(rootOpts)
				if err != nil {
					return WrapExitError(ExitCommandError, "invalid options", err)
				}
				res, err := svc.MarkNotificationRead(cmd.Context(), args[0])
				if err != nil || !res.OK {
					return refuseOrFail(out, res, err, "mark read")
				}
				return out.Success(map[string]any{"id": args[0], "read": true}, func(w io.Writer) {
					fmt.Fprintf(w, "%s marked read\n", args[0])
				})
			})
		},
	}
}
