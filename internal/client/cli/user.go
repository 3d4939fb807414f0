package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"rosterkeeper/internal/client/models"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage roster users",
}

var userListGroup string

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users, optionally for one group",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var list []models.User
		var err error
		if userListGroup != "" {
			list, err = app.users.ListByGroup(cmd.Context(), userListGroup)
		} else {
			list, err = app.users.List(cmd.Context())
		}
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No users")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tNAME\tGROUP\tSTATUS")
		for _, u := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				u.ID, u.Username, u.Name, u.GroupID, colorStatus(u.SyncStatus))
		}
		return w.Flush()
	},
}

var (
	userAddName  string
	userAddGroup string
)

var userAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Create a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := app.users.Create(cmd.Context(), args[0], userAddName, userAddGroup)
		if err != nil {
			return err
		}
		fmt.Printf("Created user %s (%s)\n", u.Username, u.ID)
		return nil
	},
}

var userRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.users.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("User %s queued for deletion\n", args[0])
		return nil
	},
}

var userRetryCmd = &cobra.Command{
	Use:   "retry <id>",
	Short: "Retry a failed user sync",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.users.Retry(cmd.Context(), args[0])
	},
}

func init() {
	userAddCmd.Flags().StringVar(&userAddName, "name", "", "display name")
	userAddCmd.Flags().StringVar(&userAddGroup, "group", "", "local id of the group to join")
	userListCmd.Flags().StringVar(&userListGroup, "group", "", "local id of a group to filter by")
	userCmd.AddCommand(userListCmd, userAddCmd, userRmCmd, userRetryCmd)
}
