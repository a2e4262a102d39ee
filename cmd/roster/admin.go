package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/kitchen-roster/internal/model"
	"github.com/nhle/kitchen-roster/internal/store"
)

// assigneeFlags are shared by task add and template add.
type assigneeFlags struct {
	due    string
	notes  string
	userID string
	roleID string
}

func (f *assigneeFlags) register(c *cobra.Command) {
	c.Flags().StringVar(&f.due, "due", "", "due time as HH:MM")
	c.Flags().StringVar(&f.notes, "notes", "", "notes")
	c.Flags().StringVar(&f.userID, "user", "", "assign to user id")
	c.Flags().StringVar(&f.roleID, "role", "", "assign to role id")
}

func (f *assigneeFlags) dueAt() (*model.TimeOfDay, error) {
	if strings.TrimSpace(f.due) == "" {
		return nil, nil
	}
	t, err := model.ParseTimeOfDay(f.due)
	if err != nil {
		return nil, fmt.Errorf("invalid --due: %w", err)
	}
	return &t, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return model.StringPtr(s)
}

var (
	taskFlags     assigneeFlags
	templateFlags assigneeFlags
	userEmail     string
	userID        string
	roleName      string
)

var taskCmd = &cobra.Command{Use: "task", Short: "Manage the day's tasks"}

var taskAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a task to the roster day",
	Args:  cobra.MinimumNArgs(1),
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, st store.Store, args []string) error {
		day, err := resolveDay()
		if err != nil {
			return err
		}
		due, err := taskFlags.dueAt()
		if err != nil {
			return err
		}
		id, err := st.InsertTask(ctx, model.TaskRecord{
			Title:          strings.Join(args, " "),
			Notes:          taskFlags.notes,
			ForDate:        day,
			DueAt:          due,
			AssigneeUserID: optional(taskFlags.userID),
			AssigneeRoleID: optional(taskFlags.roleID),
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	}),
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the roster day",
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, st store.Store, args []string) error {
		day, err := resolveDay()
		if err != nil {
			return err
		}
		recs, err := st.QueryDay(ctx, day)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, r := range recs {
			check := " "
			if model.IsDone(r) {
				check = "x"
			}
			due := "     "
			if r.DueAt != nil {
				due = r.DueAt.String()
			}
			fmt.Fprintf(out, "[%s] %s %s  %s\n", check, due, r.DisplayTitle(), r.ID)
		}
		return nil
	}),
}

var userCmd = &cobra.Command{Use: "user", Short: "Manage staff"}

var userAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a staff member",
	Args:  cobra.MinimumNArgs(1),
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, st store.Store, args []string) error {
		u := model.User{ID: userID, Name: strings.Join(args, " "), Email: userEmail}
		if err := st.CreateUser(ctx, u); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "added", u.Name)
		return nil
	}),
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List staff",
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, st store.Store, args []string) error {
		users, err := st.GetUsers(ctx)
		if err != nil {
			return err
		}
		for _, u := range users {
			roles, err := st.GetRoleIDsForUser(ctx, u.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n", u.ID, u.Label(), strings.Join(roles, ","))
		}
		return nil
	}),
}

var roleCmd = &cobra.Command{Use: "role", Short: "Manage roles and grants"}

var roleAddCmd = &cobra.Command{
	Use:   "add <role-id>",
	Short: "Define a role",
	Args:  cobra.ExactArgs(1),
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, st store.Store, args []string) error {
		return st.CreateRole(ctx, model.Role{ID: args[0], Name: roleName})
	}),
}

var roleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List roles",
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, st store.Store, args []string) error {
		roles, err := st.GetRoles(ctx)
		if err != nil {
			return err
		}
		for _, r := range roles {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", r.ID, r.Name)
		}
		return nil
	}),
}

var roleGrantCmd = &cobra.Command{
	Use:   "grant <user-id> <role-id>",
	Short: "Give a user a role",
	Args:  cobra.ExactArgs(2),
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, st store.Store, args []string) error {
		return st.AssignRole(ctx, args[0], args[1])
	}),
}

var roleRevokeCmd = &cobra.Command{
	Use:   "revoke <user-id> <role-id>",
	Short: "Take a role away from a user",
	Args:  cobra.ExactArgs(2),
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, st store.Store, args []string) error {
		return st.RevokeRole(ctx, args[0], args[1])
	}),
}

var templateCmd = &cobra.Command{Use: "template", Short: "Manage daily task templates"}

var templateAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a template generated every day",
	Args:  cobra.MinimumNArgs(1),
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, st store.Store, args []string) error {
		due, err := templateFlags.dueAt()
		if err != nil {
			return err
		}
		return st.CreateTemplate(ctx, model.TaskTemplate{
			Title:          strings.Join(args, " "),
			DefaultNotes:   templateFlags.notes,
			DueAt:          due,
			AssigneeUserID: optional(templateFlags.userID),
			AssigneeRoleID: optional(templateFlags.roleID),
		})
	}),
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates",
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, st store.Store, args []string) error {
		tmpls, err := st.GetTemplates(ctx)
		if err != nil {
			return err
		}
		for _, t := range tmpls {
			due := "     "
			if t.DueAt != nil {
				due = t.DueAt.String()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s  %s\n", due, t.Title, t.ID)
		}
		return nil
	}),
}

func init() {
	taskFlags.register(taskAddCmd)
	templateFlags.register(templateAddCmd)
	userAddCmd.Flags().StringVar(&userEmail, "email", "", "email address")
	userAddCmd.Flags().StringVar(&userID, "id", "", "user id (default generated)")
	roleAddCmd.Flags().StringVar(&roleName, "name", "", "display name (default the id)")

	taskCmd.AddCommand(taskAddCmd, taskListCmd)
	userCmd.AddCommand(userAddCmd, userListCmd)
	roleCmd.AddCommand(roleAddCmd, roleListCmd, roleGrantCmd, roleRevokeCmd)
	templateCmd.AddCommand(templateAddCmd, templateListCmd)
}

// withStore opens the store around fn.
func withStore(fn func(ctx context.Context, cmd *cobra.Command, st store.Store, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()
		return fn(cmd.Context(), cmd, st, args)
	}
}
