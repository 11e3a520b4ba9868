package cmd

import (
	"github.com/spf13/cobra"

	"github.com/spigell/group-recommender/internal/records"
	"github.com/spigell/group-recommender/internal/store"
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Manage groups in the record store",
}

var groupsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a group administered by an existing user",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		withStore(cmd, func(s *store.Store) (any, error) {
			flags := cmd.Flags()
			admin, _ := flags.GetString("admin")
			name, _ := flags.GetString("name")
			description, _ := flags.GetString("description")
			activity, _ := flags.GetString("activity")
			location, _ := flags.GetString("location")
			maxMembers, _ := flags.GetInt("max-members")
			ageGroup, _ := flags.GetString("age-group")

			return s.CreateGroup(records.Group{
				Name:        name,
				Description: description,
				Activity:    activity,
				Location:    location,
				MaxMembers:  maxMembers,
				AgeGroup:    ageGroup,
			}, admin)
		})
	},
}

var groupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List groups",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		withStore(cmd, func(s *store.Store) (any, error) {
			skip, limit := pageFlags(cmd)
			return s.ListGroups(skip, limit)
		})
	},
}

var groupsOpenCmd = &cobra.Command{
	Use:   "open",
	Short: "List groups that are looking for members",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		withStore(cmd, func(s *store.Store) (any, error) {
			skip, limit := pageFlags(cmd)
			return s.OpenGroups(skip, limit)
		})
	},
}

var groupsReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print groups grouped by location",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		withStore(cmd, func(s *store.Store) (any, error) {
			catalog, err := s.Groups()
			if err != nil {
				return nil, err
			}
			if dump, _ := cmd.Flags().GetBool("dump"); dump {
				path, err := catalog.DumpToTmpFile()
				if err != nil {
					return nil, err
				}
				return map[string]string{"file": path}, nil
			}
			return catalog.ReportByLocation(), nil
		})
	},
}

var groupsJoinCmd = &cobra.Command{
	Use:   "join <group-id>",
	Short: "Add a user to a group",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withStore(cmd, func(s *store.Store) (any, error) {
			user, _ := cmd.Flags().GetString("user")
			return s.JoinGroup(args[0], user)
		})
	},
}

var groupsLeaveCmd = &cobra.Command{
	Use:   "leave <group-id>",
	Short: "Remove a user from a group",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withStore(cmd, func(s *store.Store) (any, error) {
			user, _ := cmd.Flags().GetString("user")
			return s.LeaveGroup(args[0], user)
		})
	},
}

func init() {
	rootCmd.AddCommand(groupsCmd)
	groupsCmd.AddCommand(groupsCreateCmd, groupsListCmd, groupsOpenCmd, groupsReportCmd, groupsJoinCmd, groupsLeaveCmd)

	groupsCreateCmd.Flags().String("admin", "", "id of the user who administers the group")
	groupsCreateCmd.Flags().String("name", "", "group name")
	groupsCreateCmd.Flags().String("description", "", "group description")
	groupsCreateCmd.Flags().String("activity", "", "activity label the group is about")
	groupsCreateCmd.Flags().String("location", "", "group location")
	groupsCreateCmd.Flags().Int("max-members", 10, "maximum number of members")
	groupsCreateCmd.Flags().String("age-group", records.AllAges, `age group: "All Ages", "N+", "A-B" or "N"`)
	for _, name := range []string{"admin", "name", "location"} {
		groupsCreateCmd.MarkFlagRequired(name)
	}

	groupsReportCmd.Flags().Bool("dump", false, "dump the whole catalog to a temporary file instead")

	addPageFlags(groupsListCmd)
	addPageFlags(groupsOpenCmd)

	for _, c := range []*cobra.Command{groupsJoinCmd, groupsLeaveCmd} {
		c.Flags().String("user", "", "id of the user")
		c.MarkFlagRequired("user")
	}
}
