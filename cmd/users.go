package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/group-recommender/internal/records"
	"github.com/spigell/group-recommender/internal/store"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage users in the record store",
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		withStore(cmd, func(s *store.Store) (any, error) {
			flags := cmd.Flags()
			id, _ := flags.GetString("id")
			name, _ := flags.GetString("name")
			email, _ := flags.GetString("email")
			age, _ := flags.GetInt("age")
			location, _ := flags.GetString("location")
			interests, _ := flags.GetStringSlice("interest")

			return s.CreateUser(records.User{
				ID:        id,
				Name:      name,
				Email:     email,
				Age:       age,
				Location:  location,
				Interests: interests,
			})
		})
	},
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		withStore(cmd, func(s *store.Store) (any, error) {
			skip, limit := pageFlags(cmd)
			return s.ListUsers(skip, limit)
		})
	},
}

var usersGetCmd = &cobra.Command{
	Use:   "get <user-id>",
	Short: "Show a user",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withStore(cmd, func(s *store.Store) (any, error) {
			return s.GetUser(args[0])
		})
	},
}

var usersLikeCmd = &cobra.Command{
	Use:   "like <user-id>",
	Short: "Like a user on behalf of another user",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withStore(cmd, func(s *store.Store) (any, error) {
			actor, _ := cmd.Flags().GetString("as")
			return s.Like(args[0], actor)
		})
	},
}

var usersUnlikeCmd = &cobra.Command{
	Use:   "unlike <user-id>",
	Short: "Withdraw a like",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withStore(cmd, func(s *store.Store) (any, error) {
			actor, _ := cmd.Flags().GetString("as")
			return s.Unlike(args[0], actor)
		})
	},
}

var usersLikesCmd = &cobra.Command{
	Use:   "likes <user-id>",
	Short: "Print how many users liked a user",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withStore(cmd, func(s *store.Store) (any, error) {
			return s.Likes(args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersCreateCmd, usersListCmd, usersGetCmd, usersLikeCmd, usersUnlikeCmd, usersLikesCmd)

	usersCreateCmd.Flags().String("id", "", "explicit user id; an existing id returns that user")
	usersCreateCmd.Flags().String("name", "", "user name")
	usersCreateCmd.Flags().String("email", "", "user email")
	usersCreateCmd.Flags().Int("age", 0, "user age")
	usersCreateCmd.Flags().String("location", "", "user location")
	usersCreateCmd.Flags().StringSlice("interest", nil, "user interest, may be repeated")
	usersCreateCmd.MarkFlagRequired("name")
	usersCreateCmd.MarkFlagRequired("email")
	usersCreateCmd.MarkFlagRequired("location")

	addPageFlags(usersListCmd)

	for _, c := range []*cobra.Command{usersLikeCmd, usersUnlikeCmd} {
		c.Flags().String("as", "", "id of the user who likes")
		c.MarkFlagRequired("as")
	}
}

// withStore opens the record store, runs fn and prints its result as json.
func withStore(cmd *cobra.Command, fn func(s *store.Store) (any, error)) {
	log := newLogger()

	config, err := getConfig()
	if err != nil {
		log.Fatal("getting a config", zap.Error(err))
	}

	s := openStore(config, log)

	result, err := fn(s)
	if err != nil {
		log.Fatal(cmd.CommandPath(), zap.Error(err))
	}

	if err := printJSON(cmd.OutOrStdout(), result); err != nil {
		log.Fatal("printing the result", zap.Error(err))
	}
}

func addPageFlags(cmd *cobra.Command) {
	cmd.Flags().Int("skip", 0, "number of records to skip")
	cmd.Flags().Int("limit", store.DefaultPageLimit, "maximum number of records to print")
}

func pageFlags(cmd *cobra.Command) (int, int) {
	skip, _ := cmd.Flags().GetInt("skip")
	limit, _ := cmd.Flags().GetInt("limit")
	return skip, limit
}
