package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/group-recommender/internal/logger"
	"github.com/spigell/group-recommender/internal/records"
	"github.com/spigell/group-recommender/internal/store"
)

const promptSkip = "Do not join anything"

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Rank groups for a user and print them as json",
	Run: func(cmd *cobra.Command, _ []string) {
		recommend(cmd)
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().StringP("user", "u", "", "id of the user to recommend groups for")
	recommendCmd.Flags().IntP("limit", "l", 0, "maximum number of groups to return")
	recommendCmd.Flags().StringP("mode", "m", "", "scoring mode: semantic or keyword")
	recommendCmd.Flags().Bool("open-only", false, "only recommend groups with free seats")
	recommendCmd.Flags().StringP("exclude-file", "e", "", "file with groups that must never be recommended")
	recommendCmd.Flags().BoolP("interactive", "i", false, "pick a recommended group to join")
	recommendCmd.MarkFlagRequired("user")

	viper.BindPFlag("recommend.limit", recommendCmd.Flags().Lookup("limit"))
	viper.BindPFlag("scoring.mode", recommendCmd.Flags().Lookup("mode"))
	viper.BindPFlag("recommend.open-only", recommendCmd.Flags().Lookup("open-only"))
	viper.BindPFlag("recommend.exclude-file", recommendCmd.Flags().Lookup("exclude-file"))
}

func recommend(cmd *cobra.Command) {
	ctx := context.Background()
	log := newLogger()

	config, err := getConfig()
	if err != nil {
		log.Fatal("getting a config", zap.Error(err))
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	log.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	userID, _ := cmd.Flags().GetString("user")
	log = log.With(zap.String(logger.FieldUserID, userID))

	s := openStore(config, log)

	user, err := s.GetUser(userID)
	if err != nil {
		log.Fatal("getting the user", zap.Error(err))
	}

	catalog, err := s.Groups()
	if err != nil {
		log.Fatal("getting groups", zap.Error(err))
	}

	eng, err := newEngine(ctx, config, log)
	if err != nil {
		log.Fatal("building the recommendation engine", zap.Error(err))
	}
	defer eng.Close()

	log.Info("ranking groups",
		zap.Int("catalog", catalog.Len()),
		zap.Int("limit", config.Recommend.Limit),
		zap.Bool("open_only", config.Recommend.OpenOnly),
		zap.Bool("require_positive", eng.ranker.Policy().RequirePositive),
	)
	statuses, err := eng.ranker.FilterStatuses()
	if err != nil {
		log.Fatal("configuring filters", zap.Error(err))
	}
	for _, status := range statuses {
		log.Debug("filter",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
		)
	}

	recs, err := eng.ranker.Recommend(ctx, user, catalog, config.Recommend.Limit)
	if err != nil {
		log.Fatal("ranking groups", zap.Error(err))
	}

	if config.Metrics != nil {
		if err := eng.writeMetrics(config.Metrics.Textfile); err != nil {
			log.Warn("metrics are not exported", zap.Error(err))
		}
	}

	if err := printJSON(cmd.OutOrStdout(), recs); err != nil {
		log.Fatal("printing recommendations", zap.Error(err))
	}

	log.Info("recommendations ready", zap.Int("count", len(recs)))

	if interactive, _ := cmd.Flags().GetBool("interactive"); !interactive || len(recs) == 0 {
		return
	}

	if err := joinInteractively(s, user, recs, log); err != nil {
		log.Fatal("joining a group", zap.Error(err))
	}
}

func joinInteractively(s *store.Store, user *records.User, recs []records.Recommendation, log *zap.Logger) error {
	items := make([]string, 0, len(recs)+1)
	for _, r := range recs {
		items = append(items, fmt.Sprintf("%s %s [%s, %s] score=%d", r.ID, r.Name, r.Activity, r.Location, r.RelevanceScore))
	}
	items = append(items, promptSkip)

	prompt := promptui.Select{
		Label: "Join a group?",
		Items: items,
		Size:  10,
	}

	_, selected, err := prompt.Run()
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return nil
	}
	if err != nil {
		return err
	}
	if selected == promptSkip {
		log.Info("exiting", zap.String("reason", "nothing selected"))
		return nil
	}

	groupID := strings.Split(selected, " ")[0]
	group, err := s.JoinGroup(groupID, user.ID)
	if err != nil {
		return err
	}

	log.Info("joined the group",
		zap.String("group_id", group.ID),
		zap.String("group_name", group.Name),
		zap.Int("members", len(group.Members)),
	)
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
