package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tilinna/clock"

	"github.com/abhisek/coursetrail/internal/spacedrep"
	"github.com/abhisek/coursetrail/internal/statement"
	"github.com/abhisek/coursetrail/internal/store"
	"github.com/abhisek/coursetrail/internal/ui/table"
	"github.com/abhisek/coursetrail/internal/ui/theme"
)

func newScheduler(e *env, st *store.Store) *spacedrep.Service {
	repos := spacedrep.Repos{Items: st.Items(), Log: st.Statements(), Atomic: st.ReviewTx}
	return spacedrep.NewService(repos, clock.Realtime(), e.logger.Named("spacedrep"), e.cfg.MilestoneConfig())
}

var reviewCmd = &cobra.Command{
	Use:   "review <item> <again|hard|good|easy>",
	Short: "Record a review of a learning item",
	Args:  cobra.ExactArgs(2),
	RunE: withStore(func(cmd *cobra.Command, args []string, e *env, st *store.Store) error {
		rating, err := spacedrep.ParseRating(args[1])
		if err != nil {
			return err
		}
		activity, _ := cmd.Flags().GetString("activity")
		correct, _ := cmd.Flags().GetBool("correct")
		if !cmd.Flags().Changed("correct") {
			correct = rating != spacedrep.Again
		}
		actor, err := e.actor()
		if err != nil {
			return err
		}

		res, err := newScheduler(e, st).Review(cmd.Context(), spacedrep.ReviewInput{
			ItemID:       args[0],
			Rating:       rating,
			ActivityType: activity,
			Correct:      correct,
			Actor:        actor,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s  %s -> %s, next review in %s (%s)\n",
			theme.Title.Render(res.Item.ItemID),
			res.Prior.State, res.Item.State,
			plural(res.Item.ScheduledDays, "day"),
			res.Item.NextReview.Local().Format(time.DateOnly))
		fmt.Fprintf(out, "mastery %.2f -> %.2f, stability %.2f, difficulty %.2f\n",
			res.PreviousMastery, res.Mastery, res.Item.Stability, res.Item.Difficulty)
		if res.Milestone != spacedrep.MilestoneNone {
			fmt.Fprintln(out, theme.Status("passed").Render("milestone: "+string(res.Milestone)))
		}
		return nil
	}),
}

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List items due for review",
	RunE: withStore(func(cmd *cobra.Command, args []string, e *env, st *store.Store) error {
		beforeFlag, _ := cmd.Flags().GetString("before")
		contains, _ := cmd.Flags().GetString("contains")
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")

		now := time.Now()
		before, err := parseBefore(beforeFlag, now)
		if err != nil {
			return err
		}

		due, err := newScheduler(e, st).Due(cmd.Context(), spacedrep.DueQuery{Before: before, Contains: contains, Limit: limit})
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(cmd.OutOrStdout(), due)
		}
		if len(due) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), theme.Hint.Render("nothing due"))
			return nil
		}

		t := table.New("ITEM", "STATE", "DUE", "STABILITY", "MASTERY")
		for _, it := range due {
			t.Row(it.ItemID, it.State.String(),
				it.NextReview.Local().Format("2006-01-02 15:04"),
				fmt.Sprintf("%.2f", it.Stability),
				fmt.Sprintf("%.2f", spacedrep.Mastery(it, now)))
		}
		fmt.Fprint(cmd.OutOrStdout(), t.String())
		return nil
	}),
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded statements, newest first",
	RunE: withStore(func(cmd *cobra.Command, args []string, e *env, st *store.Store) error {
		prefix, _ := cmd.Flags().GetString("object-prefix")
		verb, _ := cmd.Flags().GetString("verb")
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")

		if verb != "" && !strings.Contains(verb, "://") {
			verb = "http://adlnet.gov/expapi/verbs/" + verb
		}
		records, err := st.Statements().Query(cmd.Context(), store.StatementQuery{
			ObjectPrefix: prefix,
			Verb:         verb,
			Limit:        limit,
		})
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(cmd.OutOrStdout(), records)
		}

		t := table.New("SEQ", "TIME", "VERB", "OBJECT", "SCORE")
		for _, s := range records {
			score := ""
			if s.Result != nil && s.Result.Score != nil {
				score = fmt.Sprintf("%.2f", *s.Result.Score)
			}
			t.Row(fmt.Sprint(s.Sequence), s.Timestamp.Local().Format("2006-01-02 15:04:05"),
				s.Verb.Display, s.Object.ID, score)
		}
		fmt.Fprint(cmd.OutOrStdout(), t.String())
		return nil
	}),
}

func init() {
	reviewCmd.Flags().String("activity", "", "Activity type used for the review (e.g. quiz, flashcard)")
	reviewCmd.Flags().Bool("correct", false, "Whether the response was correct (default: rating is not again)")

	dueCmd.Flags().String("before", "", "Cutoff as RFC 3339 time, date, or duration from now (e.g. 48h)")
	dueCmd.Flags().String("contains", "", "Only items whose id contains this text")
	dueCmd.Flags().Int("limit", 0, "Maximum number of items (0 = all)")
	dueCmd.Flags().Bool("json", false, "Print items as JSON")

	historyCmd.Flags().String("object-prefix", "", "Only statements whose object id starts with this (e.g. "+statement.ItemPrefix+")")
	historyCmd.Flags().String("verb", "", "Only statements with this verb (name or IRI)")
	historyCmd.Flags().Int("limit", 20, "Maximum number of statements (0 = all)")
	historyCmd.Flags().Bool("json", false, "Print statements as JSON")
}

// parseBefore accepts an RFC 3339 timestamp, a date, or a duration added
// to now. Empty means now.
func parseBefore(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return now.Add(d), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, now.Location()); err == nil {
		return t.Add(24*time.Hour - time.Nanosecond), nil
	}
	return time.Time{}, errors.Errorf("--before %q: want RFC 3339 time, YYYY-MM-DD or duration", s)
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
