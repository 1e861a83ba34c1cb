package cmd

import (
	"fmt"
	"slices"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/coursetrail/internal/course"
	"github.com/abhisek/coursetrail/internal/progress"
	"github.com/abhisek/coursetrail/internal/statement"
	"github.com/abhisek/coursetrail/internal/store"
)

// keepSnapshots is how many progress snapshots are retained per course.
const keepSnapshots = 20

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Record or show learner progress in a course",
}

// progressEdit is the state a progress subcommand mutates.
type progressEdit struct {
	course course.Course
	snap   *progress.Snapshot
	actor  statement.Actor
	now    time.Time
	opts   progress.Options
}

// progressChange mutates edit.snap and returns the statements describing
// the change. An empty result with a nil error means nothing changed.
type progressChange func(edit *progressEdit) ([]statement.Statement, error)

// mutateProgress applies change to the latest snapshot of the course named
// by --course. The new snapshot and every statement describing the change,
// including units that became passed, are written in one transaction.
func mutateProgress(cmd *cobra.Command, change progressChange) error {
	return withStore(func(cmd *cobra.Command, args []string, e *env, st *store.Store) error {
		ctx := cmd.Context()
		path, _ := cmd.Flags().GetString("course")
		c, err := loadCourse(path, true)
		if err != nil {
			return err
		}
		actor, err := e.actor()
		if err != nil {
			return err
		}

		engine := progress.NewEngine(c, e.cfg.EngineOptions())
		now := time.Now().UTC()
		var (
			records  []statement.Statement
			unlocked []string
		)
		err = st.WithTx(ctx, func(tx *store.Tx) error {
			snap, err := tx.Progress().LatestOrEmpty(ctx, c.ID)
			if err != nil {
				return err
			}
			before := engine.Evaluate(snap)
			records, err = change(&progressEdit{course: c, snap: snap, actor: actor, now: now, opts: e.cfg.EngineOptions()})
			if err != nil || len(records) == 0 {
				return err
			}

			after := engine.Evaluate(snap)
			var passed []statement.Statement
			passed, unlocked = outcomes(engine.Index(), before, after, actor, now)
			records = append(records, passed...)

			if err := tx.Progress().Save(ctx, &store.ProgressSnapshot{CourseID: c.ID, Timestamp: now, Data: snap}); err != nil {
				return err
			}
			for i := range records {
				if err := tx.Statements().Append(ctx, &records[i]); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no change")
			return nil
		}
		if err := st.Progress().Prune(ctx, c.ID, keepSnapshots); err != nil {
			e.logger.Warn("prune progress snapshots", zap.Error(err))
		}

		for _, r := range records {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", r.Verb.Display, r.Object.ID)
		}
		for _, id := range unlocked {
			fmt.Fprintf(cmd.OutOrStdout(), "unlocked %s\n", statement.UnitObjectID(c.ID, id))
		}
		return nil
	})(cmd, nil)
}

// outcomes compares evaluations around a change. It returns a passed
// statement per unit that reached the passed status, and the dependents
// of newly finished units that are no longer locked.
func outcomes(ix *course.Index, before, after progress.Evaluation, actor statement.Actor, now time.Time) ([]statement.Statement, []string) {
	var (
		passed   []statement.Statement
		unlocked []string
	)
	for _, ch := range after.Changes(before) {
		if ch.To == progress.StatusPassed {
			avg := after.Units[ch.UnitID].Pass.AverageMastery
			passed = append(passed, statement.UnitPassed(actor, ix.CourseID(), ch.UnitID, avg, now))
		}
		if !ch.To.IsFinished() || ch.From.IsFinished() {
			continue
		}
		for _, dep := range ix.Dependents(ch.UnitID) {
			if before.Units[dep].Status == progress.StatusLocked &&
				after.Units[dep].Status != progress.StatusLocked &&
				!slices.Contains(unlocked, dep) {
				unlocked = append(unlocked, dep)
			}
		}
	}
	return passed, unlocked
}

// masteryScore returns the effective mastery score of the objective that
// key resolves to, or the configured default when no objective matches.
func (edit *progressEdit) masteryScore(key string) float64 {
	def := edit.opts.DefaultMasteryScore
	if def == 0 {
		def = course.DefaultMasteryScore
	}
	for _, u := range edit.course.Units {
		for _, o := range u.Objectives {
			if slices.Contains(o.LookupKeys(), key) {
				return progress.EffectiveMasteryScore(o, u, def)
			}
		}
	}
	return def
}

func requireUnit(c course.Course, id string) error {
	if course.BuildIndex(c).Has(id) {
		return nil
	}
	return errors.Errorf("course %q has no unit %q", c.ID, id)
}

var progressCompleteCmd = &cobra.Command{
	Use:   "complete <unit>",
	Short: "Mark a unit completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		unitID := args[0]
		return mutateProgress(cmd, func(edit *progressEdit) ([]statement.Statement, error) {
			c, snap, actor, now := edit.course, edit.snap, edit.actor, edit.now
			if err := requireUnit(c, unitID); err != nil {
				return nil, err
			}
			if !snap.MarkCompleted(unitID) {
				return nil, nil
			}
			return []statement.Statement{statement.UnitCompleted(actor, c.ID, unitID, now)}, nil
		})
	},
}

var progressCurrentCmd = &cobra.Command{
	Use:   "current <unit>",
	Short: "Set the learner's active unit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		unitID := args[0]
		return mutateProgress(cmd, func(edit *progressEdit) ([]statement.Statement, error) {
			c, snap, actor, now := edit.course, edit.snap, edit.actor, edit.now
			if err := requireUnit(c, unitID); err != nil {
				return nil, err
			}
			if snap.CurrentUnit == unitID {
				return nil, nil
			}
			snap.SetCurrent(unitID)
			return []statement.Statement{statement.UnitLaunched(actor, c.ID, unitID, now)}, nil
		})
	},
}

var progressObjectiveCmd = &cobra.Command{
	Use:   "objective <objective-id>",
	Short: "Record an objective attempt",
	Long: "Record an objective attempt. The id may be the objective id or any of its " +
		"alternate keys. Without --satisfied, satisfaction is derived from the mastery score.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		mastery, _ := cmd.Flags().GetFloat64("mastery")
		var satisfied *bool
		if cmd.Flags().Changed("satisfied") {
			v, _ := cmd.Flags().GetBool("satisfied")
			satisfied = &v
		}
		if mastery < 0 || mastery > 1 {
			return errors.Errorf("--mastery %v outside [0,1]", mastery)
		}

		return mutateProgress(cmd, func(edit *progressEdit) ([]statement.Statement, error) {
			c, snap, actor, now := edit.course, edit.snap, edit.actor, edit.now
			rec := snap.RecordObjective(key, mastery, satisfied, now)
			ok := rec.Mastery >= edit.masteryScore(key)
			if rec.Satisfied != nil {
				ok = *rec.Satisfied
			}
			return []statement.Statement{statement.ObjectiveResult(actor, c.ID, key, rec.Mastery, ok, now)}, nil
		})
	},
}

var progressSignalCmd = &cobra.Command{
	Use:   "signal <unit>",
	Short: "Record that a unit's content or exercises were finished",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		unitID := args[0]
		content, _ := cmd.Flags().GetBool("content")
		exercises, _ := cmd.Flags().GetBool("exercises")
		if !content && !exercises {
			return errors.New("pass --content, --exercises or both")
		}

		return mutateProgress(cmd, func(edit *progressEdit) ([]statement.Statement, error) {
			c, snap, actor, now := edit.course, edit.snap, edit.actor, edit.now
			if err := requireUnit(c, unitID); err != nil {
				return nil, err
			}
			sig := snap.Signals[unitID]
			before := sig
			sig.ContentCompleted = sig.ContentCompleted || content
			sig.ExercisesCompleted = sig.ExercisesCompleted || exercises
			if sig == before {
				return nil, nil
			}
			snap.SetSignal(unitID, sig)
			st := statement.New(actor, statement.Progressed,
				statement.Object{ID: statement.UnitObjectID(c.ID, unitID), Type: statement.TypeUnit},
				&statement.Result{Extensions: map[string]any{
					statement.ExtContentCompleted:   sig.ContentCompleted,
					statement.ExtExercisesCompleted: sig.ExercisesCompleted,
				}}, now)
			return []statement.Statement{st}, nil
		})
	},
}

var progressShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the latest progress snapshot as JSON",
	RunE: withStore(func(cmd *cobra.Command, args []string, e *env, st *store.Store) error {
		path, _ := cmd.Flags().GetString("course")
		c, err := loadCourse(path, true)
		if err != nil {
			return err
		}
		snap, err := st.Progress().LatestOrEmpty(cmd.Context(), c.ID)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), snap)
	}),
}

func init() {
	progressCmd.PersistentFlags().String("course", "", "Course definition file")
	_ = progressCmd.MarkPersistentFlagRequired("course")

	progressObjectiveCmd.Flags().Float64("mastery", 0, "Mastery score in [0,1]")
	progressObjectiveCmd.Flags().Bool("satisfied", false, "Stored satisfaction verdict (overrides the derived one)")
	_ = progressObjectiveCmd.MarkFlagRequired("mastery")

	progressSignalCmd.Flags().Bool("content", false, "Content was completed")
	progressSignalCmd.Flags().Bool("exercises", false, "Exercises were completed")

	progressCmd.AddCommand(progressCompleteCmd)
	progressCmd.AddCommand(progressCurrentCmd)
	progressCmd.AddCommand(progressObjectiveCmd)
	progressCmd.AddCommand(progressSignalCmd)
	progressCmd.AddCommand(progressShowCmd)
}
