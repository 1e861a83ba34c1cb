package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/coursetrail/internal/course"
	"github.com/abhisek/coursetrail/internal/progress"
	"github.com/abhisek/coursetrail/internal/ui/table"
	"github.com/abhisek/coursetrail/internal/ui/theme"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <course-file>",
	Short: "Show unit and course status for the learner's progress",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(cmd *cobra.Command, args []string, e *env) error {
		permissive, _ := cmd.Flags().GetBool("permissive")
		asJSON, _ := cmd.Flags().GetBool("json")
		snapshotPath, _ := cmd.Flags().GetString("snapshot")

		c, err := loadCourse(args[0], permissive)
		if err != nil {
			return err
		}

		snap, err := e.loadSnapshot(cmd, c.ID, snapshotPath)
		if err != nil {
			return err
		}

		result := progress.NewEngine(c, e.cfg.EngineOptions()).Evaluate(snap)
		e.logger.Info("evaluated course",
			zap.String("course", c.ID),
			zap.Int("units", len(result.Units)),
			zap.String("status", string(result.Course.Status)))

		if asJSON {
			return writeJSON(cmd.OutOrStdout(), result)
		}
		fmt.Fprint(cmd.OutOrStdout(), renderEvaluation(result))
		return nil
	}),
}

func init() {
	evaluateCmd.Flags().Bool("json", false, "Print the full evaluation as JSON")
	evaluateCmd.Flags().Bool("permissive", false, "Skip course validation (cycles and dangling prerequisites are evaluated as-is)")
	evaluateCmd.Flags().String("snapshot", "", "Read progress from a JSON snapshot file instead of the database")
}

// loadCourse reads a course file and, unless permissive, validates it.
func loadCourse(path string, permissive bool) (course.Course, error) {
	c, err := course.LoadFile(path)
	if err != nil {
		return course.Course{}, err
	}
	if !permissive {
		if err := course.Validate(c); err != nil {
			return course.Course{}, err
		}
	}
	return c, nil
}

// loadSnapshot reads progress from path when set, else the latest stored
// snapshot for courseID.
func (e *env) loadSnapshot(cmd *cobra.Command, courseID, path string) (*progress.Snapshot, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read snapshot")
		}
		snap := progress.NewSnapshot()
		if err := json.Unmarshal(data, snap); err != nil {
			return nil, errors.Wrapf(err, "decode snapshot %s", path)
		}
		return snap, nil
	}

	st, err := e.openStore()
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.Progress().LatestOrEmpty(cmd.Context(), courseID)
}

func renderEvaluation(ev progress.Evaluation) string {
	var b strings.Builder
	title := ev.Course.ID
	if ev.Course.Title != "" {
		title = ev.Course.Title
	}
	fmt.Fprintf(&b, "%s  %s\n\n",
		theme.Title.Render(title),
		theme.Status(string(ev.Course.Status)).Render(ev.Course.Status.Label()))

	t := table.New("UNIT", "STATUS", "MASTERED", "AVG", "MOVE ON", "WAITING ON")
	for _, u := range ev.Ordered() {
		t.Cells(
			table.Cell{Text: u.UnitID},
			table.Cell{Text: u.Status.Label(), Style: theme.Status(string(u.Status))},
			table.Cell{Text: fmt.Sprintf("%d/%d", u.Objectives.Mastered, u.Objectives.Total)},
			table.Cell{Text: fmt.Sprintf("%.2f", u.Objectives.MasteryAverage)},
			table.Cell{Text: string(u.MoveOn.Criteria)},
			table.Cell{Text: waitingOn(u.Prerequisites), Style: theme.Hint},
		)
	}
	b.WriteString(t.String())

	counts := ev.Counts()
	var parts []string
	for _, s := range []progress.Status{progress.StatusPassed, progress.StatusCompleted, progress.StatusInProgress, progress.StatusAvailable, progress.StatusLocked} {
		if n := counts[s]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, strings.ToLower(s.Label())))
		}
	}
	if len(parts) > 0 {
		fmt.Fprintf(&b, "\n%s\n", theme.Hint.Render(strings.Join(parts, " · ")))
	}
	return b.String()
}

// waitingOn lists unmet prerequisites, marking ids absent from the course.
func waitingOn(p progress.PrerequisiteFacts) string {
	ids := make([]string, 0, len(p.Unmet))
	for _, id := range p.Unmet {
		if slices.Contains(p.Missing, id) {
			id += " (missing)"
		}
		ids = append(ids, id)
	}
	return strings.Join(ids, ", ")
}
