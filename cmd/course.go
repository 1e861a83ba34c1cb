package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/coursetrail/internal/course"
)

var validateCmd = &cobra.Command{
	Use:   "validate <course-file>",
	Short: "Check a course definition for structural problems",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadCourse(args[0], false)
		if err != nil {
			return err
		}
		objectives := 0
		for _, u := range c.Units {
			objectives += len(u.Objectives)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d units, %d objectives)\n", c.ID, len(c.Units), objectives)
		return nil
	},
}

var flattenCmd = &cobra.Command{
	Use:   "flatten <tree-file>",
	Short: "Convert a hierarchical course into the flat unit list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asYAML, _ := cmd.Flags().GetBool("yaml")

		data, err := os.ReadFile(args[0])
		if err != nil {
			return errors.Wrap(err, "read course file")
		}
		root, err := course.ParseTree(data, course.FormatFromPath(args[0]))
		if err != nil {
			return err
		}
		flat := course.Flatten(root)

		if !asYAML {
			return writeJSON(cmd.OutOrStdout(), flat)
		}
		// Round-trip through JSON so the YAML keys follow the json tags.
		b, err := json.Marshal(flat)
		if err != nil {
			return errors.Wrap(err, "encode course")
		}
		var generic map[string]any
		if err := json.Unmarshal(b, &generic); err != nil {
			return errors.Wrap(err, "encode course")
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(generic)
	},
}

func init() {
	flattenCmd.Flags().Bool("yaml", false, "Print YAML instead of JSON")
}
