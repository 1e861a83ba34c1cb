package progress

import (
	"github.com/pkg/errors"

	"github.com/abhisek/coursetrail/internal/course"
)

// PrerequisitePolicy decides which pass-1 fact satisfies a prerequisite.
type PrerequisitePolicy string

const (
	// PrerequisiteCompletion requires the prerequisite unit to be complete.
	PrerequisiteCompletion PrerequisitePolicy = "completion"
	// PrerequisiteMoveOn requires the prerequisite's move-on criteria.
	PrerequisiteMoveOn PrerequisitePolicy = "moveOn"
)

// MissingPrerequisitePolicy decides how a prerequisite id that names no
// unit of the course is treated.
type MissingPrerequisitePolicy string

const (
	MissingLock   MissingPrerequisitePolicy = "lock"
	MissingIgnore MissingPrerequisitePolicy = "ignore"
)

// Options tunes evaluation. Zero values select the defaults.
type Options struct {
	DefaultMasteryScore  float64                   // zero -> 0.8
	Prerequisites        PrerequisitePolicy        // "" -> completion
	MissingPrerequisites MissingPrerequisitePolicy // "" -> lock
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		DefaultMasteryScore:  course.DefaultMasteryScore,
		Prerequisites:        PrerequisiteCompletion,
		MissingPrerequisites: MissingLock,
	}
}

// withDefaults fills zero-valued fields.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.DefaultMasteryScore == 0 {
		o.DefaultMasteryScore = d.DefaultMasteryScore
	}
	o.DefaultMasteryScore = clamp01(o.DefaultMasteryScore)
	if o.Prerequisites == "" {
		o.Prerequisites = d.Prerequisites
	}
	if o.MissingPrerequisites == "" {
		o.MissingPrerequisites = d.MissingPrerequisites
	}
	return o
}

// ParsePrerequisitePolicy converts a configuration string into a policy.
func ParsePrerequisitePolicy(s string) (PrerequisitePolicy, error) {
	switch p := PrerequisitePolicy(s); p {
	case "":
		return PrerequisiteCompletion, nil
	case PrerequisiteCompletion, PrerequisiteMoveOn:
		return p, nil
	}
	return "", errors.Errorf("unknown prerequisite policy %q (want completion or moveOn)", s)
}

// ParseMissingPrerequisitePolicy converts a configuration string into a policy.
func ParseMissingPrerequisitePolicy(s string) (MissingPrerequisitePolicy, error) {
	switch p := MissingPrerequisitePolicy(s); p {
	case "":
		return MissingLock, nil
	case MissingLock, MissingIgnore:
		return p, nil
	}
	return "", errors.Errorf("unknown missing prerequisite policy %q (want lock or ignore)", s)
}
