package progress

// AggregateStatus derives the course status from unit statuses given in
// course order. The rules form a priority cascade, first match wins:
//
//   - every unit locked -> locked
//   - every unit passed -> passed
//   - every unit completed or passed -> completed
//   - any unit in progress, or a finished unit alongside a locked or
//     available one -> in-progress
//   - any unit available -> available
//   - otherwise -> locked
//
// A course without units is locked.
func AggregateStatus(statuses []Status) Status {
	if allMatch(statuses, func(s Status) bool { return s == StatusLocked }) {
		return StatusLocked
	}
	if allMatch(statuses, func(s Status) bool { return s == StatusPassed }) {
		return StatusPassed
	}
	if allMatch(statuses, Status.IsFinished) {
		return StatusCompleted
	}

	var inProgress, finished, pending, available bool
	for _, s := range statuses {
		switch s {
		case StatusInProgress:
			inProgress = true
		case StatusCompleted, StatusPassed:
			finished = true
		case StatusAvailable:
			pending, available = true, true
		case StatusLocked:
			pending = true
		}
	}

	switch {
	case inProgress, finished && pending:
		return StatusInProgress
	case available:
		return StatusAvailable
	default:
		return StatusLocked
	}
}

func allMatch(statuses []Status, pred func(Status) bool) bool {
	for _, s := range statuses {
		if !pred(s) {
			return false
		}
	}
	return true
}
