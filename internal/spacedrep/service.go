package spacedrep

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/tilinna/clock"
	"go.uber.org/zap"

	"github.com/abhisek/coursetrail/internal/statement"
)

// ItemRepo persists item states.
type ItemRepo interface {
	// Get returns ErrItemNotFound for an unknown id.
	Get(ctx context.Context, itemID string) (ItemState, error)
	Put(ctx context.Context, item ItemState) error
	List(ctx context.Context) ([]ItemState, error)
}

// StatementLog is the append-only log milestone statements are written to.
type StatementLog interface {
	Append(ctx context.Context, s *statement.Statement) error
}

// ReviewInput is one graded review of an item.
type ReviewInput struct {
	ItemID       string
	Rating       Rating
	ActivityType string
	Correct      bool
	Actor        statement.Actor
}

// ReviewResult is the outcome of Service.Review.
type ReviewResult struct {
	Prior           ItemState
	Item            ItemState
	PreviousMastery float64
	Mastery         float64
	Milestone       Milestone
	// Statement is the appended milestone record, nil when no milestone fired.
	Statement *statement.Statement
}

// Atomic runs fn with repositories standing in for the service's items
// and log inside one transaction. When fn returns an error nothing it
// wrote is kept.
type Atomic func(ctx context.Context, fn func(items ItemRepo, log StatementLog) error) error

// Repos is the persistence a Service works against.
type Repos struct {
	Items ItemRepo
	// Log receives milestone statements. Nil skips them.
	Log StatementLog
	// Atomic scopes each review. Nil writes to Items and Log directly.
	Atomic Atomic
}

// Service runs reviews against persisted item state. Each review is a
// read-modify-write of one item inside Repos.Atomic.
type Service struct {
	items  ItemRepo
	log    StatementLog
	atomic Atomic
	clock  clock.Clock
	logger *zap.Logger
	cfg    MilestoneConfig
}

// NewService wires a scheduler service. A nil clock uses real time and a
// nil logger discards output.
func NewService(repos Repos, clk clock.Clock, logger *zap.Logger, cfg MilestoneConfig) *Service {
	if clk == nil {
		clk = clock.Realtime()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		items:  repos.Items,
		log:    repos.Log,
		atomic: repos.Atomic,
		clock:  clk,
		logger: logger,
		cfg:    cfg.withDefaults(),
	}
	if s.atomic == nil {
		s.atomic = func(ctx context.Context, fn func(ItemRepo, StatementLog) error) error {
			return fn(s.items, s.log)
		}
	}
	return s
}

// Review applies in.Rating to the item and, when a milestone fires,
// appends a statement keyed fsrs:<itemId>. The new state and the
// statement are written in one Atomic call: if either write fails the
// item keeps its prior state and the review can be retried.
func (s *Service) Review(ctx context.Context, in ReviewInput) (*ReviewResult, error) {
	if in.ItemID == "" {
		return nil, errors.New("item id is required")
	}
	if !in.Rating.IsValid() {
		return nil, errors.Wrapf(ErrInvalidRating, "%d", int(in.Rating))
	}
	if s.log != nil {
		if err := in.Actor.Validate(); err != nil {
			return nil, err
		}
	}

	var res *ReviewResult
	err := s.atomic(ctx, func(items ItemRepo, log StatementLog) error {
		var err error
		res, err = s.review(ctx, items, log, in)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("review recorded",
		zap.String("item", in.ItemID),
		zap.Stringer("rating", in.Rating),
		zap.Stringer("from", res.Prior.State),
		zap.Stringer("to", res.Item.State),
		zap.Int("scheduled_days", res.Item.ScheduledDays))
	if res.Statement != nil {
		s.logger.Info("milestone emitted",
			zap.String("item", in.ItemID),
			zap.String("milestone", string(res.Milestone)),
			zap.Int64("sequence", res.Statement.Sequence))
	}
	return res, nil
}

func (s *Service) review(ctx context.Context, items ItemRepo, log StatementLog, in ReviewInput) (*ReviewResult, error) {
	prior, err := load(ctx, items, in.ItemID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	next, err := Update(prior, in.Rating, now)
	if err != nil {
		return nil, err
	}
	next = next.WithActivity(in.ActivityType)

	res := &ReviewResult{
		Prior:           prior,
		Item:            next,
		PreviousMastery: Mastery(prior, now),
		Mastery:         Mastery(next, now),
	}
	res.Milestone = Classify(Transition{
		Prior:           prior,
		Next:            next,
		PreviousMastery: res.PreviousMastery,
		Mastery:         res.Mastery,
	}, s.cfg)

	if err := items.Put(ctx, next); err != nil {
		return nil, errors.Wrapf(err, "save item %q", in.ItemID)
	}
	if res.Milestone == MilestoneNone || s.log == nil {
		return res, nil
	}

	st := statement.ForReview(in.Actor, statement.Review{
		ItemID:          in.ItemID,
		Milestone:       string(res.Milestone),
		Rating:          in.Rating.String(),
		ActivityType:    in.ActivityType,
		Correct:         in.Correct,
		PreviousMastery: res.PreviousMastery,
		Mastery:         res.Mastery,
		PreviousState:   prior.State.String(),
		State:           next.State.String(),
		Reps:            next.Reps,
	}, now)
	if err := log.Append(ctx, &st); err != nil {
		return nil, errors.Wrapf(err, "append milestone for %q", in.ItemID)
	}
	res.Statement = &st
	return res, nil
}

// Due returns the items due at q.Before, or now when it is zero.
func (s *Service) Due(ctx context.Context, q DueQuery) ([]ItemState, error) {
	if q.Before.IsZero() {
		q.Before = s.clock.Now()
	}
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list items")
	}
	due := DueItems(items, q)
	s.logger.Debug("due query", zap.Int("items", len(items)), zap.Int("due", len(due)))
	return due, nil
}

// Mastery returns the current decayed mastery of an item.
func (s *Service) Mastery(ctx context.Context, itemID string) (float64, error) {
	item, err := s.items.Get(ctx, itemID)
	if err != nil {
		return 0, err
	}
	return Mastery(item, s.clock.Now()), nil
}

// Preview returns the state each rating would produce for the item now,
// without persisting anything.
func (s *Service) Preview(ctx context.Context, itemID string) (map[Rating]ItemState, error) {
	item, err := load(ctx, s.items, itemID)
	if err != nil {
		return nil, err
	}
	return Preview(item, s.clock.Now()), nil
}

// load returns the stored item, or a fresh one for an unknown id.
func load(ctx context.Context, items ItemRepo, itemID string) (ItemState, error) {
	item, err := items.Get(ctx, itemID)
	switch {
	case errors.Is(err, ErrItemNotFound):
		return NewItem(itemID), nil
	case err != nil:
		return ItemState{}, errors.Wrapf(err, "load item %q", itemID)
	}
	return item, nil
}

// Preview returns the outcome of every rating applied to prior at now.
func Preview(prior ItemState, now time.Time) map[Rating]ItemState {
	out := make(map[Rating]ItemState, 4)
	for r := Again; r <= Easy; r++ {
		next, _ := Update(prior, r, now)
		out[r] = next
	}
	return out
}
