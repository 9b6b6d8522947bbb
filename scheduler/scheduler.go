package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"feedsyncd/models"
	"feedsyncd/syncer"
)

const (
	catchUpDelay    = 5 * time.Second
	commandInterval = 5 * time.Second

	// How long a feed with an unusable schedule waits before it is
	// considered due again.
	badScheduleRetry = time.Hour
)

// ScheduleStore selects due feeds and persists run bookkeeping.
type ScheduleStore interface {
	ListDueFeeds(ctx context.Context, now time.Time) ([]models.SyncFeed, error)
	UpdateFeedSchedule(ctx context.Context, feedID int64, lastRun, nextRun time.Time) error
}

// OpsStore is the local command queue polled for manual triggers.
type OpsStore interface {
	GetPendingCommands() ([]models.Command, error)
	MarkCommandProcessed(id int64) error
}

// Runner triggers one orchestrated sync pass.
type Runner interface {
	Run(ctx context.Context, trigger models.SyncTrigger, triggeredBy string, feedID *int64) (*syncer.RunResult, error)
}

// Scheduler fires a fixed-interval tick, runs every due feed, and
// recomputes each feed's next run. One instance is constructed at
// process startup; Start is idempotent and may follow a Stop.
type Scheduler struct {
	store  ScheduleStore
	ops    OpsStore
	runner Runner
	cron   *cron.Cron
	tick   time.Duration
	loc    *time.Location
	now    func() time.Time

	mu      sync.Mutex
	started bool
	paused  bool
	stopCh  chan struct{}
}

func New(store ScheduleStore, runner Runner, tick time.Duration, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		store:  store,
		runner: runner,
		tick:   tick,
		loc:    loc,
		now:    time.Now,
	}
}

// SetOpsStore registers the local command queue.
func (s *Scheduler) SetOpsStore(ops OpsStore) {
	s.ops = ops
}

// Start registers the tick and begins processing. Calling it twice is a
// no-op; after Stop it starts fresh.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}

	// A fresh cron and stop channel on every start, so a stopped
	// scheduler can start again without doubling the tick.
	s.cron = cron.New()
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh

	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.tick), func() {
		s.runDue(ctx)
	})
	if err != nil {
		return fmt.Errorf("register tick: %w", err)
	}
	s.cron.Start()
	s.started = true
	log.Printf("[scheduler] started, tick every %s", s.tick)

	// Catch-up pass shortly after startup, covering schedules missed
	// while the process was down.
	go func() {
		select {
		case <-time.After(catchUpDelay):
			s.runDue(ctx)
		case <-stopCh:
		case <-ctx.Done():
		}
	}()

	if s.ops != nil {
		go s.pollCommands(ctx, stopCh)
	}

	return nil
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.cron.Stop()
	close(s.stopCh)
	s.started = false
}

// runDue processes every feed whose next run has elapsed. A feed's
// failure is logged and isolated; its schedule advances regardless so
// a broken feed cannot wedge the tick.
func (s *Scheduler) runDue(ctx context.Context) {
	if s.isPaused() {
		log.Println("[scheduler] schedule paused, skipping tick")
		return
	}

	now := s.now()
	feeds, err := s.store.ListDueFeeds(ctx, now)
	if err != nil {
		log.Printf("[scheduler] list due feeds: %v", err)
		return
	}

	for _, f := range feeds {
		feedID := f.ID
		log.Printf("[scheduler] feed %s due, triggering sync", f.Slug)

		if _, err := s.runner.Run(ctx, models.TriggerScheduled, "scheduler", &feedID); err != nil {
			log.Printf("[scheduler] feed %s: %v", f.Slug, err)
		}

		next, err := ComputeNextRun(f.ScheduleFrequency, f.ScheduleTime, f.ScheduleDayOfWeek, now, s.loc)
		if err != nil {
			// The schedule must still advance: a feed left due would
			// fire a full sync on every tick until someone fixes its
			// configuration.
			log.Printf("[scheduler] feed %s: compute next run: %v, retrying in %s", f.Slug, err, badScheduleRetry)
			next = now.Add(badScheduleRetry)
		}
		if err := s.store.UpdateFeedSchedule(ctx, feedID, now, next); err != nil {
			log.Printf("[scheduler] feed %s: update schedule: %v", f.Slug, err)
		}
	}
}

func (s *Scheduler) pollCommands(ctx context.Context, stopCh <-chan struct{}) {
	ticker := time.NewTicker(commandInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cmds, err := s.ops.GetPendingCommands()
			if err != nil {
				log.Printf("[scheduler] get commands: %v", err)
				continue
			}
			for _, cmd := range cmds {
				if err := s.handleCommand(ctx, &cmd); err != nil {
					log.Printf("[scheduler] command %s: %v", cmd.Command, err)
				}
				if err := s.ops.MarkCommandProcessed(cmd.ID); err != nil {
					log.Printf("[scheduler] mark command processed: %v", err)
				}
			}
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) handleCommand(ctx context.Context, cmd *models.Command) error {
	switch cmd.Command {
	case models.CmdRunSync:
		var params models.CommandParams
		if len(cmd.Params) > 0 {
			if err := json.Unmarshal(cmd.Params, &params); err != nil {
				return fmt.Errorf("decode params: %w", err)
			}
		}
		triggeredBy := params.TriggeredBy
		if triggeredBy == "" {
			triggeredBy = "ops"
		}
		_, err := s.runner.Run(ctx, models.TriggerManual, triggeredBy, params.FeedID)
		return err
	case models.CmdPauseSchedule:
		s.setPaused(true)
		log.Println("[scheduler] schedule paused via command")
		return nil
	case models.CmdResumeSchedule:
		s.setPaused(false)
		log.Println("[scheduler] schedule resumed via command")
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd.Command)
	}
}

func (s *Scheduler) isPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

func (s *Scheduler) setPaused(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = v
}
