package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Refresher starts a refresh of the cached new-books feed. It returns the
// queued task ID, or an empty ID when the refresh ran inline.
type Refresher interface {
	RefreshNewBooks(ctx context.Context) (string, error)
}

// StatusRecorder persists the outcome of every scheduled run.
type StatusRecorder interface {
	RecordRefreshStatus(ctx context.Context, status RefreshStatus) error
}

// RefreshStatus describes the last scheduled run.
type RefreshStatus struct {
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	Status    string     `json:"status,omitempty"` // "success", "failed", ""
	Message   string     `json:"message,omitempty"`
	TaskID    string     `json:"task_id,omitempty"`
}

// RefreshScheduler periodically refreshes the cached new-books feed.
type RefreshScheduler struct {
	refresher Refresher
	recorder  StatusRecorder
	schedule  string
	timeout   time.Duration

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	refreshing bool
	status     RefreshStatus
	stopCh     chan struct{}
}

// NewRefreshScheduler creates a new scheduler instance.
func NewRefreshScheduler(refresher Refresher, schedule string) *RefreshScheduler {
	return &RefreshScheduler{
		refresher: refresher,
		schedule:  schedule,
		timeout:   5 * time.Minute,
		cron:      cron.New(cron.WithParser(newParser())),
	}
}

// WithRecorder makes every run report its outcome to r. The last recorded
// status is not loaded back; pass it to RestoreStatus.
func (s *RefreshScheduler) WithRecorder(r StatusRecorder) *RefreshScheduler {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recorder = r
	return s
}

// RestoreStatus seeds Status with the outcome of a run from a previous process.
func (s *RefreshScheduler) RestoreStatus(status RefreshStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// Start begins the scheduler. It stops on its own once ctx is done.
func (s *RefreshScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, s.runRefresh)
	if err != nil {
		return fmt.Errorf("failed to schedule refresh job: %w", err)
	}
	s.entryID = entryID

	stop := make(chan struct{})
	s.stopCh = stop

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := NextRunTime(s.schedule)
	log.Printf("[scheduler] Refresh started with schedule '%s' (%s). Next run: %v",
		s.schedule, CronDescription(s.schedule), nextRun)

	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-stop:
		}
	}()

	return nil
}

// Stop waits for a running refresh and stops the scheduler.
func (s *RefreshScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	c, entryID, stop := s.cron, s.entryID, s.stopCh
	s.stopCh = nil
	s.mu.Unlock()

	// runRefresh takes the lock, so wait for it outside
	<-c.Stop().Done()
	c.Remove(entryID)
	close(stop)

	log.Printf("[scheduler] Refresh stopped")
}

// Reschedule stops the scheduler and, when enabled, starts it again with
// schedule. An invalid schedule leaves the scheduler untouched.
func (s *RefreshScheduler) Reschedule(ctx context.Context, enabled bool, schedule string) error {
	if enabled {
		if err := ValidateCronSchedule(schedule); err != nil {
			return fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
		}
	}

	s.Stop()

	s.mu.Lock()
	s.schedule = schedule
	s.cron = cron.New(cron.WithParser(newParser()))
	s.mu.Unlock()

	if !enabled {
		return nil
	}
	return s.Start(ctx)
}

// RunNow triggers an immediate refresh in the background.
func (s *RefreshScheduler) RunNow() {
	go s.runRefresh()
}

// IsRunning returns whether the scheduler is active.
func (s *RefreshScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Schedule returns the current cron expression.
func (s *RefreshScheduler) Schedule() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schedule
}

// Status returns the outcome of the last run.
func (s *RefreshScheduler) Status() RefreshStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// NextRunTime returns when the next refresh will occur.
func (s *RefreshScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *RefreshScheduler) runRefresh() {
	s.mu.Lock()
	if s.refreshing {
		s.mu.Unlock()
		log.Printf("[scheduler] Refresh skipped (already running)")
		return
	}
	s.refreshing = true
	recorder := s.recorder
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	startTime := time.Now()
	taskID, err := s.refresher.RefreshNewBooks(ctx)

	status := RefreshStatus{LastRunAt: &startTime, TaskID: taskID}
	switch {
	case err != nil:
		status.Status = "failed"
		status.Message = err.Error()
		log.Printf("[scheduler] Refresh failed: %v", err)
	case taskID != "":
		status.Status = "success"
		status.Message = "refresh enqueued"
		log.Printf("[scheduler] Refresh enqueued as task %s", taskID)
	default:
		status.Status = "success"
		status.Message = fmt.Sprintf("refreshed in %v", time.Since(startTime).Round(time.Millisecond))
		log.Printf("[scheduler] %s", status.Message)
	}

	if recorder != nil {
		if err := recorder.RecordRefreshStatus(ctx, status); err != nil {
			log.Printf("[scheduler] Failed to record refresh status: %v", err)
		}
	}

	s.mu.Lock()
	s.refreshing = false
	s.status = status
	s.mu.Unlock()
}
