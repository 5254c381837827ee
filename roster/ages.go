package roster

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/robfig/cron/v3"

	"github.com/HamilaStartZup/TrappesBackEnd-repo/importer"
)

// refreshAge re-derives the age field from the record's stored birth
// date. A missing or invalid birth date clears the age.
func refreshAge(record *core.Record) {
	age, ok := importer.AgeFromBirthDate(record.GetString("birth_date"), time.Now())
	if !ok {
		record.Set("age", nil)
		return
	}
	record.Set("age", age)
}

// AgeSweeper keeps stored ages aligned with birth dates as time
// passes: one full sweep at startup, then one every local midnight.
type AgeSweeper struct {
	app  core.App
	cron *cron.Cron

	mu      sync.Mutex
	running bool
}

// NewAgeSweeper creates an age sweeper.
func NewAgeSweeper(app core.App) *AgeSweeper {
	return &AgeSweeper{
		app:  app,
		cron: cron.New(),
	}
}

// Start schedules the daily sweep and runs the initial one in the
// background. Sweep failures are logged, never fatal.
func (s *AgeSweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("age sweeper already running")
	}

	if _, err := s.cron.AddFunc("0 0 * * *", s.runSweep); err != nil {
		return fmt.Errorf("adding daily age sweep schedule: %w", err)
	}

	s.cron.Start()
	s.running = true

	go s.runSweep()

	slog.Info("Age sweeper started")
	return nil
}

// Stop gracefully stops the scheduler.
func (s *AgeSweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	slog.Info("Age sweeper stopped")
}

func (s *AgeSweeper) runSweep() {
	slog.Info("Starting age sweep")
	start := time.Now()

	updated := 0
	for _, collection := range []string{"members", "employees"} {
		n, err := s.sweepCollection(collection)
		if err != nil {
			slog.Error("Age sweep failed", "collection", collection, "error", err)
			continue
		}
		updated += n
	}

	slog.Info("Age sweep finished", "updated", updated, "duration", time.Since(start).Round(time.Millisecond))
}

// sweepCollection recomputes the age of every record with a birth
// date, saving only those whose age changed.
func (s *AgeSweeper) sweepCollection(collection string) (int, error) {
	records, err := s.app.FindAllRecords(collection)
	if err != nil {
		return 0, fmt.Errorf("loading %s: %w", collection, err)
	}

	updated := 0
	for _, record := range records {
		age, ok := importer.AgeFromBirthDate(record.GetString("birth_date"), time.Now())
		if !ok || record.GetInt("age") == age {
			continue
		}
		record.Set("age", age)
		if err := s.app.Save(record); err != nil {
			slog.Warn("Failed to refresh age", "collection", collection, "id", record.Id, "error", err)
			continue
		}
		updated++
	}
	return updated, nil
}
