package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/bike-rental-dashboard/internal/export"
	"github.com/i474232898/bike-rental-dashboard/internal/rental"
)

// Scheduler periodically reloads the dataset and exports full-range workbooks.
type Scheduler struct {
	scheduler      *gocron.Scheduler
	service        *rental.Service
	reloadInterval time.Duration
	exportInterval time.Duration
	exportDir      string
}

// New creates a new Scheduler. A zero interval disables the matching job;
// an empty exportDir disables exports.
func New(service *rental.Service, reloadInterval, exportInterval time.Duration, exportDir string) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler:      s,
		service:        service,
		reloadInterval: reloadInterval,
		exportInterval: exportInterval,
		exportDir:      exportDir,
	}
}

// Start schedules the periodic jobs and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	scheduled := 0

	if s.reloadInterval > 0 {
		_, err := s.scheduler.Every(s.reloadInterval).WaitForSchedule().SingletonMode().Do(s.reload)
		if err != nil {
			return err
		}
		scheduled++
	}

	if s.exportInterval > 0 && s.exportDir != "" {
		_, err := s.scheduler.Every(s.exportInterval).WaitForSchedule().SingletonMode().Do(s.export)
		if err != nil {
			return err
		}
		scheduled++
	}

	if scheduled == 0 {
		log.Println("scheduler: no jobs configured; nothing to schedule")
		return nil
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) reload() {
	log.Println("scheduler: running dataset reload job")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	changed, err := s.service.Load(ctx)
	if err != nil {
		log.Printf("scheduler: reload failed, keeping last good dataset: %v", err)
		return
	}
	log.Printf("scheduler: completed dataset reload job (changed=%t)", changed)
}

func (s *Scheduler) export() {
	view, err := s.service.Dashboard(rental.FullRange())
	if err != nil {
		log.Printf("scheduler: export skipped: %v", err)
		return
	}

	path, err := export.ExportFile(s.exportDir, view, time.Now())
	if err != nil {
		log.Printf("scheduler: export failed: %v", err)
		return
	}
	log.Printf("scheduler: exported %s", path)
}
