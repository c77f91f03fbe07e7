// Package maintenance schedules the periodic housekeeping work: the cache
// watermark watchdog, alerting-rule evaluation and the devpersister drain,
// grounded on
// internal/taskManager's gocron/v2 scheduler wiring (taskManager.go,
// updateDurationService.go).
package maintenance

import (
	"time"

	"github.com/carbond/carbond/internal/alerting"
	"github.com/carbond/carbond/internal/devpersister"
	carbondlog "github.com/carbond/carbond/internal/log"
	"github.com/go-co-op/gocron/v2"
)

// Cache is the subset of internal/cache.Cache the watermark watchdog needs.
type Cache interface {
	Size() int64
}

// Registry is the subset of internal/ingest.ClientManager the watchdog
// drives.
type Registry interface {
	PauseAll()
	ResumeAll()
	Paused() bool
}

// Counters is the subset of internal/counters.Table the watchdog mirrors
// into the pause-state gauge.
type Counters interface {
	SetClientsPaused(bool)
}

// Scheduler owns the gocron instance and the jobs registered on it.
type Scheduler struct {
	s gocron.Scheduler
}

// New creates the underlying gocron scheduler. Jobs are registered with
// RegisterCacheWatchdog before Start is called.
func New() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Scheduler{s: s}, nil
}

// RegisterCacheWatchdog polls the cache size every interval and pauses
// ingestion clients once it crosses highWatermark, resuming once it falls
// back under lowWatermark. A highWatermark of 0 disables the watchdog.
func (sc *Scheduler) RegisterCacheWatchdog(cache Cache, registry Registry, counters Counters, highWatermark, lowWatermark int64, interval time.Duration) error {
	if highWatermark <= 0 {
		carbondlog.ComponentDebug("maintenance", "cache watchdog disabled (maxCacheSize=0)")
		return nil
	}

	_, err := sc.s.NewJob(gocron.DurationJob(interval),
		gocron.NewTask(func() {
			size := cache.Size()
			switch {
			case size >= highWatermark && !registry.Paused():
				carbondlog.ComponentDebug("maintenance", "cache size ", size, " crossed high watermark ", highWatermark, ", pausing clients")
				registry.PauseAll()
				counters.SetClientsPaused(true)
			case size <= lowWatermark && registry.Paused():
				carbondlog.ComponentDebug("maintenance", "cache size ", size, " fell below low watermark ", lowWatermark, ", resuming clients")
				registry.ResumeAll()
				counters.SetClientsPaused(false)
			}
		}))
	return err
}

// RegisterAlerting evaluates rules against the cache every interval and
// logs each firing rule. An empty rule set registers no job.
func (sc *Scheduler) RegisterAlerting(rules []*alerting.Rule, cache alerting.Cache, interval time.Duration) error {
	if len(rules) == 0 {
		return nil
	}

	_, err := sc.s.NewJob(gocron.DurationJob(interval),
		gocron.NewTask(func() {
			firing, err := alerting.Evaluate(rules, cache)
			if err != nil {
				carbondlog.ComponentError("maintenance", "evaluating alerting rules: ", err)
				return
			}
			for _, f := range firing {
				carbondlog.ComponentDebug("maintenance", "alert firing: ", f.Rule, " on ", f.Target)
			}
		}))
	return err
}

// RegisterDrain periodically drains every metric held by source into
// persister, the reference devpersister sink.
func (sc *Scheduler) RegisterDrain(persister *devpersister.Persister, source devpersister.Source, interval time.Duration) error {
	_, err := sc.s.NewJob(gocron.DurationJob(interval),
		gocron.NewTask(func() {
			n, err := persister.DrainAll(source)
			if err != nil {
				carbondlog.ComponentError("maintenance", "draining cache to devpersister: ", err)
				return
			}
			if n > 0 {
				carbondlog.ComponentDebug("maintenance", "drained ", n, " datapoints to devpersister")
			}
		}))
	return err
}

// Start begins running all registered jobs.
func (sc *Scheduler) Start() {
	sc.s.Start()
}

// Shutdown stops the scheduler and waits for in-flight jobs to finish.
func (sc *Scheduler) Shutdown() error {
	return sc.s.Shutdown()
}
