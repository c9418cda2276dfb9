package cron

import (
	"context"
	"sync"
	"time"

	"github.com/koinonia-lab/backend/pkg/xcontext"
)

type CronJob interface {
	Do(context.Context)
	RunNow() bool
	Next() time.Time
}

type CronJobManager struct {
	mutex  sync.Mutex
	wait   sync.WaitGroup
	jobs   map[CronJob]*time.Timer
	closed bool
}

func NewCronJobManager() *CronJobManager {
	return &CronJobManager{jobs: make(map[CronJob]*time.Timer)}
}

func (m *CronJobManager) Register(job CronJob) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.jobs[job] = nil
}

// Start schedules every registered job and blocks until the context is done
// or Cancel is called. A running job is always allowed to finish.
func (m *CronJobManager) Start(ctx context.Context) {
	xcontext.Logger(ctx).Infof("Cron job manager started")

	m.mutex.Lock()
	jobs := make([]CronJob, 0, len(m.jobs))
	for job := range m.jobs {
		jobs = append(jobs, job)
	}
	m.mutex.Unlock()

	for _, job := range jobs {
		if job.RunNow() {
			m.wait.Add(1)
			go func(job CronJob) {
				defer m.wait.Done()
				m.run(ctx, job)
			}(job)
		} else {
			m.schedule(ctx, job)
		}
	}

	<-ctx.Done()
	m.Cancel(ctx)
	m.wait.Wait()
	xcontext.Logger(ctx).Infof("Cron job manager stopped")
}

func (m *CronJobManager) Cancel(ctx context.Context) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.closed {
		return
	}
	m.closed = true

	for job, timer := range m.jobs {
		if timer == nil {
			xcontext.Logger(ctx).Warnf("Stop a job that hasn't been scheduled: %T", job)
			continue
		}

		// A stopped timer never runs its job, so release its slot here.
		if timer.Stop() {
			m.wait.Done()
		}
	}

	// Clear all jobs to not schedule them again.
	m.jobs = make(map[CronJob]*time.Timer)
}

func (m *CronJobManager) run(ctx context.Context, job CronJob) {
	xcontext.Logger(ctx).Infof("%T is running...", job)
	job.Do(ctx)
	xcontext.Logger(ctx).Infof("%T ok", job)

	m.schedule(ctx, job)
}

func (m *CronJobManager) schedule(ctx context.Context, job CronJob) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	// Only schedule jobs which still exist in the job list.
	if _, ok := m.jobs[job]; !ok || m.closed {
		return
	}

	m.wait.Add(1)
	m.jobs[job] = time.AfterFunc(time.Until(job.Next()), func() {
		defer m.wait.Done()
		m.run(ctx, job)
	})
}
