package jobs

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	cron "github.com/robfig/cron"
	"github.com/sirupsen/logrus"
)

// Job is a long-running background task. Run blocks until Stop is called.
type Job interface {
	Name() string
	Run()
	Stop()
}

// CronJob runs on a cron schedule instead of continuously.
type CronJob interface {
	Schedule() string
	Name() string
	Run()
}

// TaskExecutor owns the background jobs of a server instance. Cron jobs are
// skipped while a previous run of the same job is still going.
type TaskExecutor struct {
	cron     *cron.Cron
	jobs     []Job
	cronJobs []CronJob
	running  mapset.Set[string]
	mu       sync.Mutex
	wg       sync.WaitGroup
}

func NewTaskExecutor(jobs []Job, cronJobs ...CronJob) *TaskExecutor {
	return &TaskExecutor{
		cron:     cron.New(),
		jobs:     jobs,
		cronJobs: cronJobs,
		running:  mapset.NewSet[string](),
	}
}

// Start launches every job. Continuous jobs get their own goroutine; cron
// jobs run inside the cron scheduler.
func (t *TaskExecutor) Start() {
	for _, job := range t.jobs {
		t.wg.Add(1)
		go func(job Job) {
			defer t.wg.Done()
			logrus.Infof("starting job: %s", job.Name())
			job.Run()
		}(job)
	}

	for _, job := range t.cronJobs {
		err := t.cron.AddFunc(job.Schedule(), func() {
			t.mu.Lock()
			if t.running.Contains(job.Name()) {
				t.mu.Unlock()
				logrus.Warnf("job %s is already running", job.Name())
				return
			}
			t.running.Add(job.Name())
			t.mu.Unlock()

			defer func() {
				t.mu.Lock()
				defer t.mu.Unlock()
				t.running.Remove(job.Name())
			}()

			job.Run()
		})
		if err != nil {
			logrus.Errorf("failed to add job %s to cron: %v", job.Name(), err)
			panic(err)
		}
	}

	t.cron.Start()
}

// Stop stops the cron scheduler and waits for the continuous jobs to finish.
func (t *TaskExecutor) Stop() {
	logrus.Infof("stopping all tasks")
	t.cron.Stop()

	for _, job := range t.jobs {
		job.Stop()
	}
	t.wg.Wait()
}
