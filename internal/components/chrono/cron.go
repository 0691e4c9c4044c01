package chrono

import (
	"fmt"
	"time"

	"maeto-catalog/internal/components/telemetry"

	"github.com/robfig/cron/v3"
)

// JobID identifies a scheduled job.
type JobID int

// CronAPI is what anything that runs on a schedule should depend on.
type CronAPI interface {
	// Schedule runs `job` every time `spec` fires.
	Schedule(spec string, job func()) (JobID, error)
	// Next returns when the job will run next, the zero time if it is unknown.
	Next(id JobID) time.Time
	// Stop stops scheduling and waits for a running job to finish.
	Stop()
}

// StandardCron implements CronAPI with `github.com/robfig/cron/v3`, jobs never
// overlap: a tick that fires while the previous run is still going is skipped.
type StandardCron struct {
	cron *cron.Cron
}

var _ CronAPI = StandardCron{}

func NewStandardCron(tel telemetry.API) StandardCron {
	logger := cronLogger{tel: telemetry.NewScopedAPI("cron", tel)}
	scheduler := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(
			cron.Recover(logger),
			cron.SkipIfStillRunning(logger),
		),
	)
	scheduler.Start()
	return StandardCron{cron: scheduler}
}

func (s StandardCron) Schedule(spec string, job func()) (JobID, error) {
	id, err := s.cron.AddFunc(spec, job)
	if err != nil {
		return 0, fmt.Errorf("schedule '%s': %w", spec, err)
	}
	return JobID(id), nil
}

func (s StandardCron) Next(id JobID) time.Time {
	return s.cron.Entry(cron.EntryID(id)).Next
}

func (s StandardCron) Stop() {
	<-s.cron.Stop().Done()
}

// cronLogger forwards the scheduler's own logs to telemetry.API.
type cronLogger struct {
	tel telemetry.API
}

func pairs(keysAndValues []any) []any {
	out := make([]any, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		out = append(out, fmt.Sprintf("%v=%v", keysAndValues[i], keysAndValues[i+1]))
	}
	return out
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.tel.ReportDebug(msg, pairs(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.tel.ReportBroken("scheduler", append([]any{fmt.Errorf("%s: %w", msg, err)}, pairs(keysAndValues)...)...)
}
