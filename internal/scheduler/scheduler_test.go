package scheduler

import (
	"testing"

	"farmshare-backend/internal/config"
	"farmshare-backend/internal/jobs"

	"github.com/stretchr/testify/assert"
)

func TestNewScheduler_RegistersJobs(t *testing.T) {
	cfg := &config.Config{Scheduler: config.SchedulerConfig{
		RetryEscrowSettlements: "0 */5 * * * *",
		ExpireStaleTopUps:      "0 */15 * * * *",
	}}
	s := NewScheduler(jobs.NewJobRunner(&jobs.Services{}, cfg))

	assert.Len(t, s.cron.Entries(), 2)
	assert.True(t, s.IsRunning())

	s.Start()
	s.Stop()
}

func TestNewScheduler_SkipsInvalidSchedule(t *testing.T) {
	cfg := &config.Config{Scheduler: config.SchedulerConfig{
		RetryEscrowSettlements: "not a cron spec",
		ExpireStaleTopUps:      "0 */15 * * * *",
	}}
	s := NewScheduler(jobs.NewJobRunner(&jobs.Services{}, cfg))

	assert.Len(t, s.cron.Entries(), 1)
}
