package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra/niftyrank/pkg/logger"
)

type fakeJob struct {
	name     string
	schedule string
	done     chan struct{}
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return j.schedule }
func (j *fakeJob) Run(ctx context.Context) error {
	close(j.done)
	return nil
}

func TestAddJob_RejectsDuplicate(t *testing.T) {
	s := New(logger.NewNop())

	job := &fakeJob{name: "demo", schedule: "0 0 7 1 * *", done: make(chan struct{})}
	require.NoError(t, s.AddJob(job))

	err := s.AddJob(&fakeJob{name: "demo", schedule: "0 0 7 1 * *", done: make(chan struct{})})
	assert.Error(t, err)
}

func TestAddJob_RejectsBadCron(t *testing.T) {
	s := New(logger.NewNop())

	err := s.AddJob(&fakeJob{name: "demo", schedule: "not a cron", done: make(chan struct{})})
	assert.Error(t, err)
}

func TestRunJob_RecordsHistory(t *testing.T) {
	s := New(logger.NewNop())

	job := &fakeJob{name: "demo", schedule: "0 0 7 1 * *", done: make(chan struct{})}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("demo"))

	select {
	case <-job.done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run")
	}

	// The result is recorded after Run returns; poll briefly.
	deadline := time.Now().Add(2 * time.Second)
	for {
		history, err := s.History("demo")
		require.NoError(t, err)
		if last, ok := history.LastResult(); ok {
			assert.True(t, last.Success)
			assert.Equal(t, 1.0, history.SuccessRate())
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("no history recorded")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRunJob_UnknownJob(t *testing.T) {
	s := New(logger.NewNop())
	assert.Error(t, s.RunJob("absent"))
}
