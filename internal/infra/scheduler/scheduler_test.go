package scheduler

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRunner struct {
	calls atomic.Int32
	err   error
}

func (r *countingRunner) RunScanPass(ctx context.Context, _ time.Time) error {
	r.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("scan pass without deadline")
	}
	return r.err
}

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestScheduler_OneShot(t *testing.T) {
	runner := &countingRunner{}
	s := NewScanScheduler(runner, quietLogger(), CronOff, 10*time.Millisecond, time.Second)

	require.NoError(t, s.Start())
	assert.False(t, s.Periodic())
	assert.Eventually(t, func() bool { return runner.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	s.Stop()
	assert.Equal(t, int32(1), runner.calls.Load())
}

func TestScheduler_Periodic(t *testing.T) {
	runner := &countingRunner{err: errors.New("one user failed")}
	s := NewScanScheduler(runner, quietLogger(), "@every 1s", 10*time.Millisecond, time.Second)

	require.NoError(t, s.Start())
	assert.True(t, s.Periodic())
	assert.Eventually(t, func() bool { return runner.calls.Load() >= 2 }, 3*time.Second, 20*time.Millisecond)
	s.Stop()
}

func TestScheduler_StopBeforeSettleDelay(t *testing.T) {
	runner := &countingRunner{}
	s := NewScanScheduler(runner, quietLogger(), "", time.Hour, time.Second)

	require.NoError(t, s.Start())
	s.Stop()
	assert.Zero(t, runner.calls.Load())
}

func TestScheduler_InvalidSpec(t *testing.T) {
	s := NewScanScheduler(&countingRunner{}, quietLogger(), "every minute please", time.Millisecond, time.Second)

	assert.Error(t, s.Start())
}
