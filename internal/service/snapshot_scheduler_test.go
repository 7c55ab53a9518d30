package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSnapshotter struct {
	calls    int
	triggers []string
	err      error
}

func (f *fakeSnapshotter) TakeSnapshot(ctx context.Context, trigger string) (Snapshot, error) {
	f.calls++
	f.triggers = append(f.triggers, trigger)
	return Snapshot{SalesError: "short"}, f.err
}

func TestSnapshotScheduler_InvalidSpec(t *testing.T) {
	s := NewSnapshotScheduler(&fakeSnapshotter{}, "every tuesday")
	assert.ErrorContains(t, s.Start(), "invalid schedule")
}

func TestSnapshotScheduler_StartStop(t *testing.T) {
	s := NewSnapshotScheduler(&fakeSnapshotter{}, "@daily")
	require.NoError(t, s.Start())
	assert.Error(t, s.Start(), "second start is rejected")
	s.Stop()
	s.Stop()
}

func TestSnapshotScheduler_RunCallsHook(t *testing.T) {
	fake := &fakeSnapshotter{}
	s := NewSnapshotScheduler(fake, "@hourly")

	var got []Snapshot
	s.OnSnapshot = func(snap Snapshot) error {
		got = append(got, snap)
		return nil
	}

	s.Run()
	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, []string{TriggerSchedule}, fake.triggers)
	require.Len(t, got, 1)

	at, err := s.LastRun()
	assert.NoError(t, err)
	assert.False(t, at.IsZero())
}

func TestSnapshotScheduler_RunRecordsFailure(t *testing.T) {
	fake := &fakeSnapshotter{err: errors.New("db down")}
	s := NewSnapshotScheduler(fake, "@hourly")
	hooked := false
	s.OnSnapshot = func(Snapshot) error {
		hooked = true
		return nil
	}

	s.Run()
	_, err := s.LastRun()
	assert.ErrorContains(t, err, "db down")
	assert.False(t, hooked)
}
