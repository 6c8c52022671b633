package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportingState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    ReportingState
		terminal bool
	}{
		{ReportingStateStarted, false},
		{ReportingStateInProgress, false},
		{ReportingStateCompleted, true},
		{ReportingStateFailed, true},
		{ReportingStateSkipped, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			assert.Equal(t, tt.terminal, tt.state.IsTerminal())
		})
	}
}

func TestNewStatus(t *testing.T) {
	s := NewStatus(OperationScanCommit, nil, TrackableTypeCommit, 42)

	assert.Equal(t, ReportingStateStarted, s.State())
	assert.Equal(t, OperationScanCommit, s.Operation())
	assert.Equal(t, int64(42), s.TrackableID())
	assert.Equal(t, TrackableTypeCommit, s.TrackableType())
	assert.Nil(t, s.Parent())
	assert.NotEmpty(t, s.ID())
	assert.Zero(t, s.Total())
	assert.Zero(t, s.Current())
}

func TestNewStatusWithDefaults(t *testing.T) {
	s := NewStatusWithDefaults(OperationCloneRepository)

	assert.Equal(t, OperationCloneRepository, s.Operation())
	assert.Zero(t, s.TrackableID())
	assert.Empty(t, s.TrackableType())
}

func TestStatus_Skip(t *testing.T) {
	original := NewStatusWithDefaults(OperationScanCommit)
	skipped := original.Skip("already indexed")

	assert.Equal(t, ReportingStateSkipped, skipped.State())
	assert.Equal(t, "already indexed", skipped.Message())
	assert.Equal(t, ReportingStateStarted, original.State(), "Skip must not mutate the original value")
}

func TestStatus_Fail(t *testing.T) {
	original := NewStatusWithDefaults(OperationScanCommit)
	failed := original.Fail("connection timeout")

	assert.Equal(t, ReportingStateFailed, failed.State())
	assert.Equal(t, "connection timeout", failed.Error())
	assert.Equal(t, ReportingStateStarted, original.State(), "Fail must not mutate the original value")
}

func TestStatus_SetCurrent(t *testing.T) {
	s := NewStatusWithDefaults(OperationScanCommit).SetTotal(10)
	require.Equal(t, 10, s.Total())

	updated := s.SetCurrent(5, "processing file 5")
	assert.Equal(t, ReportingStateInProgress, updated.State())
	assert.Equal(t, 5, updated.Current())
	assert.Equal(t, "processing file 5", updated.Message())
}

func TestStatus_SetCurrent_EmptyMessageRetainsPrevious(t *testing.T) {
	s := NewStatusWithDefaults(OperationScanCommit).
		SetCurrent(1, "first").
		SetCurrent(2, "")

	assert.Equal(t, "first", s.Message())
	assert.Equal(t, 2, s.Current())
}

func TestStatus_Complete(t *testing.T) {
	s := NewStatusWithDefaults(OperationScanCommit).SetTotal(10).SetCurrent(7, "")

	completed := s.Complete()
	assert.Equal(t, ReportingStateCompleted, completed.State())
	assert.Equal(t, completed.Total(), completed.Current(), "progress snaps to 100%")
}

func TestStatus_Complete_AlreadyTerminal(t *testing.T) {
	failed := NewStatusWithDefaults(OperationScanCommit).Fail("broken")
	assert.Equal(t, ReportingStateFailed, failed.Complete().State())

	skipped := NewStatusWithDefaults(OperationScanCommit).Skip("not needed")
	assert.Equal(t, ReportingStateSkipped, skipped.Complete().State())
}

func TestStatus_SetTrackingInfo(t *testing.T) {
	updated := NewStatusWithDefaults(OperationScanCommit).
		SetTrackingInfo(99, TrackableTypeRepository)

	assert.Equal(t, int64(99), updated.TrackableID())
	assert.Equal(t, TrackableTypeRepository, updated.TrackableType())
}

func TestStatus_CompletionPercent(t *testing.T) {
	tests := []struct {
		name    string
		total   int
		current int
		want    float64
	}{
		{"zero total", 0, 0, 0.0},
		{"zero current", 10, 0, 0.0},
		{"half done", 100, 50, 50.0},
		{"fully done", 10, 10, 100.0},
		{"over 100 clamped", 10, 15, 100.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStatusWithDefaults(OperationScanCommit).
				SetTotal(tt.total).
				SetCurrent(tt.current, "")
			assert.Equal(t, tt.want, s.CompletionPercent())
		})
	}
}

func TestStatus_UpdatedAtAdvances(t *testing.T) {
	s := NewStatusWithDefaults(OperationScanCommit)
	before := s.UpdatedAt()

	time.Sleep(time.Millisecond)
	assert.True(t, s.SetCurrent(1, "tick").UpdatedAt().After(before))
}

func TestNewStatusFull(t *testing.T) {
	now := time.Now()
	parent := NewStatusWithDefaults(OperationRoot)
	s := NewStatusFull(
		"custom-id",
		ReportingStateInProgress,
		OperationScanCommit,
		"scanning",
		now.Add(-time.Hour), now,
		100, 50,
		"",
		&parent,
		7,
		TrackableTypeCommit,
	)

	assert.Equal(t, "custom-id", s.ID())
	assert.Equal(t, ReportingStateInProgress, s.State())
	assert.Equal(t, "scanning", s.Message())
	require.NotNil(t, s.Parent())
	assert.Equal(t, OperationRoot, s.Parent().Operation())
}

func TestCreateStatusID(t *testing.T) {
	tests := []struct {
		name          string
		operation     Operation
		trackableType TrackableType
		trackableID   int64
		want          string
	}{
		{"full", OperationScanCommit, TrackableTypeCommit, 42, "kodit.commit-42-kodit.commit.scan"},
		{"no trackable", OperationCloneRepository, "", 0, "kodit.repository.clone"},
		{"type only", OperationScanCommit, TrackableTypeCommit, 0, "kodit.commit-kodit.commit.scan"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, createStatusID(tt.operation, tt.trackableType, tt.trackableID))
		})
	}
}
