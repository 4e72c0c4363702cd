package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/niouspark-cmd/student-hub-sub000/internal/models"
)

func TestSettingsService_SnapshotIsCached(t *testing.T) {
	repo := new(mockSettingsRepo)
	svc := NewSettingsService(repo, time.Minute)
	ctx := context.Background()

	repo.On("Get", ctx).Return(&models.PlatformSettings{ID: 1, RunnerFlatFee: 5}, nil).Once()

	first, err := svc.Snapshot(ctx)
	assert.NoError(t, err)
	second, err := svc.Snapshot(ctx)
	assert.NoError(t, err)
	assert.Equal(t, first.RunnerFlatFee, second.RunnerFlatFee)
	repo.AssertNumberOfCalls(t, "Get", 1)
}

func TestSettingsService_SnapshotReturnsCopy(t *testing.T) {
	repo := new(mockSettingsRepo)
	svc := NewSettingsService(repo, time.Minute)
	ctx := context.Background()

	repo.On("Get", ctx).Return(&models.PlatformSettings{ID: 1, RunnerFlatFee: 5}, nil)

	snap, err := svc.Snapshot(ctx)
	assert.NoError(t, err)
	snap.RunnerFlatFee = 999

	again, err := svc.Snapshot(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 5.0, again.RunnerFlatFee)
}

func TestSettingsService_ExpiredSnapshotRefetches(t *testing.T) {
	repo := new(mockSettingsRepo)
	svc := NewSettingsService(repo, time.Nanosecond)
	ctx := context.Background()

	repo.On("Get", ctx).Return(&models.PlatformSettings{ID: 1, RunnerFlatFee: 5}, nil)

	_, err := svc.Snapshot(ctx)
	assert.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = svc.Snapshot(ctx)
	assert.NoError(t, err)
	repo.AssertNumberOfCalls(t, "Get", 2)
}

func TestSettingsService_UpdateRefreshesCache(t *testing.T) {
	repo := new(mockSettingsRepo)
	svc := NewSettingsService(repo, time.Minute)
	ctx := context.Background()
	operatorID := uuid.New()

	repo.On("Get", ctx).Return(&models.PlatformSettings{ID: 1, RunnerFlatFee: 5}, nil).Once()

	_, err := svc.Snapshot(ctx)
	assert.NoError(t, err)

	fee := 7.5
	repo.On("Update", ctx, (*bool)(nil), &fee, operatorID).
		Return(&models.PlatformSettings{ID: 1, RunnerFlatFee: 7.5}, nil)

	_, err = svc.Update(ctx, nil, &fee, operatorID)
	assert.NoError(t, err)

	// The updated record is served without another repository read.
	snap, err := svc.Snapshot(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 7.5, snap.RunnerFlatFee)
	repo.AssertNumberOfCalls(t, "Get", 1)
}

func TestSettingsService_UpdateRejectsNegativeFee(t *testing.T) {
	repo := new(mockSettingsRepo)
	svc := NewSettingsService(repo, time.Minute)

	fee := -1.0
	_, err := svc.Update(context.Background(), nil, &fee, uuid.New())
	assert.ErrorIs(t, err, ErrValidation)
}
