package task_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arose/molstar/pkg/task"
)

func TestShouldUpdateIsRateLimited(t *testing.T) {
	rt := task.NewRuntime(context.Background(), task.WithUpdateInterval(time.Hour))
	assert.True(t, rt.ShouldUpdate(), "first check always passes")
	require.NoError(t, rt.Update(task.Progress{Message: "x"}))
	assert.False(t, rt.ShouldUpdate())

	always := task.Synchronous()
	require.NoError(t, always.Update(task.Progress{}))
	assert.True(t, always.ShouldUpdate())
}

func TestUpdateReportsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rt := task.NewRuntime(ctx, task.WithUpdateInterval(0))
	require.NoError(t, rt.Update(task.Progress{}))
	cancel()
	err := rt.Update(task.Progress{})
	assert.ErrorIs(t, err, task.ErrCancelled)
	assert.Equal(t, 1, rt.Updates())
}

func TestObserverSeesProgress(t *testing.T) {
	var got []task.Progress
	var ids []uuid.UUID
	tk := task.New("count", func(rt *task.Runtime) (int, error) {
		n := 25000
		sum := 0
		for i := 0; i < n; i++ {
			if err := rt.Step(i, n, "counting"); err != nil {
				return 0, err
			}
			sum++
		}
		return sum, nil
	})
	v, err := tk.Run(context.Background(),
		task.WithUpdateInterval(0),
		task.WithObserver(func(id uuid.UUID, p task.Progress) {
			ids = append(ids, id)
			got = append(got, p)
		}))
	require.NoError(t, err)
	assert.Equal(t, 25000, v)
	require.Len(t, got, 3)
	assert.Equal(t, 0, got[0].Current)
	assert.Equal(t, 10000, got[1].Current)
	assert.Equal(t, 20000, got[2].Current)
	assert.Equal(t, "counting", got[2].Message)
	for _, id := range ids {
		assert.Equal(t, tk.ID, id)
	}
}

func TestRunStopsAtCheckpointWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	processed := 0
	tk := task.New("cancel", func(rt *task.Runtime) (struct{}, error) {
		for i := 0; i < 50000; i++ {
			if err := rt.Step(i, 50000, "work"); err != nil {
				return struct{}{}, err
			}
			processed++
			if i == 15000 {
				cancel()
			}
		}
		return struct{}{}, nil
	})
	_, err := tk.Run(ctx, task.WithUpdateInterval(0))
	assert.ErrorIs(t, err, task.ErrCancelled)
	// cancellation is only seen at the next checkpoint
	assert.Equal(t, 20000, processed)
}

func TestSharedRuntimeIsSafeForConcurrentBuilds(t *testing.T) {
	rt := task.Synchronous()
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_ = rt.ShouldUpdate()
				assert.NoError(t, rt.Update(task.Progress{Current: i, Max: 100}))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 400, rt.Updates())
}

func TestProgressFraction(t *testing.T) {
	assert.Equal(t, 0.5, task.Progress{Current: 5, Max: 10}.Fraction())
	assert.Equal(t, 0.0, task.Progress{Current: 5, Max: 0}.Fraction())
	assert.Equal(t, 0.0, task.Progress{Current: 5, Max: 10, IsIndeterminate: true}.Fraction())
	assert.Equal(t, 1.0, task.Progress{Current: 50, Max: 10}.Fraction())
}
