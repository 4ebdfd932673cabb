package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrasher-corp/gct-pairs/backtester/common"
)

func TestTaskManagerNilReceiver(t *testing.T) {
	t.Parallel()
	var r *TaskManager
	_, err := r.AddTask("scan", "test", nil)
	assert.ErrorIs(t, err, common.ErrNilArguments)
	_, err = r.List()
	assert.ErrorIs(t, err, common.ErrNilArguments)
	_, err = r.GetSummary(uuid.Nil)
	assert.ErrorIs(t, err, common.ErrNilArguments)
	assert.ErrorIs(t, r.StartTask(context.Background(), uuid.Nil), common.ErrNilArguments)
	assert.ErrorIs(t, r.ClearTask(uuid.Nil), common.ErrNilArguments)
	_, _, err = r.ClearAllTasks()
	assert.ErrorIs(t, err, common.ErrNilArguments)
}

func TestTaskLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := NewTaskManager()
	_, err := r.AddTask("backtest", "test", nil)
	assert.ErrorIs(t, err, errNilTask)

	release := make(chan struct{})
	id, err := r.AddTask("backtest", "test", func(context.Context) (any, error) {
		<-release
		return "report", nil
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	sum, err := r.GetSummary(id)
	require.NoError(t, err)
	assert.Equal(t, TaskPending, sum.Status)
	assert.Equal(t, "backtest", sum.Kind)

	require.NoError(t, r.StartTask(ctx, id))
	assert.ErrorIs(t, r.StartTask(ctx, id), errTaskIsRunning)
	assert.ErrorIs(t, r.ClearTask(id), errCannotClear)
	cleared, remaining, err := r.ClearAllTasks()
	require.NoError(t, err)
	assert.Empty(t, cleared)
	assert.Len(t, remaining, 1)

	close(release)
	sum, err = r.Wait(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, TaskComplete, sum.Status)
	assert.Equal(t, "report", sum.Result)
	assert.False(t, sum.DateFinished.Before(sum.DateStarted))
	assert.ErrorIs(t, r.StartTask(ctx, id), errAlreadyRan)

	list, err := r.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].Result, "listing leaves out results")

	require.NoError(t, r.ClearTask(id))
	assert.ErrorIs(t, r.ClearTask(id), errTaskNotFound)
	_, err = r.GetSummary(id)
	assert.ErrorIs(t, err, errTaskNotFound)
}

func TestTaskFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := NewTaskManager()
	boom := errors.New("boom")
	id, err := r.AddTask("scan", "test", func(context.Context) (any, error) {
		return nil, boom
	})
	require.NoError(t, err)
	other, err := r.AddTask("scan", "other", func(context.Context) (any, error) {
		return 1, nil
	})
	require.NoError(t, err)

	started, err := r.StartAllTasks(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{id, other}, started)

	sum, err := r.Wait(ctx, id)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, TaskFailed, sum.Status)
	assert.Equal(t, "boom", sum.Error)
	_, err = r.Wait(ctx, other)
	require.NoError(t, err)

	started, err = r.StartAllTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, started)

	cleared, remaining, err := r.ClearAllTasks()
	require.NoError(t, err)
	assert.Len(t, cleared, 2)
	assert.Empty(t, remaining)
}

func TestWaitCancelled(t *testing.T) {
	t.Parallel()
	r := NewTaskManager()
	id, err := r.AddTask("scan", "test", func(context.Context) (any, error) { return nil, nil })
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Wait(ctx, id)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = r.Wait(ctx, uuid.Must(uuid.NewV4()))
	assert.ErrorIs(t, err, errTaskNotFound)
}
