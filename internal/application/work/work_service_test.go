package work

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agencydesk/backend/internal/application/query"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/agencydesk/backend/internal/domain/work"
	"github.com/agencydesk/backend/internal/infrastructure/persistence"
	"github.com/agencydesk/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTaskRepository is a mock implementation of TaskRepository
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*work.Task, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*work.Task), args.Error(1)
}

func (m *MockTaskRepository) List(ctx context.Context, userID uuid.UUID, filter work.TaskFilter) (shared.PageResult[work.Task], error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).(shared.PageResult[work.Task]), args.Error(1)
}

func (m *MockTaskRepository) ListAll(ctx context.Context, userID uuid.UUID) ([]work.Task, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]work.Task), args.Error(1)
}

func (m *MockTaskRepository) Save(ctx context.Context, task *work.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func TestProjectService(t *testing.T) {
	db := testutil.NewTestDB(t)
	qc, _ := testutil.NewQueryClient()
	svc := NewProjectService(persistence.NewGormProjectRepository(db), qc)
	ctx := context.Background()
	userID := testutil.TestUserID

	t.Run("requires a user", func(t *testing.T) {
		_, err := svc.CreateProject(ctx, uuid.Nil, CreateProjectRequest{Name: "Site"})
		assert.ErrorIs(t, err, shared.ErrUnauthenticated)
		_, err = svc.GetProjectStats(ctx, uuid.Nil)
		assert.ErrorIs(t, err, shared.ErrUnauthenticated)
	})

	budget := decimal.NewFromInt(1000)
	p, err := svc.CreateProject(ctx, userID, CreateProjectRequest{Name: "Website", Status: "active", Budget: &budget})
	require.NoError(t, err)
	assert.Equal(t, "active", p.Status)
	assert.Equal(t, "medium", p.Priority)

	spent := decimal.NewFromInt(250)
	p, err = svc.UpdateProject(ctx, userID, p.ID, UpdateProjectRequest{Spent: &spent})
	require.NoError(t, err)

	stats, err := svc.GetProjectStats(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Active)
	assert.Equal(t, "25", stats.BudgetUtilization.String())

	t.Run("delete archives", func(t *testing.T) {
		require.NoError(t, svc.DeleteProject(ctx, userID, p.ID))
		list, err := svc.ListProjects(ctx, userID, ProjectListFilter{})
		require.NoError(t, err)
		assert.Empty(t, list.Data)

		list, err = svc.ListProjects(ctx, userID, ProjectListFilter{IncludeArchived: true})
		require.NoError(t, err)
		require.Len(t, list.Data, 1)
		assert.True(t, list.Data[0].IsArchived)

		restored, err := svc.RestoreProject(ctx, userID, p.ID)
		require.NoError(t, err)
		assert.False(t, restored.IsArchived)
	})

	t.Run("permanent delete", func(t *testing.T) {
		require.NoError(t, svc.PermanentlyDeleteProject(ctx, userID, p.ID))
		_, err := svc.GetProject(ctx, userID, p.ID)
		assert.ErrorIs(t, err, work.ErrProjectNotFound)
	})
}

func TestTaskService_CRUDAndStats(t *testing.T) {
	db := testutil.NewTestDB(t)
	qc, _ := testutil.NewQueryClient()
	svc := NewTaskService(persistence.NewGormTaskRepository(db), qc)
	ctx := context.Background()
	userID := testutil.TestUserID

	past := time.Now().Add(-48 * time.Hour)
	overdue, err := svc.CreateTask(ctx, userID, CreateTaskRequest{Title: "Overdue", DueDate: &past, Priority: "high"})
	require.NoError(t, err)
	assert.Equal(t, "todo", overdue.Status)
	assert.Equal(t, "high", overdue.Priority)

	done, err := svc.CreateTask(ctx, userID, CreateTaskRequest{Title: "Shipped"})
	require.NoError(t, err)
	done, err = svc.UpdateTaskStatus(ctx, userID, done.ID, work.TaskStatusDone)
	require.NoError(t, err)
	assert.NotNil(t, done.CompletedAt)

	list, err := svc.ListTasks(ctx, userID, TaskListFilter{OverdueOnly: true})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, overdue.ID, list.Data[0].ID)

	stats, err := svc.GetTaskStats(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Done)
	assert.Equal(t, 1, stats.Overdue)
	assert.Equal(t, "50", stats.CompletionRate.String())

	require.NoError(t, svc.DeleteTask(ctx, userID, overdue.ID))
	_, err = svc.GetTask(ctx, userID, overdue.ID)
	assert.ErrorIs(t, err, work.ErrTaskNotFound)
}

func TestTaskService_UpdateTaskStatus_RollsBack(t *testing.T) {
	ctx := context.Background()
	userID := testutil.TestUserID
	qc, _ := testutil.NewQueryClient()
	repo := new(MockTaskRepository)
	svc := NewTaskService(repo, qc)

	task, err := work.NewTask(userID, "Write copy")
	require.NoError(t, err)
	repo.On("FindByID", mock.Anything, userID, task.ID).Return(task, nil)

	cached, err := svc.GetTask(ctx, userID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "todo", cached.Status)

	dbErr := errors.New("connection reset")
	repo.On("Save", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		// the prediction is visible while the write is in flight
		v, ok := query.Peek[TaskResponse](ctx, qc, userID, query.DetailKey(query.ResourceTasks, task.ID))
		assert.True(t, ok)
		assert.Equal(t, "done", v.Status)
	}).Return(dbErr)

	_, err = svc.UpdateTaskStatus(ctx, userID, task.ID, work.TaskStatusDone)
	assert.ErrorIs(t, err, dbErr)

	v, ok := query.Peek[TaskResponse](ctx, qc, userID, query.DetailKey(query.ResourceTasks, task.ID))
	require.True(t, ok)
	assert.Equal(t, "todo", v.Status)
	assert.Nil(t, v.CompletedAt)
	repo.AssertExpectations(t)
}
