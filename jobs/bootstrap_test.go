package jobs

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polizei-portal/intranet/internal/auth"
	"github.com/polizei-portal/intranet/internal/docstore"
	jobmetrics "github.com/polizei-portal/intranet/internal/jobs"
	"github.com/polizei-portal/intranet/internal/rbac"
	"github.com/polizei-portal/intranet/internal/seed"
	"github.com/polizei-portal/intranet/internal/users"
)

type fakeRunner struct {
	result seed.Result
	err    error
	calls  int
}

func (f *fakeRunner) Run(context.Context) (seed.Result, error) {
	f.calls++
	return f.result, f.err
}

func TestBootstrapJobRunsSeed(t *testing.T) {
	store := docstore.NewMemoryStore()
	job := NewBootstrapJob(seed.NewBootstrapper(store, slog.Default(), seed.Config{}, nil), slog.Default(), jobmetrics.NewMetrics(prometheus.NewRegistry()))

	task, err := NewBootstrapTask(BootstrapPayload{})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	admin, err := users.NewRepository(store).GetUser(context.Background(), users.DefaultAdminID)
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)
}

func TestBootstrapJobAcknowledgesFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("store offline")}
	job := NewBootstrapJob(runner, slog.Default(), nil)

	task, err := NewBootstrapTask(BootstrapPayload{Reason: "cron"})
	require.NoError(t, err)
	assert.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, 1, runner.calls)
}

func TestBootstrapJobRejectsBadPayload(t *testing.T) {
	job := NewBootstrapJob(&fakeRunner{}, slog.Default(), nil)
	err := job.Handle(context.Background(), asynq.NewTask(TaskSeedBootstrap, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	var unset *BootstrapJob
	assert.Error(t, unset.Handle(context.Background(), asynq.NewTask(TaskSeedBootstrap, nil)))
}

type fakeEnqueuer struct {
	payloads []BootstrapPayload
	err      error
}

func (f *fakeEnqueuer) EnqueueBootstrap(_ context.Context, p BootstrapPayload) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.payloads = append(f.payloads, p)
	return &asynq.TaskInfo{ID: "task-1", Queue: QueueDefault}, nil
}

type fakeInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (f fakeInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) { return f.info, f.err }

func serveJobs(t *testing.T, h *Handler, method, path string, user *users.User) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Route("/jobs", h.MountRoutes)
	req := httptest.NewRequest(method, path, nil)
	if user != nil {
		ctx := auth.ContextWithUser(req.Context(), user)
		req = req.WithContext(rbac.ContextWithSubject(ctx, user.Subject()))
	}
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)
	return res
}

func TestHandlerEnqueueBootstrap(t *testing.T) {
	roles := rbac.StaticRoles{{ID: "SD", Permissions: []string{"VIEW_REPORTS"}}}
	enq := &fakeEnqueuer{}
	h := NewHandler(nil, enq, rbac.Middleware{Roles: roles}, slog.Default())

	assert.Equal(t, http.StatusUnauthorized, serveJobs(t, h, http.MethodPost, "/jobs/bootstrap", nil).Code)
	assert.Equal(t, http.StatusForbidden, serveJobs(t, h, http.MethodPost, "/jobs/bootstrap", &users.User{ID: "u1", Role: "SD"}).Code)

	res := serveJobs(t, h, http.MethodPost, "/jobs/bootstrap", &users.User{ID: "admin", IsAdmin: true})
	require.Equal(t, http.StatusAccepted, res.Code)
	assert.Contains(t, res.Body.String(), `"taskId":"task-1"`)
	require.Len(t, enq.payloads, 1)
	assert.Equal(t, BootstrapPayload{Reason: "admin", RequestedBy: "admin"}, enq.payloads[0])

	enq.err = asynq.ErrDuplicateTask
	res = serveJobs(t, h, http.MethodPost, "/jobs/bootstrap", &users.User{ID: "admin", IsAdmin: true})
	assert.Equal(t, http.StatusAccepted, res.Code)
	assert.Contains(t, res.Body.String(), `"queued":false`)
}

func TestHandlerHealth(t *testing.T) {
	h := NewHandler(nil, nil, rbac.Middleware{}, slog.Default())
	res := serveJobs(t, h, http.MethodGet, "/jobs/health", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `{"queue":"default","pending":0,"active":0,"failed":0}`, res.Body.String())

	h = NewHandler(fakeInspector{info: &asynq.QueueInfo{Queue: "default", Pending: 3, Failed: 1}}, nil, rbac.Middleware{}, slog.Default())
	res = serveJobs(t, h, http.MethodGet, "/jobs/health", nil)
	assert.JSONEq(t, `{"queue":"default","pending":3,"active":0,"failed":1}`, res.Body.String())

	h = NewHandler(fakeInspector{err: errors.New("redis down")}, nil, rbac.Middleware{}, slog.Default())
	assert.Equal(t, http.StatusServiceUnavailable, serveJobs(t, h, http.MethodGet, "/jobs/health", nil).Code)

	h = NewHandler(nil, nil, rbac.Middleware{}, slog.Default())
	assert.Equal(t, http.StatusServiceUnavailable, serveJobs(t, h, http.MethodPost, "/jobs/bootstrap", &users.User{ID: "a", IsAdmin: true}).Code)
}
