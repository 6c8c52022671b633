package v1

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/kodit-ai/kodit"
	"github.com/kodit-ai/kodit/application/service"
	"github.com/kodit-ai/kodit/domain/task"
	"github.com/kodit-ai/kodit/infrastructure/api/middleware"
	"github.com/kodit-ai/kodit/infrastructure/api/v1/dto"
)

// QueueRouter handles queue API endpoints.
type QueueRouter struct {
	client *kodit.Client
	logger *slog.Logger
}

// NewQueueRouter creates a new QueueRouter.
func NewQueueRouter(client *kodit.Client) *QueueRouter {
	return &QueueRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for queue endpoints.
func (r *QueueRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/tasks", r.ListTasks)
	router.Get("/tasks/{id}", r.GetTask)
	router.Get("/stats", r.Stats)

	return router
}

// ListTasks handles GET /api/v1/queue/tasks.
func (r *QueueRouter) ListTasks(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	limit := 50
	if limitStr := req.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	params := &service.TaskListParams{Limit: limit}
	if opStr := req.URL.Query().Get("operation"); opStr != "" {
		op, err := task.ParseOperation(opStr)
		if err != nil {
			middleware.WriteError(w, req, err, r.logger)
			return
		}
		params.Operation = &op
	}

	tasks, err := r.client.Tasks.List(ctx, params)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	response := dto.TaskListResponse{
		Data:       tasksToDTO(tasks),
		TotalCount: len(tasks),
	}

	middleware.WriteJSON(w, http.StatusOK, response)
}

// GetTask handles GET /api/v1/queue/tasks/{id}.
func (r *QueueRouter) GetTask(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	idStr := chi.URLParam(req, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	t, err := r.client.Tasks.Get(ctx, id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, taskToDTO(t))
}

// Stats handles GET /api/v1/queue/stats.
func (r *QueueRouter) Stats(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	count, err := r.client.Tasks.Count(ctx)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	response := dto.QueueStatsResponse{
		PendingCount: int(count),
	}

	middleware.WriteJSON(w, http.StatusOK, response)
}

func tasksToDTO(tasks []task.Task) []dto.TaskResponse {
	result := make([]dto.TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = taskToDTO(t)
	}
	return result
}

func taskToDTO(t task.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:        t.ID(),
		DedupKey:  t.DedupKey(),
		Operation: t.Operation().String(),
		Priority:  t.Priority(),
		State:     string(t.State()),
		Payload:   t.Payload(),
		CreatedAt: t.CreatedAt(),
		UpdatedAt: t.UpdatedAt(),
	}
}
