package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	"github.com/santhosh-tekuri/jsonschema/v5"
	log "github.com/sirupsen/logrus"

	"tasklist-api/domain"
)

const requestBodyMaxSize = 1 << 20

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, store Storage, logger *log.Logger) {
	e.GET("/api/tasks", getTasks(store, logger))
	e.POST("/api/tasks", createTask(store))
	e.PUT("/api/tasks/reorder", reorderTasks(store))
	e.PUT("/api/tasks/:id", updateTask(store))
	e.DELETE("/api/tasks/:id", deleteTask(store))
	e.PATCH("/api/tasks/:id/toggle", toggleTask(store))
	e.GET("/healthz", healthz(store))
}

type taskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Position    string `json:"position,omitempty"`
}

type reorderRequest struct {
	TaskIDs []int64 `json:"taskIds"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Rule  string `json:"rule,omitempty"`
}

var errInvalidBody = errors.New("invalid body")

// decodeBody reads a size-limited request body, validates its shape against
// the given schema, then decodes it into out.
func decodeBody(c echo.Context, schema *jsonschema.Schema, out any) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, requestBodyMaxSize))
	if err != nil {
		return errInvalidBody
	}
	var raw any
	if err := sonic.ConfigStd.Unmarshal(body, &raw); err != nil {
		return errInvalidBody
	}
	if err := schema.Validate(raw); err != nil {
		return errInvalidBody
	}
	return sonic.ConfigStd.Unmarshal(body, out)
}

// writeError maps the error taxonomy onto HTTP responses: validation
// failures carry the violated field and rule, unknown ids map to 404, and
// anything else is a storage failure the caller should treat as
// "no change occurred".
func writeError(c echo.Context, err error) error {
	var verr domain.ValidationError
	switch {
	case errors.Is(err, errInvalidBody):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: errInvalidBody.Error()})
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "validation failed", Field: verr.Field, Rule: verr.Rule})
	case errors.Is(err, domain.ErrTaskNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "storage failure: no change occurred"})
	}
}

func taskIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, domain.ValidationError{Field: "id", Rule: "must be a positive integer"}
	}
	if err := domain.ValidateID(id); err != nil {
		return 0, err
	}
	return id, nil
}

func healthz(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := store.Ping(c.Request().Context()); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	}
}

func getTasks(store Storage, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics, spanCtx := newListRequestMetrics(ctx, logger)
		if spanCtx != nil {
			c.SetRequest(c.Request().WithContext(spanCtx))
			ctx = spanCtx
		}
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		fetchStart := time.Now()
		tasks, fetchErr := store.ListTasks(ctx)
		metrics.ObserveFetch(time.Since(fetchStart))
		if fetchErr != nil {
			metrics.SetErrorStage("storage")
			err = writeError(c, fetchErr)
			return err
		}
		metrics.SetTasksReturned(len(tasks))

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, tasks)
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func createTask(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req taskRequest
		if err := decodeBody(c, createTaskSchema, &req); err != nil {
			return writeError(c, err)
		}
		title, err := domain.ValidateTitle(req.Title)
		if err != nil {
			return writeError(c, err)
		}
		description, err := domain.ValidateDescription(req.Description)
		if err != nil {
			return writeError(c, err)
		}
		pos, err := domain.ParseInsertPosition(req.Position)
		if err != nil {
			return writeError(c, err)
		}

		task, err := store.CreateTask(c.Request().Context(), title, description, pos)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, task)
	}
}

func updateTask(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := taskIDParam(c)
		if err != nil {
			return writeError(c, err)
		}
		var req taskRequest
		if err := decodeBody(c, updateTaskSchema, &req); err != nil {
			return writeError(c, err)
		}
		title, err := domain.ValidateTitle(req.Title)
		if err != nil {
			return writeError(c, err)
		}
		description, err := domain.ValidateDescription(req.Description)
		if err != nil {
			return writeError(c, err)
		}

		task, err := store.UpdateTask(c.Request().Context(), id, title, description)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, task)
	}
}

func deleteTask(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := taskIDParam(c)
		if err != nil {
			return writeError(c, err)
		}
		if err := store.DeleteTask(c.Request().Context(), id); err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func toggleTask(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := taskIDParam(c)
		if err != nil {
			return writeError(c, err)
		}
		task, err := store.ToggleTask(c.Request().Context(), id)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, task)
	}
}

func reorderTasks(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req reorderRequest
		if err := decodeBody(c, reorderSchema, &req); err != nil {
			return writeError(c, err)
		}
		assignments, err := domain.BuildOrderAssignments(req.TaskIDs)
		if err != nil {
			return writeError(c, err)
		}
		if err := store.ReorderTasks(c.Request().Context(), assignments); err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
