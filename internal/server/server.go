package server

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"polisee/internal/config"
	"polisee/internal/domain"
	"polisee/internal/engine"
	"polisee/internal/export"
	"polisee/internal/gateway"
	"polisee/internal/ledger"
	"polisee/internal/persist"
	"polisee/internal/store"
)

// Config for the HTTP API handler. Gateway may be nil; the generate and
// evaluate endpoints then answer 503.
type Config struct {
	Engine   engine.Engine
	Store    *store.Store
	Gateway  gateway.Gateway
	AppCfg   *config.Config
	BasePath string
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"not_found"`
	Message string         `json:"message" example:"task not found"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true"`
}

// apiError models the error envelope.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

// New returns an HTTP handler exposing the Polisee API.
func New(cfg Config) (http.Handler, error) {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v0"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	huma.DefaultArrayNullable = false
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg, nil)
	}

	router := chi.NewRouter()
	hcfg := huma.DefaultConfig("Polisee API", "0.1.0")
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerHealth(group)
	registerStatus(group, cfg.Store)
	registerTasks(group, cfg.Engine, cfg.Store)
	registerRubrics(group, cfg.Engine, cfg.Store)
	registerResponses(group, cfg.Engine, cfg.Store, cfg.Gateway)
	registerReviews(group, cfg.Engine, cfg.Store, cfg.Gateway)
	registerReferences(group, cfg.Engine, cfg.Store)
	registerLedger(group, cfg.Store)
	registerExport(group, cfg.Engine, cfg.Store, cfg.AppCfg)

	return router, nil
}

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body: apiErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return newAPIError(http.StatusNotFound, "not_found", err.Error(), nil)
	}
	if errors.Is(err, persist.ErrSave) {
		return newAPIError(http.StatusInternalServerError, "save_failed", err.Error(), nil)
	}
	msg := err.Error()
	lowered := strings.ToLower(msg)
	switch {
	case strings.Contains(lowered, "invalid") || strings.Contains(lowered, "required") || strings.Contains(lowered, "duplicate"):
		return newAPIError(http.StatusBadRequest, "bad_request", msg, nil)
	default:
		return newAPIError(http.StatusInternalServerError, "internal_error", "internal error", map[string]any{"error": msg})
	}
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusUnprocessableEntity:
		return "validation_failed"
	case http.StatusServiceUnavailable:
		return "gateway_unavailable"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

// softSave lets a mutation succeed over a failed snapshot save. The entity
// is returned; only other errors become API failures.
func softSave(err error) huma.StatusError {
	if err == nil || errors.Is(err, persist.ErrSave) {
		return nil
	}
	return handleError(err)
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

func registerStatus(api huma.API, st *store.Store) {
	huma.Register(api, huma.Operation{
		OperationID: "status",
		Method:      http.MethodGet,
		Path:        "/status",
		Summary:     "Workspace status",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body StatusResponse `json:"body"`
	}, error) {
		return &struct {
			Body StatusResponse `json:"body"`
		}{Body: StatusResponse{
			SchemaVersion: domain.SchemaVersion,
			Counts:        st.Counts(),
		}}, nil
	})
}

func registerTasks(api huma.API, e engine.Engine, st *store.Store) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-task",
		Method:        http.MethodPost,
		Path:          "/tasks",
		Summary:       "Create task",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct {
		Body CreateTaskRequest `json:"body"`
	}) (*struct {
		Body domain.Task `json:"body"`
	}, error) {
		opts := engine.TaskCreateOptions{
			Title:           input.Body.Title,
			Domain:          domain.Domain(input.Body.Domain),
			Jurisdiction:    input.Body.Jurisdiction,
			Stakeholders:    input.Body.Stakeholders,
			DeliverableType: domain.DeliverableType(input.Body.DeliverableType),
			Difficulty:      input.Body.Difficulty,
			PromptText:      input.Body.PromptText,
			RubricID:        input.Body.RubricID,
		}
		if input.Body.Constraints != nil {
			opts.Constraints = *input.Body.Constraints
		}
		t, err := e.CreateTask(opts)
		if serr := softSave(err); serr != nil {
			return nil, serr
		}
		return &struct {
			Body domain.Task `json:"body"`
		}{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks",
		Summary:     "List tasks",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []domain.Task `json:"body"`
	}, error) {
		return &struct {
			Body []domain.Task `json:"body"`
		}{Body: st.Tasks()}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-task",
		Method:      http.MethodGet,
		Path:        "/tasks/{id}",
		Summary:     "Get task",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body domain.Task `json:"body"`
	}, error) {
		t, err := st.TaskByID(input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Task `json:"body"`
		}{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-task",
		Method:      http.MethodPatch,
		Path:        "/tasks/{id}",
		Summary:     "Update task",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   string            `path:"id"`
		Body UpdateTaskRequest `json:"body"`
	}) (*struct {
		Body domain.Task `json:"body"`
	}, error) {
		opts := engine.TaskEditOptions{
			ID:           input.ID,
			Title:        input.Body.Title,
			Jurisdiction: input.Body.Jurisdiction,
			Stakeholders: input.Body.Stakeholders,
			Constraints:  input.Body.Constraints,
			Difficulty:   input.Body.Difficulty,
			PromptText:   input.Body.PromptText,
			RubricID:     input.Body.RubricID,
		}
		if input.Body.Domain != nil {
			d := domain.Domain(*input.Body.Domain)
			opts.Domain = &d
		}
		if input.Body.DeliverableType != nil {
			dt := domain.DeliverableType(*input.Body.DeliverableType)
			opts.DeliverableType = &dt
		}
		t, err := e.EditTask(opts)
		if serr := softSave(err); serr != nil {
			return nil, serr
		}
		return &struct {
			Body domain.Task `json:"body"`
		}{Body: t}, nil
	})
}

func registerRubrics(api huma.API, e engine.Engine, st *store.Store) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-rubric",
		Method:        http.MethodPost,
		Path:          "/rubrics",
		Summary:       "Create rubric",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body CreateRubricRequest `json:"body"`
	}) (*struct {
		Body domain.Rubric `json:"body"`
	}, error) {
		r, err := e.CreateRubric(engine.RubricCreateOptions{
			Name:         input.Body.Name,
			Type:         input.Body.Type,
			Criteria:     input.Body.Criteria,
			HardFails:    input.Body.HardFails,
			FailureModes: input.Body.FailureModes,
		})
		if serr := softSave(err); serr != nil {
			return nil, serr
		}
		return &struct {
			Body domain.Rubric `json:"body"`
		}{Body: r}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-rubrics",
		Method:      http.MethodGet,
		Path:        "/rubrics",
		Summary:     "List rubrics",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []domain.Rubric `json:"body"`
	}, error) {
		return &struct {
			Body []domain.Rubric `json:"body"`
		}{Body: st.Rubrics()}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-rubric",
		Method:      http.MethodGet,
		Path:        "/rubrics/{id}",
		Summary:     "Get rubric",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body domain.Rubric `json:"body"`
	}, error) {
		r, err := st.RubricByID(input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Rubric `json:"body"`
		}{Body: r}, nil
	})
}

func registerResponses(api huma.API, e engine.Engine, st *store.Store, gw gateway.Gateway) {
	huma.Register(api, huma.Operation{
		OperationID:   "generate-response",
		Method:        http.MethodPost,
		Path:          "/tasks/{id}/generate",
		Summary:       "Generate a response for a task",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusNotFound, http.StatusServiceUnavailable, http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body domain.Response `json:"body"`
	}, error) {
		if gw == nil {
			return nil, newAPIError(http.StatusServiceUnavailable, "gateway_unavailable", "generation gateway not configured", nil)
		}
		t, err := st.TaskByID(input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		text, err := gw.Generate(ctx, t)
		if err != nil {
			return nil, newAPIError(http.StatusBadGateway, "generation_failed", err.Error(), nil)
		}
		modelInfo := ""
		if c, ok := gw.(*gateway.Client); ok {
			modelInfo = c.ModelInfo()
		}
		res, err := e.RecordResponse(engine.ResponseRecordOptions{
			TaskID:    t.ID,
			ModelInfo: modelInfo,
			Text:      text,
		})
		if serr := softSave(err); serr != nil {
			return nil, serr
		}
		return &struct {
			Body domain.Response `json:"body"`
		}{Body: res}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-responses",
		Method:      http.MethodGet,
		Path:        "/responses",
		Summary:     "List responses",
	}, func(ctx context.Context, input *struct {
		TaskID string `query:"task_id"`
	}) (*struct {
		Body []domain.Response `json:"body"`
	}, error) {
		items := st.Responses()
		if input.TaskID != "" {
			items = st.ResponsesForTask(input.TaskID)
			if items == nil {
				items = []domain.Response{}
			}
		}
		return &struct {
			Body []domain.Response `json:"body"`
		}{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-response",
		Method:      http.MethodGet,
		Path:        "/responses/{id}",
		Summary:     "Get response",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body domain.Response `json:"body"`
	}, error) {
		r, err := st.ResponseByID(input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Response `json:"body"`
		}{Body: r}, nil
	})
}

func registerReviews(api huma.API, e engine.Engine, st *store.Store, gw gateway.Gateway) {
	huma.Register(api, huma.Operation{
		OperationID:   "score-response",
		Method:        http.MethodPost,
		Path:          "/responses/{id}/reviews",
		Summary:       "Evaluate a response against a rubric",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound, http.StatusServiceUnavailable},
	}, func(ctx context.Context, input *struct {
		ID   string              `path:"id"`
		Body CreateReviewRequest `json:"body"`
	}) (*struct {
		Body domain.Review `json:"body"`
	}, error) {
		if gw == nil {
			return nil, newAPIError(http.StatusServiceUnavailable, "gateway_unavailable", "evaluation gateway not configured", nil)
		}
		res, err := st.ResponseByID(input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		task, err := st.TaskByID(res.TaskID)
		if err != nil {
			return nil, handleError(err)
		}
		rubricID := input.Body.RubricID
		if rubricID == "" {
			rubricID = task.RubricID
		}
		var rubric domain.Rubric
		if rubricID != "" {
			rubric, err = st.RubricByID(rubricID)
		} else if all := st.Rubrics(); len(all) > 0 {
			rubric = all[0]
		} else {
			err = store.ErrNotFound
		}
		if err != nil {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "no rubric available for evaluation", nil)
		}
		result, err := gw.Evaluate(ctx, task, rubric, res.Text)
		if err != nil {
			return nil, newAPIError(http.StatusBadGateway, "evaluation_failed", err.Error(), nil)
		}
		rev, err := e.RecordReview(engine.ReviewRecordOptions{
			ResponseID: res.ID,
			RubricID:   rubric.ID,
			Result:     result,
		})
		if serr := softSave(err); serr != nil {
			return nil, serr
		}
		return &struct {
			Body domain.Review `json:"body"`
		}{Body: rev}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-reviews",
		Method:      http.MethodGet,
		Path:        "/reviews",
		Summary:     "List reviews",
	}, func(ctx context.Context, input *struct {
		ResponseID string `query:"response_id"`
	}) (*struct {
		Body []domain.Review `json:"body"`
	}, error) {
		items := st.Reviews()
		if input.ResponseID != "" {
			items = st.ReviewsForResponse(input.ResponseID)
			if items == nil {
				items = []domain.Review{}
			}
		}
		return &struct {
			Body []domain.Review `json:"body"`
		}{Body: items}, nil
	})
}

func registerReferences(api huma.API, e engine.Engine, st *store.Store) {
	huma.Register(api, huma.Operation{
		OperationID:   "write-reference",
		Method:        http.MethodPost,
		Path:          "/tasks/{id}/references",
		Summary:       "Store a reference text for a task",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   string                 `path:"id"`
		Body CreateReferenceRequest `json:"body"`
	}) (*struct {
		Body domain.Reference `json:"body"`
	}, error) {
		ref, err := e.WriteReference(engine.ReferenceWriteOptions{
			TaskID: input.ID,
			Text:   input.Body.Text,
			Style:  domain.ReferenceStyle(input.Body.Style),
		})
		if serr := softSave(err); serr != nil {
			return nil, serr
		}
		return &struct {
			Body domain.Reference `json:"body"`
		}{Body: ref}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-references",
		Method:      http.MethodGet,
		Path:        "/references",
		Summary:     "List references",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []domain.Reference `json:"body"`
	}, error) {
		return &struct {
			Body []domain.Reference `json:"body"`
		}{Body: st.References()}, nil
	})
}

func registerLedger(api huma.API, st *store.Store) {
	huma.Register(api, huma.Operation{
		OperationID: "list-ledger",
		Method:      http.MethodGet,
		Path:        "/ledger",
		Summary:     "Recent ledger events, newest first",
	}, func(ctx context.Context, input *struct {
		Limit int `query:"limit" default:"50"`
	}) (*struct {
		Body []domain.LedgerEvent `json:"body"`
	}, error) {
		return &struct {
			Body []domain.LedgerEvent `json:"body"`
		}{Body: ledger.Recent(st.Ledger(), input.Limit)}, nil
	})
}

func registerExport(api huma.API, e engine.Engine, st *store.Store, appCfg *config.Config) {
	huma.Register(api, huma.Operation{
		OperationID:   "export-dataset",
		Method:        http.MethodPost,
		Path:          "/export",
		Summary:       "Export the dataset",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct {
		Body ExportRequest `json:"body"`
	}) (*struct {
		Body ExportResponse `json:"body"`
	}, error) {
		dir := "."
		if appCfg != nil && appCfg.Export.Dir != "" {
			dir = appCfg.Export.Dir
		}
		now := time.Now()
		var path string
		var err error
		switch input.Body.Format {
		case "csv":
			path, err = export.WriteCSV(dir, st.Snapshot(), now)
		case "json":
			path, err = export.WriteJSON(dir, st.Snapshot(), now)
		default:
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "format must be json or csv", nil)
		}
		if err != nil {
			return nil, handleError(err)
		}
		evt, err := e.RecordExport(input.Body.Format)
		if serr := softSave(err); serr != nil {
			return nil, serr
		}
		return &struct {
			Body ExportResponse `json:"body"`
		}{Body: ExportResponse{Path: filepath.ToSlash(path), Event: evt}}, nil
	})
}
