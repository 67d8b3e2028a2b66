package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"freelance-marketplace/internal/api/handlers"
	"freelance-marketplace/internal/models"
	"freelance-marketplace/internal/services"
	"freelance-marketplace/internal/transport/dto"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupJobRouter(actor *models.Actor, svc *MockJobService) *gin.Engine {
	router := newTestRouter(actor)
	h := handlers.NewJobHandler(svc, validator.New())
	router.POST("/jobs", h.CreateJob)
	router.GET("/jobs", h.ListJobs)
	router.GET("/jobs/my", h.ListMyJobs)
	router.GET("/jobs/:id", h.GetJobByID)
	router.PUT("/jobs/:id", h.EditJob)
	router.DELETE("/jobs/:id", h.DeleteJob)
	router.POST("/jobs/:id/repost", h.RepostJob)
	return router
}

func sampleJob(clientID uuid.UUID) *models.Job {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	return &models.Job{
		ID:          uuid.New(),
		Title:       "Landing page",
		Description: "Build a landing page",
		Budget:      500,
		Deadline:    time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		Status:      models.JobStatusOpen,
		ClientID:    clientID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) handlers.ErrorResponse {
	t.Helper()
	var resp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCreateJobHandler(t *testing.T) {
	client := models.Actor{ID: uuid.New(), Role: models.RoleClient, Verified: true}

	tests := []struct {
		name       string
		body       interface{}
		setup      func(m *MockJobService)
		wantStatus int
		wantKind   string
	}{
		{
			name: "created",
			body: gin.H{"title": "Landing page", "description": "Build it", "budget": 500, "deadline": "2025-04-01"},
			setup: func(m *MockJobService) {
				m.On("CreateJob", mock.Anything, mock.MatchedBy(func(req *dto.CreateJobRequest) bool {
					return req.Actor == client && req.Budget == 500 && req.Deadline.Format(dto.DateLayout) == "2025-04-01"
				})).Return(sampleJob(client.ID), nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "malformed json",
			body:       `{"title":`,
			wantStatus: http.StatusBadRequest,
			wantKind:   services.KindValidation,
		},
		{
			name:       "missing budget",
			body:       gin.H{"title": "Landing page", "description": "Build it", "deadline": "2025-04-01"},
			wantStatus: http.StatusBadRequest,
			wantKind:   services.KindValidation,
		},
		{
			name:       "bad deadline format",
			body:       gin.H{"title": "x", "description": "y", "budget": 10, "deadline": "April 1st"},
			wantStatus: http.StatusBadRequest,
			wantKind:   services.KindValidation,
		},
		{
			name: "unverified client",
			body: gin.H{"title": "Landing page", "description": "Build it", "budget": 500, "deadline": "2025-04-01"},
			setup: func(m *MockJobService) {
				m.On("CreateJob", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("%w: account is not verified", services.ErrForbidden))
			},
			wantStatus: http.StatusForbidden,
			wantKind:   services.KindAuthorization,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockJobService)
			if tt.setup != nil {
				tt.setup(svc)
			}
			w := doJSON(t, setupJobRouter(&client, svc), http.MethodPost, "/jobs", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, decodeError(t, w).Kind)
			} else {
				var resp dto.JobResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, "open", resp.Status)
				assert.Equal(t, "2025-04-01", resp.Deadline.Format(dto.DateLayout))
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestCreateJobHandler_NoActor(t *testing.T) {
	svc := new(MockJobService)
	w := doJSON(t, setupJobRouter(nil, svc), http.MethodPost, "/jobs", gin.H{"title": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "CreateJob", mock.Anything, mock.Anything)
}

func TestListJobsHandler_QueryBinding(t *testing.T) {
	actor := models.Actor{ID: uuid.New(), Role: models.RoleFreelancer, Verified: true}
	svc := new(MockJobService)
	svc.On("ListJobs", mock.Anything, mock.MatchedBy(func(req *dto.ListJobsRequest) bool {
		return req.Category == "design" && req.MinBudget != nil && *req.MinBudget == 100 &&
			req.Status != nil && *req.Status == models.JobStatusCompleted && req.Limit == 5
	})).Return([]models.Job{*sampleJob(uuid.New())}, nil)

	w := doJSON(t, setupJobRouter(&actor, svc), http.MethodGet, "/jobs?category=design&min_budget=100&status=completed&limit=5", nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp []dto.JobResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 1)
	svc.AssertExpectations(t)
}

func TestListJobsHandler_MaxBudgetOnly(t *testing.T) {
	actor := models.Actor{ID: uuid.New(), Role: models.RoleFreelancer, Verified: true}
	svc := new(MockJobService)
	svc.On("ListJobs", mock.Anything, mock.MatchedBy(func(req *dto.ListJobsRequest) bool {
		return req.MinBudget == nil && req.MaxBudget != nil && *req.MaxBudget == 500
	})).Return([]models.Job{}, nil)

	w := doJSON(t, setupJobRouter(&actor, svc), http.MethodGet, "/jobs?max_budget=500", nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	svc.AssertExpectations(t)
}

func TestListJobsHandler_InvertedBudgetRange(t *testing.T) {
	actor := models.Actor{ID: uuid.New(), Role: models.RoleFreelancer, Verified: true}
	svc := new(MockJobService)
	svc.On("ListJobs", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: min_budget cannot exceed max_budget", services.ErrValidation))

	w := doJSON(t, setupJobRouter(&actor, svc), http.MethodGet, "/jobs?min_budget=900&max_budget=500", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, services.KindValidation, decodeError(t, w).Kind)
}

func TestListJobsHandler_InvalidStatus(t *testing.T) {
	actor := models.Actor{ID: uuid.New(), Role: models.RoleFreelancer}
	svc := new(MockJobService)
	w := doJSON(t, setupJobRouter(&actor, svc), http.MethodGet, "/jobs?status=archived", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Details, "Status")
}

func TestGetJobByIDHandler(t *testing.T) {
	actor := models.Actor{ID: uuid.New(), Role: models.RoleClient, Verified: true}
	job := sampleJob(actor.ID)

	t.Run("found", func(t *testing.T) {
		svc := new(MockJobService)
		detail := &dto.JobDetailResponse{JobResponse: services.MapJobToResponse(job), Proposals: []dto.ProposalResponse{}}
		svc.On("GetJob", mock.Anything, &dto.GetJobByIDRequest{Actor: actor, ID: job.ID}).Return(detail, nil)

		w := doJSON(t, setupJobRouter(&actor, svc), http.MethodGet, "/jobs/"+job.ID.String(), nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"proposals":[]`)
		svc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		svc := new(MockJobService)
		w := doJSON(t, setupJobRouter(&actor, svc), http.MethodGet, "/jobs/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		svc := new(MockJobService)
		svc.On("GetJob", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("%w: job", services.ErrNotFound))
		w := doJSON(t, setupJobRouter(&actor, svc), http.MethodGet, "/jobs/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, services.KindNotFound, decodeError(t, w).Kind)
	})
}

func TestEditJobHandler_StateConflict(t *testing.T) {
	actor := models.Actor{ID: uuid.New(), Role: models.RoleClient, Verified: true}
	jobID := uuid.New()
	svc := new(MockJobService)
	svc.On("EditJob", mock.Anything, mock.MatchedBy(func(req *dto.EditJobRequest) bool {
		return req.JobID == jobID && req.Title != nil && *req.Title == "New title" && req.Budget == nil
	})).Return(nil, fmt.Errorf("%w: job is in-progress", services.ErrInvalidState))

	w := doJSON(t, setupJobRouter(&actor, svc), http.MethodPut, "/jobs/"+jobID.String(), gin.H{"title": "New title"})
	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, services.KindState, resp.Kind)
	assert.Contains(t, resp.Error, "in-progress")
	svc.AssertExpectations(t)
}

func TestDeleteAndRepostJobHandlers(t *testing.T) {
	admin := models.Actor{ID: uuid.New(), Role: models.RoleAdmin, Verified: true}
	jobID := uuid.New()
	svc := new(MockJobService)
	svc.On("DeleteJob", mock.Anything, &dto.JobActionRequest{Actor: admin, JobID: jobID}).Return(nil)
	reposted := sampleJob(uuid.New())
	svc.On("Repost", mock.Anything, &dto.JobActionRequest{Actor: admin, JobID: jobID}).Return(reposted, nil)

	router := setupJobRouter(&admin, svc)
	w := doJSON(t, router, http.MethodDelete, "/jobs/"+jobID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodPost, "/jobs/"+jobID.String()+"/repost", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestInternalErrorsAreMasked(t *testing.T) {
	actor := models.Actor{ID: uuid.New(), Role: models.RoleClient, Verified: true}
	svc := new(MockJobService)
	svc.On("ListMyJobs", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("pq: connection refused on 10.0.0.3"))

	w := doJSON(t, setupJobRouter(&actor, svc), http.MethodGet, "/jobs/my", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, services.KindInternal, resp.Kind)
	assert.NotContains(t, resp.Error, "10.0.0.3")
}

func TestStatusForKind(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, handlers.StatusForKind(services.KindValidation))
	assert.Equal(t, http.StatusForbidden, handlers.StatusForKind(services.KindAuthorization))
	assert.Equal(t, http.StatusConflict, handlers.StatusForKind(services.KindState))
	assert.Equal(t, http.StatusConflict, handlers.StatusForKind(services.KindConflict))
	assert.Equal(t, http.StatusNotFound, handlers.StatusForKind(services.KindNotFound))
	assert.Equal(t, http.StatusUnauthorized, handlers.StatusForKind(services.KindAuthentication))
	assert.Equal(t, http.StatusInternalServerError, handlers.StatusForKind("Unknown"))
}
