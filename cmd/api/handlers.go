package main

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/auditready/auditready-backend/internal/domain/errors"
	"github.com/auditready/auditready-backend/internal/infrastructure/auth"
	"github.com/auditready/auditready-backend/internal/service/benchmark"
)

// apiHandler is the thin operational API over the domain services. The
// customer-facing surface lives elsewhere; these endpoints serve internal
// tooling and the scheduled jobs' manual triggers.
type apiHandler struct {
	services services
	verifier *auth.Verifier
	logger   *zap.Logger
}

func (h *apiHandler) register(mux *http.ServeMux) {
	mux.HandleFunc("GET /standards", h.authorized(h.listStandards))
	mux.HandleFunc("GET /guidance/{unifiedID}", h.authorized(h.getPublishedGuidance))
	mux.HandleFunc("GET /benchmarks/{standardID}", h.authorized(h.aggregateBenchmarks))
	mux.HandleFunc("GET /benchmarks/{standardID}/focus", h.authorized(h.recommendFocus))
	mux.HandleFunc("POST /admin/reconcile", h.authorized(h.runReconcile))
	mux.HandleFunc("POST /admin/reseed-demo", h.authorized(h.reseedDemo))
}

// authorized verifies the bearer token and stashes nothing: handlers that
// need the actor re-parse the claims
func (h *apiHandler) authorized(next func(http.ResponseWriter, *http.Request, *auth.Claims)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		claims, err := h.verifier.VerifyToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		next(w, r, claims)
	}
}

func (h *apiHandler) listStandards(w http.ResponseWriter, r *http.Request, _ *auth.Claims) {
	activeOnly := r.URL.Query().Get("all") == ""
	result, err := h.services.library.ListStandards(r.Context(), activeOnly)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, result)
}

func (h *apiHandler) getPublishedGuidance(w http.ResponseWriter, r *http.Request, _ *auth.Claims) {
	unifiedID, err := uuid.Parse(r.PathValue("unifiedID"))
	if err != nil {
		http.Error(w, "invalid unified requirement id", http.StatusBadRequest)
		return
	}
	version, err := h.services.guidance.GetLatestPublished(r.Context(), unifiedID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, version)
}

func (h *apiHandler) aggregateBenchmarks(w http.ResponseWriter, r *http.Request, _ *auth.Claims) {
	standardID, err := uuid.Parse(r.PathValue("standardID"))
	if err != nil {
		http.Error(w, "invalid standard id", http.StatusBadRequest)
		return
	}
	cohorts, err := h.services.benchmark.AggregateFulfillment(r.Context(), benchmark.CohortQuery{
		StandardID:       standardID,
		IndustrySector:   r.URL.Query().Get("sector"),
		CompanySizeRange: r.URL.Query().Get("size"),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, cohorts)
}

func (h *apiHandler) recommendFocus(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	standardID, err := uuid.Parse(r.PathValue("standardID"))
	if err != nil {
		http.Error(w, "invalid standard id", http.StatusBadRequest)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	focus, err := h.services.benchmark.RecommendFocus(r.Context(), claims.OrganizationID, standardID, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, focus)
}

func (h *apiHandler) runReconcile(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	started := time.Now()
	report, err := h.services.mapper.BulkReconcile(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.logger.Info("reconcile triggered",
		zap.String("actor_id", claims.ActorID.String()),
		zap.Duration("took", time.Since(started)),
	)
	h.writeJSON(w, report)
}

func (h *apiHandler) reseedDemo(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	standardID, err := uuid.Parse(r.URL.Query().Get("standard"))
	if err != nil {
		http.Error(w, "invalid standard id", http.StatusBadRequest)
		return
	}
	result, err := h.services.orgreq.ReseedDemo(r.Context(), claims.OrganizationID, standardID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, result)
}

func (h *apiHandler) writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Warn("response encoding failed", zap.Error(err))
	}
}

func (h *apiHandler) writeError(w http.ResponseWriter, err error) {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		status := appErr.StatusCode
		if status == 0 {
			status = http.StatusInternalServerError
		}
		http.Error(w, appErr.Message, status)
		return
	}
	h.logger.Error("request failed", zap.Error(err))
	http.Error(w, "internal error", http.StatusInternalServerError)
}
