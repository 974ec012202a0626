// Package server exposes the grant platform over an HTTP JSON API.
package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"adaptgrant/internal/analytics"
	"adaptgrant/internal/evaluation"
	"adaptgrant/internal/notify"
	"adaptgrant/internal/storage"
	"adaptgrant/internal/store"
	"adaptgrant/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

const requestTimeout = 15 * time.Second

type Service struct {
	logger *logrus.Logger
	config *types.Config

	store      *store.Store
	evaluation *evaluation.Service
	analytics  *analytics.Service
	documents  *storage.Documents
	notifier   notify.Notifier

	cognito  CognitoAPI
	verifier TokenVerifier
	cookie   *securecookie.SecureCookie

	health func(ctx context.Context) error
	now    func() time.Time

	handler http.Handler
	server  *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	st *store.Store,
	evaluationService *evaluation.Service,
	analyticsService *analytics.Service,
	documents *storage.Documents,
	notifier notify.Notifier,
	cognito CognitoAPI,
	verifier TokenVerifier,
) (*Service, error) {
	mux := flow.New()

	hashKey, err := base64.StdEncoding.DecodeString(config.CookieHashKey)
	if err != nil {
		return nil, fmt.Errorf("decode COOKIE_HASH_KEY: %w", err)
	}
	blockKey, err := base64.StdEncoding.DecodeString(config.CookieBlockKey)
	if err != nil {
		return nil, fmt.Errorf("decode COOKIE_BLOCK_KEY: %w", err)
	}

	if notifier == nil {
		notifier = notify.Noop{}
	}

	s := &Service{
		logger:     logger,
		config:     config,
		store:      st,
		evaluation: evaluationService,
		analytics:  analyticsService,
		documents:  documents,
		notifier:   notifier,
		cognito:    cognito,
		verifier:   verifier,
		cookie:     securecookie.New(hashKey, blockKey),
		now:        time.Now,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	if st != nil {
		s.health = st.Ping
	}

	s.buildRouter(mux)

	// flow only runs middleware on matched routes, so slash redirects wrap the mux
	s.handler = s.StripTrailingSlash(mux)
	s.server.Handler = s.handler

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler returns the routed handler, for tests.
func (s *Service) Handler() http.Handler {
	return s.handler
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.LoggingMiddleware)

	r.NotFound = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.fail(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.fail(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)
	r.Handle("/metrics", promhttp.Handler(), http.MethodGet)

	r.HandleFunc("/auth/register", s.handlePostRegister, http.MethodPost)
	r.HandleFunc("/auth/confirm", s.handlePostConfirm, http.MethodPost)
	r.HandleFunc("/auth/login", s.handlePostLogin, http.MethodPost)
	r.HandleFunc("/auth/logout", s.handlePostLogout, http.MethodPost)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/me", s.handleGetMe, http.MethodGet)

		r.HandleFunc("/support/tickets", s.handlePostTicket, http.MethodPost)
		r.HandleFunc("/support/tickets", s.handleGetMyTickets, http.MethodGet)
		r.HandleFunc("/support/tickets/:ticketID", s.handleGetMyTicket, http.MethodGet)
		r.HandleFunc("/support/tickets/:ticketID/responses", s.handlePostMyTicketResponse, http.MethodPost)

		r.Group(func(r *flow.Mux) {
			r.Use(s.RequireRole(types.RoleApplicant))

			r.HandleFunc("/applications", s.handlePostApplication, http.MethodPost)
			r.HandleFunc("/applications", s.handleGetMyApplications, http.MethodGet)
			r.HandleFunc("/applications/:applicationID", s.handleGetMyApplication, http.MethodGet)
			r.HandleFunc("/applications/:applicationID/steps/:step", s.handlePutStep, http.MethodPut)
			r.HandleFunc("/applications/:applicationID/submit", s.handlePostSubmit, http.MethodPost)

			r.HandleFunc("/applications/:applicationID/documents", s.handlePostDocument, http.MethodPost)
			r.HandleFunc("/applications/:applicationID/documents", s.handleGetDocuments, http.MethodGet)
			r.HandleFunc("/applications/:applicationID/documents/:documentID", s.handleGetDocument, http.MethodGet)
			r.HandleFunc("/applications/:applicationID/documents/:documentID", s.handleDeleteDocument, http.MethodDelete)
		})

		r.Group(func(r *flow.Mux) {
			r.Use(s.RequireRole(types.EvaluatorRoles...))

			r.HandleFunc("/evaluator/assignments", s.handleGetAssignments, http.MethodGet)
			r.HandleFunc("/evaluator/applications/:applicationID/scores/:criterionID", s.handlePutScore, http.MethodPut)
		})

		r.Group(func(r *flow.Mux) {
			r.Use(s.RequireRole(types.RoleAdmin))

			r.HandleFunc("/admin/applications", s.handleAdminGetApplications, http.MethodGet)
			r.HandleFunc("/admin/applications/bulk-status", s.handleAdminBulkStatus, http.MethodPost)
			r.HandleFunc("/admin/applications/:applicationID", s.handleAdminGetApplication, http.MethodGet)
			r.HandleFunc("/admin/applications/:applicationID/status", s.handleAdminPostStatus, http.MethodPost)
			r.HandleFunc("/admin/applications/:applicationID/evaluate", s.handleAdminPostEvaluate, http.MethodPost)
			r.HandleFunc("/admin/applications/:applicationID/export.pdf", s.handleAdminGetApplicationPDF, http.MethodGet)

			r.HandleFunc("/admin/assignments/auto", s.handleAdminAutoAssign, http.MethodPost)
			r.HandleFunc("/admin/assignments", s.handleAdminAssign, http.MethodPost)

			r.HandleFunc("/admin/scoring-configs", s.handleAdminGetConfigs, http.MethodGet)
			r.HandleFunc("/admin/scoring-configs", s.handleAdminPostConfig, http.MethodPost)
			r.HandleFunc("/admin/scoring-configs/:configID", s.handleAdminGetConfig, http.MethodGet)
			r.HandleFunc("/admin/scoring-configs/:configID/criteria", s.handleAdminPutCriteria, http.MethodPut)
			r.HandleFunc("/admin/scoring-configs/:configID/activate", s.handleAdminActivateConfig, http.MethodPost)
			r.HandleFunc("/admin/scoring-configs/:configID/deactivate", s.handleAdminDeactivateConfig, http.MethodPost)
			r.HandleFunc("/admin/scoring-configs/:configID/clone", s.handleAdminCloneConfig, http.MethodPost)
			r.HandleFunc("/admin/reevaluate", s.handleAdminReevaluate, http.MethodPost)

			r.HandleFunc("/admin/evaluators", s.handleAdminGetEvaluators, http.MethodGet)
			r.HandleFunc("/admin/evaluators", s.handleAdminPostEvaluator, http.MethodPost)
			r.HandleFunc("/admin/evaluators/:evaluatorID", s.handleAdminPutEvaluator, http.MethodPut)

			r.HandleFunc("/admin/analytics/:report", s.handleAdminGetAnalytics, http.MethodGet)
			r.HandleFunc("/admin/export", s.handleAdminExport, http.MethodGet)

			r.HandleFunc("/admin/support/tickets", s.handleAdminGetTickets, http.MethodGet)
			r.HandleFunc("/admin/support/tickets/:ticketID/responses", s.handleAdminPostTicketResponse, http.MethodPost)
			r.HandleFunc("/admin/support/tickets/:ticketID/status", s.handleAdminPostTicketStatus, http.MethodPost)
			r.HandleFunc("/admin/support/tickets/:ticketID/assign", s.handleAdminPostTicketAssign, http.MethodPost)
		})
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.health(ctx); err != nil {
			s.logger.WithError(err).Error("health check failed")
			s.fail(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}

	s.ok(w, http.StatusOK, map[string]string{"status": "ok"})
}
