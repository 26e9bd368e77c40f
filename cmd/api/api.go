package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/anurajthakur333/backend/cmd/config"
	"github.com/anurajthakur333/backend/cmd/metrics"
	"github.com/anurajthakur333/backend/cmd/utils"
	"github.com/anurajthakur333/backend/cmd/worker"
	"github.com/anurajthakur333/backend/service/media"
	"github.com/anurajthakur333/backend/service/notify"
	"github.com/anurajthakur333/backend/service/transactions"
	"github.com/anurajthakur333/backend/service/user"
)

type APIServer struct {
	address string
	db      *gorm.DB
	cfg     config.Config
	pool    *worker.Pool

	srv     *http.Server
	started time.Time
}

func NewApiServer(address string, db *gorm.DB, cfg config.Config, pool *worker.Pool) *APIServer {
	return &APIServer{
		address: address,
		db:      db,
		cfg:     cfg,
		pool:    pool,
		started: time.Now(),
	}
}

func (s *APIServer) Run() error {
	router := mux.NewRouter()
	router.Use(RequestLogger, Recover, metrics.Middleware)

	router.HandleFunc("/", s.handleRoot).Methods("GET")
	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	subrouter := router.PathPrefix("/api").Subrouter()

	store := transactions.NewGormStore(s.db)

	var notifier transactions.Notifier
	if mailer := notify.NewMailer(s.cfg); mailer != nil {
		notifier = mailer
	}

	txHandler := transactions.NewHandler(store, notifier, s.cfg.IsProduction())
	txHandler.RegisterRoutes(subrouter)

	identity := user.NewClerkClient(s.cfg.ClerkAPIURL, s.cfg.ClerkSecretKey)
	userHandler := user.NewHandler(identity, store, s.pool)
	userHandler.RegisterRoutes(subrouter)

	mediaHandler, err := media.NewHandler(s.cfg)
	if err != nil {
		return err
	}
	mediaHandler.RegisterRoutes(subrouter)

	s.srv = &http.Server{
		Addr:              s.address,
		Handler:           s.corsHandler()(router),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logrus.WithField("address", s.address).Info("server running")
	return s.srv.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *APIServer) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// corsHandler restricts browsers to the configured frontend origin in
// production and stays permissive everywhere else.
func (s *APIServer) corsHandler() func(http.Handler) http.Handler {
	origins := []string{"*"}
	if s.cfg.IsProduction() && s.cfg.FrontendURL != "" {
		origins = []string{s.cfg.FrontendURL}
	}

	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)
}

func (s *APIServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "SellMyPi API is running",
	})
}

func (s *APIServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"uptime":      time.Since(s.started).Seconds(),
		"environment": s.cfg.Env,
	})
}
