package api

import (
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/KBoadi/Ripple-server/pkg/ratelimit"
	"github.com/KBoadi/Ripple-server/service/auth"
	"github.com/KBoadi/Ripple-server/service/feed"
)

type APIServer struct {
	address string
	db      *gorm.DB
	limiter ratelimit.Limiter
}

func NewApiServer(address string, db *gorm.DB, limiter ratelimit.Limiter) *APIServer {
	return &APIServer{
		address: address,
		db:      db,
		limiter: limiter,
	}
}

func (s *APIServer) Run() error {
	router := mux.NewRouter()
	subrouter := router.PathPrefix("/api").Subrouter()

	authHandler := auth.NewHandler(s.db)
	authHandler.RegisterRoutes(subrouter)

	feedHandler := feed.NewHandler(s.db, s.limiter)
	feedHandler.RegisterRoutes(subrouter)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{corsOrigin()}),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
		handlers.AllowCredentials(),
	)

	var handler http.Handler = router
	handler = cors(handler)
	handler = handlers.CombinedLoggingHandler(os.Stdout, handler)
	handler = handlers.RecoveryHandler()(handler)

	logrus.Infof("Server running at %s", s.address)
	return http.ListenAndServe(s.address, handler)
}

func corsOrigin() string {
	if origin := os.Getenv("CORS_ORIGIN"); origin != "" {
		return origin
	}
	return "http://localhost:3000"
}
