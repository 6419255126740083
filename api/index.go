package handler

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/arnavshah/housekeeping-api-go/pkg/config"
	"github.com/arnavshah/housekeeping-api-go/pkg/database"
	"github.com/arnavshah/housekeeping-api-go/pkg/handlers"
	"github.com/arnavshah/housekeeping-api-go/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	r     *gin.Engine
	ready sync.Once
)

func load() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if r, err = setup(cfg); err != nil {
		panic(err)
	}
}

// setup refuses to serve with an invalid configuration, then wires the router
func setup(cfg *config.Config) (*gin.Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "housekeeping-api")
	if err != nil {
		return nil, err
	}

	db, err := database.InitDB(cfg, log)
	if err != nil {
		return nil, err
	}

	h := handlers.New(cfg, db, log)
	if err := h.Auth.EnsureAdminExists(db, cfg.Admin, log); err != nil {
		log.Error("could not ensure admin", zap.Error(err))
	}

	gin.SetMode(gin.ReleaseMode)
	return h.NewRouter(), nil
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	ready.Do(load)
	r.ServeHTTP(w, req)
}
