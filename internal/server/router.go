// Package server wires routes, middleware and handler dependencies into the
// root http.Handler.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/KAMDEMJERRY/cadastre-backend/internal/accounts"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/auth"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/handlers"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/httpx"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/models"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/pdf"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/policy"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// New constructs the root handler with all routes and middleware applied.
func New(db *gorm.DB, log *logrus.Logger) http.Handler {
	// Sessions resolve to full user records with role memberships so the
	// permission predicates can run without further queries.
	auth.SetUserLoader(func(ctx context.Context, uid uint) (*models.User, error) {
		var user models.User
		if err := db.WithContext(ctx).Preload("Roles").First(&user, uid).Error; err != nil {
			return nil, err
		}
		return &user, nil
	})

	g := policy.NewGate()
	svc := accounts.NewService(db)
	pdfSvc := pdf.NewService()

	authHandler := handlers.NewAuthHandler(db, svc)
	userHandler := handlers.NewUserHandler(db, svc, g)
	lotHandler := handlers.NewLotissementHandler(db, g)
	blocHandler := handlers.NewBlocHandler(db, g)
	parcelleHandler := handlers.NewParcelleHandler(db, g, pdfSvc)
	docHandler := handlers.NewDocumentHandler(db, g)
	pdfHandler := handlers.NewPDFHandler(pdfSvc)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public auth endpoints
	mux.HandleFunc("POST /auth/register", authHandler.Register)
	mux.HandleFunc("POST /auth/login", authHandler.Login)
	mux.HandleFunc("POST /auth/logout", authHandler.Logout)

	// Everything below requires an authenticated caller; finer-grained
	// decisions happen at the gate inside each handler.
	protected := func(h http.HandlerFunc) http.Handler {
		return auth.RequireAuth(h)
	}

	// Users
	mux.Handle("GET /users", protected(userHandler.List))
	mux.Handle("POST /users", protected(userHandler.Create))
	mux.Handle("GET /users/me", protected(userHandler.Me))
	mux.Handle("GET /users/stats", protected(userHandler.Stats))
	mux.Handle("GET /users/individuals", protected(userHandler.Individuals))
	mux.Handle("GET /users/organizations", protected(userHandler.Organizations))
	mux.Handle("GET /users/{id}", protected(userHandler.Get))
	mux.Handle("PUT /users/{id}", protected(userHandler.Update))
	mux.Handle("DELETE /users/{id}", protected(userHandler.Delete))
	mux.Handle("POST /users/{id}/assign-role", protected(userHandler.AssignRole))
	mux.Handle("POST /users/{id}/activate", protected(userHandler.Activate))
	mux.Handle("POST /users/{id}/deactivate", protected(userHandler.Deactivate))

	// Lotissements
	mux.Handle("GET /lotissements", protected(lotHandler.List))
	mux.Handle("POST /lotissements", protected(lotHandler.Create))
	mux.Handle("GET /lotissements/stats", protected(lotHandler.Stats))
	mux.Handle("GET /lotissements/{id}", protected(lotHandler.Get))
	mux.Handle("PUT /lotissements/{id}", protected(lotHandler.Update))
	mux.Handle("DELETE /lotissements/{id}", protected(lotHandler.Delete))

	// Blocs
	mux.Handle("GET /blocs", protected(blocHandler.List))
	mux.Handle("POST /blocs", protected(blocHandler.Create))
	mux.Handle("GET /blocs/stats", protected(blocHandler.Stats))
	mux.Handle("GET /blocs/{id}", protected(blocHandler.Get))
	mux.Handle("PUT /blocs/{id}", protected(blocHandler.Update))
	mux.Handle("DELETE /blocs/{id}", protected(blocHandler.Delete))

	// Parcelles
	mux.Handle("GET /parcelles", protected(parcelleHandler.List))
	mux.Handle("POST /parcelles", protected(parcelleHandler.Create))
	mux.Handle("GET /parcelles/mine", protected(parcelleHandler.Mine))
	mux.Handle("GET /parcelles/{id}", protected(parcelleHandler.Get))
	mux.Handle("PUT /parcelles/{id}", protected(parcelleHandler.Update))
	mux.Handle("DELETE /parcelles/{id}", protected(parcelleHandler.Delete))
	mux.Handle("GET /parcelles/{id}/export", protected(parcelleHandler.Export))

	// Documents
	mux.Handle("GET /documents", protected(docHandler.ByParcelle))
	mux.Handle("POST /documents", protected(docHandler.Create))
	mux.Handle("DELETE /documents/{id}", protected(docHandler.Delete))

	// Global stats and report generation
	mux.Handle("GET /stats/global", protected(lotHandler.GlobalStats))
	mux.Handle("POST /pdf/generate", protected(pdfHandler.Generate))

	return withRecover(withLogging(auth.Middleware(mux), log), log)
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func withLogging(next http.Handler, log *logrus.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Info("request")
	})
}

func withRecover(next http.Handler, log *logrus.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.WithField("panic", rec).Error("handler panic")
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
