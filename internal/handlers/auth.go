package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/KAMDEMJERRY/cadastre-backend/internal/accounts"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/auth"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/httpx"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/models"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/roles"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/validation"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db  *gorm.DB
	svc *accounts.Service
}

func NewAuthHandler(db *gorm.DB, svc *accounts.Service) *AuthHandler {
	return &AuthHandler{db: db, svc: svc}
}

// Register is the self-service provisioning path. New accounts are enrolled
// as proprietaires and logged in immediately.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var p accounts.CreateUserParams
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	// Self-service never grants elevated flags.
	p.IsStaff = nil
	p.IsSuperuser = nil

	v := validation.Violations{}
	validateUserParams(p, v)
	validation.Required("password", p.Password, v)
	validation.Required("num_cni", p.NumCNI, v)
	validation.Required("id_cadastrale", p.IDCadastrale, v)
	validation.Required("num_telephone", p.NumTelephone, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	// Creation and enrollment commit together; a failed enrollment leaves
	// no account behind.
	user, err := h.svc.Register(p, roles.Proprietaires)
	if err != nil {
		switch {
		case accounts.IsUniqueViolation(err):
			httpx.JSONError(w, http.StatusBadRequest, "duplicate_value", nil)
		case errors.Is(err, accounts.ErrRoleNotFound):
			// Roles are seeded at service start; their absence is a
			// deployment problem, not a client error.
			httpx.JSONError(w, http.StatusInternalServerError, "roles_not_bootstrapped", nil)
		default:
			httpx.JSONError(w, http.StatusBadRequest, "create_failed", nil)
		}
		return
	}
	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if body.Email == "" || body.Password == "" {
		httpx.JSONError(w, http.StatusBadRequest, "email and password required", nil)
		return
	}
	var user models.User
	if err := h.db.Preload("Roles").Where("email = ?", accounts.NormalizeEmail(body.Email)).First(&user).Error; err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	if !user.IsActive {
		httpx.JSONError(w, http.StatusUnauthorized, "account deactivated", nil)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(body.Password)) != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
