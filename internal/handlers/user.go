package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/KAMDEMJERRY/cadastre-backend/internal/accounts"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/auth"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/gate"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/httpx"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/models"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/policy"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/roles"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/validation"
	"gorm.io/gorm"
)

type UserHandler struct {
	db   *gorm.DB
	svc  *accounts.Service
	gate *gate.Gate[*models.User]
}

func NewUserHandler(db *gorm.DB, svc *accounts.Service, g *gate.Gate[*models.User]) *UserHandler {
	return &UserHandler{db: db, svc: svc, gate: g}
}

// List returns all users, optionally narrowed by ?search= over the identity
// columns.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	q := h.db.Preload("Roles").Order("id")
	if search := r.URL.Query().Get("search"); search != "" {
		like := "%" + search + "%"
		q = q.Where(
			"username LIKE ? OR email LIKE ? OR num_cni LIKE ? OR nom_organization LIKE ? OR addresse LIKE ?",
			like, like, like, like, like,
		)
	}
	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "query_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, users)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		notFound(w)
		return
	}
	var user models.User
	if err := h.db.Preload("Roles").First(&user, id).Error; err != nil {
		notFound(w)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

// Me returns the authenticated caller.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, auth.CurrentUser(r.Context()))
}

func validateUserParams(p accounts.CreateUserParams, v validation.Violations) {
	validation.Required("email", p.Email, v)
	validation.Email("email", p.Email, v)
	validation.Phone("num_telephone", p.NumTelephone, v)
	validation.Choice("genre", p.Genre, []string{models.GenreMale, models.GenreFemale}, v)
	validation.Choice("account_type", p.AccountType, []string{models.AccountIndividual, models.AccountOrganization}, v)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !authorize(w, r, h.gate, gate.ActionCreate, policy.ResourceUser) {
		return
	}
	var p accounts.CreateUserParams
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validateUserParams(p, v)
	validation.Required("password", p.Password, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	user, err := h.svc.CreateUser(p)
	if err != nil {
		if accounts.IsUniqueViolation(err) {
			httpx.JSONError(w, http.StatusBadRequest, "duplicate_value", nil)
			return
		}
		if errors.Is(err, accounts.ErrEmailRequired) {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", validation.Violations{"email": "required"})
			return
		}
		httpx.JSONError(w, http.StatusBadRequest, "create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, user)
}

// updateUserParams are the mutable profile fields. Pointers distinguish
// "absent" from zero values for partial updates.
type updateUserParams struct {
	Username        *string `json:"username"`
	Genre           *string `json:"genre"`
	Addresse        *string `json:"addresse"`
	AccountType     *string `json:"account_type"`
	Domaine         *string `json:"domaine"`
	NomOrganization *string `json:"nom_organization"`
	IsActive        *bool   `json:"is_active"`
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !authorize(w, r, h.gate, gate.ActionUpdate, policy.ResourceUser) {
		return
	}
	id, ok := pathID(r)
	if !ok {
		notFound(w)
		return
	}
	var user models.User
	if err := h.db.Preload("Roles").First(&user, id).Error; err != nil {
		notFound(w)
		return
	}

	var p updateUserParams
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	updates := map[string]any{}
	if p.Username != nil {
		updates["username"] = *p.Username
	}
	if p.Genre != nil {
		validation.Choice("genre", *p.Genre, []string{models.GenreMale, models.GenreFemale}, v)
		updates["genre"] = *p.Genre
	}
	if p.Addresse != nil {
		updates["addresse"] = *p.Addresse
	}
	if p.AccountType != nil {
		validation.Choice("account_type", *p.AccountType, []string{models.AccountIndividual, models.AccountOrganization}, v)
		updates["account_type"] = *p.AccountType
	}
	if p.Domaine != nil {
		updates["domaine"] = *p.Domaine
	}
	if p.NomOrganization != nil {
		updates["nom_organization"] = *p.NomOrganization
	}
	if p.IsActive != nil {
		updates["is_active"] = *p.IsActive
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if len(updates) > 0 {
		if err := h.db.Model(&user).Updates(updates).Error; err != nil {
			if accounts.IsUniqueViolation(err) {
				httpx.JSONError(w, http.StatusBadRequest, "duplicate_value", nil)
				return
			}
			httpx.JSONError(w, http.StatusBadRequest, "update_failed", nil)
			return
		}
	}
	if err := h.db.Preload("Roles").First(&user, id).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "query_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

// Delete removes the user; owned parcelles cascade at the storage layer.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !authorize(w, r, h.gate, gate.ActionDelete, policy.ResourceUser) {
		return
	}
	id, ok := pathID(r)
	if !ok {
		notFound(w)
		return
	}
	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		notFound(w)
		return
	}
	if err := h.db.Delete(&user).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "delete_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// AssignRole adds the target user to a named role. Super administrators only.
func (h *UserHandler) AssignRole(w http.ResponseWriter, r *http.Request) {
	if !authorize(w, r, h.gate, gate.ActionAssignRole, policy.ResourceUser) {
		return
	}
	id, ok := pathID(r)
	if !ok {
		notFound(w)
		return
	}
	var body struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Role == "" {
		httpx.JSONError(w, http.StatusBadRequest, "role field is required", nil)
		return
	}
	user, err := h.svc.AssignRole(id, body.Role)
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrRoleNotFound):
			httpx.JSONError(w, http.StatusNotFound, fmt.Sprintf("role %q does not exist", body.Role), nil)
		case errors.Is(err, accounts.ErrUserNotFound):
			notFound(w)
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "assign_failed", nil)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"success": fmt.Sprintf("role %q assigned to %s", body.Role, user.Email),
		"user":    user,
	})
}

func (h *UserHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

// Deactivate flips the active flag off. A super administrator account can
// only be deactivated by another super administrator.
func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *UserHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	if !authorize(w, r, h.gate, gate.ActionUpdate, policy.ResourceUser) {
		return
	}
	id, ok := pathID(r)
	if !ok {
		notFound(w)
		return
	}
	if !active {
		var target models.User
		if err := h.db.Preload("Roles").First(&target, id).Error; err != nil {
			notFound(w)
			return
		}
		caller := auth.CurrentUser(r.Context())
		if target.HasRole(roles.SuperAdministrateurs) && !policy.IsSuperAdministrateur(caller) {
			httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
			return
		}
	}
	user, err := h.svc.SetActive(id, active)
	if err != nil {
		if errors.Is(err, accounts.ErrUserNotFound) {
			notFound(w)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "update_failed", nil)
		return
	}
	status := "account deactivated"
	if active {
		status = "account activated"
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": status, "user": user})
}

// Stats aggregates user counts over the caller-visible set: administrators
// see global numbers, everyone else their own slice.
func (h *UserHandler) Stats(w http.ResponseWriter, r *http.Request) {
	caller := auth.CurrentUser(r.Context())
	stats, err := h.svc.ComputeStats(policy.OwnedVisibility(caller, "id"))
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "stats_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

// Individuals lists individual accounts.
func (h *UserHandler) Individuals(w http.ResponseWriter, r *http.Request) {
	h.listByAccountType(w, r, models.AccountIndividual)
}

// Organizations lists organization accounts.
func (h *UserHandler) Organizations(w http.ResponseWriter, r *http.Request) {
	h.listByAccountType(w, r, models.AccountOrganization)
}

func (h *UserHandler) listByAccountType(w http.ResponseWriter, r *http.Request, accountType string) {
	if !policy.IsAdministrateurCadastralOrSuperAdmin(auth.CurrentUser(r.Context())) {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return
	}
	var users []models.User
	if err := h.db.Preload("Roles").Where("account_type = ?", accountType).Order("id").Find(&users).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "query_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, users)
}
