// Package policy holds the authorization rules of the cadastre: the role
// predicates gating mutations and the ownership scope deciding which records
// a caller may see at all.
package policy

import (
	"github.com/KAMDEMJERRY/cadastre-backend/internal/models"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/roles"
)

// The predicates below are pure functions of the caller. A nil caller means
// the request is unauthenticated and is always denied, never an error.

// IsSuperAdministrateur allows superusers and members of the
// super_administrateurs role.
func IsSuperAdministrateur(u *models.User) bool {
	return u != nil && (u.IsSuperuser || u.HasRole(roles.SuperAdministrateurs))
}

// IsAdministrateurCadastral allows members of the administrateurs_cadastraux
// role.
func IsAdministrateurCadastral(u *models.User) bool {
	return u != nil && u.HasRole(roles.AdministrateursCadastraux)
}

// IsProprietaire allows members of the proprietaires role.
func IsProprietaire(u *models.User) bool {
	return u != nil && u.HasRole(roles.Proprietaires)
}

// IsAdministrateurCadastralOrSuperAdmin is the canonical predicate for every
// create/update/delete on users and the land hierarchy.
func IsAdministrateurCadastralOrSuperAdmin(u *models.User) bool {
	return u != nil &&
		(u.IsSuperuser ||
			u.HasRole(roles.AdministrateursCadastraux) ||
			u.HasRole(roles.SuperAdministrateurs))
}

// IsAuthenticated allows any logged-in caller.
func IsAuthenticated(u *models.User) bool { return u != nil }
