package policy

import (
	"github.com/KAMDEMJERRY/cadastre-backend/internal/models"
	"gorm.io/gorm"
)

// Ownable is implemented by records that trace back to one owning user.
type Ownable interface {
	GetOwnerID() uint
}

// OwnedVisibility returns a GORM scope narrowing a query to the records
// visible to the caller:
//
//  1. unauthenticated caller: empty set
//  2. superuser or cadastral administrator: full set
//  3. anyone else: records whose ownerColumn equals the caller's id
//
// The same scope must be applied to list queries and single-record lookups,
// so a record outside the visible set reads as not-found rather than
// forbidden.
func OwnedVisibility(caller *models.User, ownerColumn string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if caller == nil {
			return db.Where("1 = 0")
		}
		if IsAdministrateurCadastral(caller) || caller.IsSuperuser {
			return db
		}
		return db.Where(ownerColumn+" = ?", caller.ID)
	}
}

// ParcelleVisibility scopes parcelle queries by ownership.
func ParcelleVisibility(caller *models.User) func(*gorm.DB) *gorm.DB {
	return OwnedVisibility(caller, "proprietaire_id")
}

// OwnsParcelle reports whether the caller is the owner of the parcelle.
// Administrators do not own other users' parcelles; use the visibility scope
// for read access instead.
func OwnsParcelle(caller *models.User, p Ownable) bool {
	return caller != nil && p != nil && p.GetOwnerID() == caller.ID
}
