package models

import (
	"time"
)

// Genre values tracked on a user account.
const (
	GenreMale   = "M"
	GenreFemale = "F"
)

// Account classification values.
const (
	AccountIndividual   = "IND"
	AccountOrganization = "ORG"
)

// User represents an account in the cadastral registry. Individuals and
// organizations share the same record; organization-specific fields stay
// empty for individuals.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Username *string `gorm:"uniqueIndex;size:50" json:"username,omitempty"`
	Email    string  `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password string  `gorm:"size:255;not null" json:"-"` // bcrypt hash, never exposed

	Genre         string     `gorm:"size:1;default:M" json:"genre"`
	DateNaissance *time.Time `json:"date_naissance,omitempty"`

	// Identity attributes, each globally unique. Uniqueness is enforced by
	// the storage layer; concurrent duplicates surface as constraint errors.
	IDCadastrale string `gorm:"uniqueIndex;size:50;not null" json:"id_cadastrale"`
	NumCNI       string `gorm:"uniqueIndex;size:50;not null" json:"num_cni"`
	NumTelephone string `gorm:"uniqueIndex;size:9;not null" json:"num_telephone"`
	Addresse     string `gorm:"size:255" json:"addresse"`

	AccountType     string `gorm:"size:3;default:IND" json:"account_type"`
	Domaine         string `gorm:"size:100" json:"domaine,omitempty"`
	NomOrganization string `gorm:"size:100" json:"nom_organization,omitempty"`

	IsActive    bool `gorm:"default:true" json:"is_active"`
	IsStaff     bool `gorm:"default:false" json:"is_staff"`
	IsSuperuser bool `gorm:"default:false" json:"is_superuser"`

	Roles []Role `gorm:"many2many:user_roles;" json:"roles,omitempty"`
}

// HasRole reports whether the user belongs to the named role.
// This is the single membership lookup used by every permission predicate.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// IsIndividual reports whether the account is an individual.
func (u *User) IsIndividual() bool { return u.AccountType == AccountIndividual }

// IsOrganization reports whether the account is an organization.
func (u *User) IsOrganization() bool { return u.AccountType == AccountOrganization }
