// Package roles defines the closed set of role names used for authorization.
// Role membership is checked through models.User.HasRole with these
// constants; no other string comparison of role names should exist.
package roles

// Role names, matching the seeded rows in the roles table.
const (
	SuperAdministrateurs      = "super_administrateurs"
	AdministrateursCadastraux = "administrateurs_cadastraux"
	Proprietaires             = "proprietaires"
)

// All returns every known role name, in seeding order.
func All() []string {
	return []string{SuperAdministrateurs, AdministrateursCadastraux, Proprietaires}
}

// IsValid reports whether name is one of the known roles.
func IsValid(name string) bool {
	switch name {
	case SuperAdministrateurs, AdministrateursCadastraux, Proprietaires:
		return true
	}
	return false
}
