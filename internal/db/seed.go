package db

import (
	"fmt"

	"github.com/KAMDEMJERRY/cadastre-backend/internal/accounts"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/models"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/roles"
	"gorm.io/gorm"
)

// EnsureRoles creates the three system roles if they do not exist yet.
// Every role-dependent operation assumes this ran at service start; roles
// are never created on demand elsewhere.
func EnsureRoles(conn *gorm.DB) error {
	for _, name := range roles.All() {
		role := models.Role{Name: name}
		if err := conn.Where("name = ?", name).FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("ensure role %q: %w", name, err)
		}
	}
	return nil
}

// SeedDefaultUsers provisions the development accounts: one regular owner
// and one super administrator. Safe to call repeatedly; existing emails are
// left untouched.
func SeedDefaultUsers(conn *gorm.DB) error {
	svc := accounts.NewService(conn)

	var count int64
	if err := conn.Model(&models.User{}).Where("email = ?", "user@example.com").Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		u, err := svc.CreateUser(accounts.CreateUserParams{
			Email:        "user@example.com",
			Password:     "Password123!",
			Username:     "utilisateur_normal",
			NumTelephone: "677889900",
			Addresse:     "123 Rue Principale, Ville",
			Genre:        models.GenreMale,
			NumCNI:       "1234567890AB",
			IDCadastrale: "CAD123456789",
			AccountType:  models.AccountIndividual,
		})
		if err != nil {
			return fmt.Errorf("seed regular user: %w", err)
		}
		if _, err := svc.AssignRole(u.ID, roles.Proprietaires); err != nil {
			return fmt.Errorf("seed regular user role: %w", err)
		}
	}

	if err := conn.Model(&models.User{}).Where("email = ?", "admin@example.com").Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		if _, err := svc.CreateSuperuser(accounts.CreateUserParams{
			Email:           "admin@example.com",
			Password:        "AdminPassword123!",
			Username:        "super_admin",
			NumTelephone:    "699887766",
			Addresse:        "Siege Administratif",
			Genre:           models.GenreMale,
			NumCNI:          "ADMIN_CNI_001",
			IDCadastrale:    "ADMIN_CAD_001",
			AccountType:     models.AccountOrganization,
			NomOrganization: "Administration Systeme",
			Domaine:         "Informatique",
		}); err != nil {
			return fmt.Errorf("seed super admin: %w", err)
		}
	}
	return nil
}
