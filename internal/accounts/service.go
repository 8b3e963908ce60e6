// Package accounts implements user provisioning, role assignment, account
// activation and the user statistics aggregation.
package accounts

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KAMDEMJERRY/cadastre-backend/internal/models"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/roles"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Sentinel errors surfaced to handlers.
var (
	ErrEmailRequired = errors.New("the email field must be set")
	ErrUserNotFound  = errors.New("user not found")
	ErrRoleNotFound  = errors.New("role not found")

	// ErrRoleNotBootstrapped is a configuration error: the
	// super_administrateurs role must exist before superusers can be
	// provisioned. Roles are seeded at service start, never on demand.
	ErrRoleNotBootstrapped = errors.New("super_administrateurs role does not exist; run role bootstrap")

	ErrStaffRequired     = errors.New("superuser must have is_staff=true")
	ErrSuperuserRequired = errors.New("superuser must have is_superuser=true")
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// CreateUserParams carries the writable user fields for both provisioning
// paths. IsStaff/IsSuperuser are tri-state so CreateSuperuser can tell
// "unset" apart from an explicit false.
type CreateUserParams struct {
	Email           string     `json:"email"`
	Password        string     `json:"password"`
	Username        string     `json:"username"`
	Genre           string     `json:"genre"`
	DateNaissance   *time.Time `json:"date_naissance"`
	NumCNI          string     `json:"num_cni"`
	IDCadastrale    string     `json:"id_cadastrale"`
	NumTelephone    string     `json:"num_telephone"`
	Addresse        string     `json:"addresse"`
	AccountType     string     `json:"account_type"`
	Domaine         string     `json:"domaine"`
	NomOrganization string     `json:"nom_organization"`
	IsStaff         *bool      `json:"is_staff"`
	IsSuperuser     *bool      `json:"is_superuser"`
}

// NormalizeEmail lowercases the domain part of the address, leaving the
// local part untouched. Idempotent.
func NormalizeEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

// CreateUser persists a new account with a bcrypt-hashed password.
// Email is mandatory and normalized; every other uniqueness rule is left to
// the storage layer so concurrent duplicates fail as constraint violations.
func (s *Service) CreateUser(p CreateUserParams) (*models.User, error) {
	if strings.TrimSpace(p.Email) == "" {
		return nil, ErrEmailRequired
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:           NormalizeEmail(p.Email),
		Password:        string(hash),
		Genre:           p.Genre,
		DateNaissance:   p.DateNaissance,
		NumCNI:          p.NumCNI,
		IDCadastrale:    p.IDCadastrale,
		NumTelephone:    p.NumTelephone,
		Addresse:        p.Addresse,
		AccountType:     p.AccountType,
		Domaine:         p.Domaine,
		NomOrganization: p.NomOrganization,
		IsActive:        true,
	}
	if p.Username != "" {
		user.Username = &p.Username
	}
	if user.Genre == "" {
		user.Genre = models.GenreMale
	}
	if user.AccountType == "" {
		user.AccountType = models.AccountIndividual
	}
	if p.IsStaff != nil {
		user.IsStaff = *p.IsStaff
	}
	if p.IsSuperuser != nil {
		user.IsSuperuser = *p.IsSuperuser
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateSuperuser provisions a staff superuser account. Explicitly passing
// is_staff=false or is_superuser=false is a validation error; unsupplied
// identity fields are derived from the email so the unique constraints hold.
// The account is enrolled in super_administrateurs, which must already exist.
func (s *Service) CreateSuperuser(p CreateUserParams) (*models.User, error) {
	if p.IsStaff != nil && !*p.IsStaff {
		return nil, ErrStaffRequired
	}
	if p.IsSuperuser != nil && !*p.IsSuperuser {
		return nil, ErrSuperuserRequired
	}
	if strings.TrimSpace(p.Email) == "" {
		return nil, ErrEmailRequired
	}

	t := true
	p.IsStaff = &t
	p.IsSuperuser = &t
	fillSuperuserDefaults(&p)

	var created *models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var role models.Role
		if err := tx.Where("name = ?", roles.SuperAdministrateurs).First(&role).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoleNotBootstrapped
			}
			return err
		}
		u, err := NewService(tx).CreateUser(p)
		if err != nil {
			return err
		}
		if err := tx.Model(u).Association("Roles").Append(&role); err != nil {
			return err
		}
		created = u
		return tx.Preload("Roles").First(created, u.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// fillSuperuserDefaults derives required-but-unsupplied identity fields from
// the email local part plus a random suffix, keeping them unique.
func fillSuperuserDefaults(p *CreateUserParams) {
	local := p.Email
	if at := strings.Index(local, "@"); at > 0 {
		local = local[:at]
	}
	id := uuid.New()
	suffix := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))[:8]

	if p.Username == "" {
		p.Username = "ADMIN_" + local
	}
	if p.NumCNI == "" {
		p.NumCNI = "ADMIN_CNI_" + suffix
	}
	if p.IDCadastrale == "" {
		p.IDCadastrale = "ADMIN_CAD_" + suffix
	}
	if p.Addresse == "" {
		p.Addresse = "ADMIN_" + local
	}
	if p.NumTelephone == "" {
		// Synthetic number in the 6XXXXXXXX range.
		n := binary.BigEndian.Uint32(id[0:4]) % 100000000
		p.NumTelephone = fmt.Sprintf("6%08d", n)
	}
}

// Register provisions a new account and enrolls it in the named role in one
// transaction: if enrollment fails nothing is persisted, so a half-provisioned
// account is never observable.
func (s *Service) Register(p CreateUserParams, roleName string) (*models.User, error) {
	var created *models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		txSvc := NewService(tx)
		u, err := txSvc.CreateUser(p)
		if err != nil {
			return err
		}
		if created, err = txSvc.AssignRole(u.ID, roleName); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AssignRole adds the user to the named role. Assigning an already-held role
// is a no-op, not an error. Returns the updated user with memberships.
func (s *Service) AssignRole(userID uint, roleName string) (*models.User, error) {
	var user models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Roles").First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		var role models.Role
		if err := tx.Where("name = ?", roleName).First(&role).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoleNotFound
			}
			return err
		}
		if user.HasRole(role.Name) {
			return nil
		}
		if err := tx.Model(&user).Association("Roles").Append(&role); err != nil {
			return err
		}
		return tx.Preload("Roles").First(&user, userID).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SetActive toggles the active flag.
func (s *Service) SetActive(userID uint, active bool) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Roles").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if err := s.db.Model(&user).Update("is_active", active).Error; err != nil {
		return nil, err
	}
	user.IsActive = active
	return &user, nil
}

// Stats is the user aggregation returned by GET /users/stats.
type Stats struct {
	Total         int64            `json:"total"`
	Active        int64            `json:"active"`
	Individuals   int64            `json:"individuals"`
	Organizations int64            `json:"organizations"`
	Male          int64            `json:"male"`
	Female        int64            `json:"female"`
	Domaines      map[string]int64 `json:"domaines"`
}

// ComputeStats runs the grouped counts fresh on every call, over the query
// narrowed by scope (pass nil for the full set).
func (s *Service) ComputeStats(scope func(*gorm.DB) *gorm.DB) (*Stats, error) {
	base := func() *gorm.DB {
		q := s.db.Model(&models.User{})
		if scope != nil {
			q = q.Scopes(scope)
		}
		return q
	}

	stats := Stats{Domaines: map[string]int64{}}
	if err := base().Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := base().Where("is_active = ?", true).Count(&stats.Active).Error; err != nil {
		return nil, err
	}
	if err := base().Where("account_type = ?", models.AccountIndividual).Count(&stats.Individuals).Error; err != nil {
		return nil, err
	}
	if err := base().Where("account_type = ?", models.AccountOrganization).Count(&stats.Organizations).Error; err != nil {
		return nil, err
	}
	if err := base().Where("genre = ?", models.GenreMale).Count(&stats.Male).Error; err != nil {
		return nil, err
	}
	if err := base().Where("genre = ?", models.GenreFemale).Count(&stats.Female).Error; err != nil {
		return nil, err
	}

	rows, err := base().
		Where("domaine IS NOT NULL AND domaine <> ''").
		Select("domaine, count(*) as count").
		Group("domaine").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var domaine string
		var count int64
		if err := rows.Scan(&domaine, &count); err != nil {
			return nil, err
		}
		stats.Domaines[domaine] = count
	}
	return &stats, rows.Err()
}

// IsUniqueViolation reports whether err is a storage-layer uniqueness
// conflict (email, CNI, phone or cadastral id already taken).
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || // postgres
		strings.Contains(msg, "UNIQUE constraint failed") // sqlite
}
