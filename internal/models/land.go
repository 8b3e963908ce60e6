package models

import "time"

// Lotissement is a land subdivision, the top-level geographic container.
// Geometry is an opaque polygon (GeoJSON text) consumed by GIS tooling
// downstream; this service stores it without interpretation.
type Lotissement struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Addresse    string    `gorm:"size:255" json:"addresse"`
	Description string    `json:"description,omitempty"`
	Geometry    string    `gorm:"type:text" json:"geometry,omitempty"`
	Superficie  float64   `gorm:"default:0" json:"superficie"`
	Perimetre   float64   `gorm:"default:0" json:"perimetre"`

	Blocs []Bloc `gorm:"constraint:OnDelete:CASCADE" json:"blocs,omitempty"`
}

// Bloc is a block within a subdivision. Every bloc belongs to exactly one
// lotissement and is deleted with it.
type Bloc struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Name          string    `gorm:"size:100;not null" json:"name"`
	LotissementID uint      `gorm:"index;not null" json:"lotissement_id"`
	Description   string    `json:"description,omitempty"`
	Geometry      string    `gorm:"type:text" json:"geometry,omitempty"`
	Superficie    float64   `gorm:"default:0" json:"superficie"`
	Perimetre     float64   `gorm:"default:0" json:"perimetre"`

	Parcelles []Parcelle `gorm:"constraint:OnDelete:CASCADE" json:"parcelles,omitempty"`
}

// Parcelle is an individually owned land parcel. It belongs to exactly one
// bloc and one owning user; deleting either cascades to the parcelle.
type Parcelle struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	BlocID         uint      `gorm:"index;not null" json:"bloc_id"`
	ProprietaireID uint      `gorm:"index;not null" json:"proprietaire_id"`
	Proprietaire   *User     `gorm:"foreignKey:ProprietaireID;constraint:OnDelete:CASCADE" json:"proprietaire,omitempty"`
	Geometry       string    `gorm:"type:text" json:"geometry,omitempty"`
	Superficie     float64   `gorm:"default:0" json:"superficie"`
	Perimetre      float64   `gorm:"default:0" json:"perimetre"`

	Documents []Document `gorm:"constraint:OnDelete:CASCADE" json:"documents,omitempty"`
}

// GetOwnerID implements policy.Ownable.
func (p *Parcelle) GetOwnerID() uint { return p.ProprietaireID }
