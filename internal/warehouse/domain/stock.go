package domain

import "time"

// Area is a named warehouse zone locations belong to.
type Area struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Location identifies a physical storage slot. Immutable once created;
// (area, bay, row, column) is the natural key and is unique at the data layer.
type Location struct {
	ID        string    `json:"id" db:"id"`
	AreaID    string    `json:"area_id" db:"area_id"`
	Bay       int       `json:"bay" db:"bay"`
	Row       int       `json:"row" db:"row_num"`
	Column    int       `json:"column" db:"col_num"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Batch is a medicine batch packages belong to.
type Batch struct {
	ID           string     `json:"id" db:"id"`
	BatchNumber  string     `json:"batch_number" db:"batch_number"`
	MedicineName string     `json:"medicine_name" db:"medicine_name"`
	ExpiryDate   *time.Time `json:"expiry_date,omitempty" db:"expiry_date"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Package is a countable unit of a batch. A nil LocationID means the package
// has been received but not yet put away.
type Package struct {
	ID         string    `json:"id" db:"id"`
	BatchID    string    `json:"batch_id" db:"batch_id"`
	Quantity   int       `json:"quantity" db:"quantity"`
	LocationID *string   `json:"location_id,omitempty" db:"location_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Arranged reports whether the package has been assigned a storage slot.
func (p *Package) Arranged() bool {
	return p.LocationID != nil
}
