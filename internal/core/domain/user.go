package domain

import "time"

// Role is the account discriminator fixed at registration.
type Role string

const (
	RoleFarmer Role = "farmer"
	RoleVet    Role = "vet"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleFarmer, RoleVet, RoleAdmin:
		return true
	}
	return false
}

// Species tracked in farm data.
const (
	SpeciesPigs    = "pigs"
	SpeciesPoultry = "poultry"
	SpeciesCattle  = "cattle"
	SpeciesGoats   = "goats"
)

// LivestockCount is a per-species counter pair.
type LivestockCount struct {
	Total      int `json:"total"`
	Vaccinated int `json:"vaccinated"`
}

// Livestock groups the counters of every tracked species.
type Livestock struct {
	Pigs    LivestockCount `json:"pigs"`
	Poultry LivestockCount `json:"poultry"`
	Cattle  LivestockCount `json:"cattle"`
	Goats   LivestockCount `json:"goats"`
}

// Counts returns the counters keyed by species name, in a stable order.
func (l Livestock) Counts() []SpeciesCount {
	return []SpeciesCount{
		{Species: SpeciesPigs, Count: l.Pigs},
		{Species: SpeciesPoultry, Count: l.Poultry},
		{Species: SpeciesCattle, Count: l.Cattle},
		{Species: SpeciesGoats, Count: l.Goats},
	}
}

// SpeciesCount pairs a species name with its counters.
type SpeciesCount struct {
	Species string
	Count   LivestockCount
}

// FarmData is replaced wholesale on update.
type FarmData struct {
	TotalAcres float64   `json:"totalAcres"`
	Livestock  Livestock `json:"livestock"`
}

// Check enforces non-negative counters and vaccinated <= total per species.
func (f FarmData) Check() error {
	var fields []FieldError
	if f.TotalAcres < 0 {
		fields = append(fields, FieldError{Field: "farmData.totalAcres", Message: "totalAcres cannot be negative"})
	}
	for _, sc := range f.Livestock.Counts() {
		path := "farmData.livestock." + sc.Species
		switch {
		case sc.Count.Total < 0:
			fields = append(fields, FieldError{Field: path + ".total", Message: sc.Species + " total cannot be negative"})
		case sc.Count.Vaccinated < 0:
			fields = append(fields, FieldError{Field: path + ".vaccinated", Message: sc.Species + " vaccinated cannot be negative"})
		case sc.Count.Vaccinated > sc.Count.Total:
			fields = append(fields, FieldError{Field: path + ".vaccinated", Message: sc.Species + " vaccinated cannot exceed total"})
		}
	}
	if len(fields) > 0 {
		return NewValidationError(fields...)
	}
	return nil
}

// Documents holds storage references for a vet's uploaded credentials.
type Documents struct {
	License string `json:"license,omitempty"`
	Degree  string `json:"degree,omitempty"`
	IDProof string `json:"idProof,omitempty"`
}

// Empty reports whether no document reference is set.
func (d Documents) Empty() bool {
	return d.License == "" && d.Degree == "" && d.IDProof == ""
}

// Refs lists the non-empty references.
func (d Documents) Refs() []string {
	var refs []string
	for _, r := range []string{d.License, d.Degree, d.IDProof} {
		if r != "" {
			refs = append(refs, r)
		}
	}
	return refs
}

// User models a registered farmer, vet or admin. PasswordHash never leaves
// the service layer in JSON.
type User struct {
	ID            string   `json:"_id"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Phone         string   `json:"phone"`
	PasswordHash  string   `json:"-"`
	Role          Role     `json:"role"`
	Address       string   `json:"address,omitempty"`
	AadhaarNumber string   `json:"aadhaarNumber,omitempty"`
	Village       string   `json:"village,omitempty"`
	ProfileImage  string   `json:"profileImage,omitempty"`
	FarmSize      string   `json:"farmSize,omitempty"`
	LivestockType string   `json:"livestockType,omitempty"`
	FarmData      FarmData `json:"farmData"`

	Qualification  string     `json:"qualification,omitempty"`
	Specialization string     `json:"specialization,omitempty"`
	Experience     string     `json:"experience,omitempty"`
	LicenseNumber  string     `json:"licenseNumber,omitempty"`
	Organization   string     `json:"organization,omitempty"`
	IsApproved     bool       `json:"isApproved,omitempty"`
	Documents      *Documents `json:"documents,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
