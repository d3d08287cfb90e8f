package models

// Profile, Clinic, Doctor and RegionSelection are the four configuration
// domains an actor fills in before the clinic is usable. Each table holds at
// most one row per actor.

type Profile struct {
	BaseUUIDModel
	ActorID  string  `gorm:"type:varchar(64);uniqueIndex;not null" json:"actorId"`
	FullName *string `gorm:"type:varchar(255)"                     json:"fullName"`
	Phone    *string `gorm:"type:varchar(64)"                      json:"phone"`
}

type Clinic struct {
	BaseUUIDModel
	ActorID string  `gorm:"type:varchar(64);uniqueIndex;not null" json:"actorId"`
	Name    *string `gorm:"type:varchar(255)"                     json:"name"`
	Address *string `gorm:"type:text"                             json:"address"`
	Phone   *string `gorm:"type:varchar(64)"                      json:"phone"`
}

type Doctor struct {
	BaseUUIDModel
	ActorID        string  `gorm:"type:varchar(64);uniqueIndex;not null" json:"actorId"`
	FullName       *string `gorm:"type:varchar(255)"                     json:"fullName"`
	Specialization *string `gorm:"type:varchar(255)"                     json:"specialization"`
	LicenseNumber  *string `gorm:"type:varchar(64)"                      json:"licenseNumber"`
}

type RegionSelection struct {
	BaseUUIDModel
	ActorID  string  `gorm:"type:varchar(64);uniqueIndex;not null" json:"actorId"`
	RegionID *string `gorm:"type:varchar(64)"                      json:"regionId"`
}

func (p *Profile) IsComplete() bool {
	return p != nil && present(p.FullName)
}

func (c *Clinic) IsComplete() bool {
	return c != nil && present(c.Name) && present(c.Address)
}

func (d *Doctor) IsComplete() bool {
	return d != nil && present(d.FullName) && present(d.Specialization)
}

// IsComplete only requires a region id to be selected; an empty string still
// counts as a selection.
func (r *RegionSelection) IsComplete() bool {
	return r != nil && r.RegionID != nil
}
