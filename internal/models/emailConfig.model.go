package models

import "time"

// EmailConfig is one actor's transactional email settings. The row is
// replaced wholesale on every save.
type EmailConfig struct {
	ActorID         string    `gorm:"type:varchar(64);primaryKey" json:"actorId"`
	Enabled         bool      `gorm:"not null"                    json:"enabled"`
	ProviderAPIKey  string    `gorm:"type:text;not null"          json:"providerApiKey"`
	FromAddress     string    `gorm:"type:varchar(255);not null"  json:"fromAddress"`
	FromDisplayName *string   `gorm:"type:varchar(255)"           json:"fromDisplayName"`
	CreatedAt       time.Time `gorm:"autoCreateTime"              json:"createdAt"`
	UpdatedAt       time.Time `gorm:"not null;autoUpdateTime:false" json:"updatedAt"`
}

// DefaultEmailConfig is what an actor without a stored row starts from.
func DefaultEmailConfig(actorID string) EmailConfig {
	return EmailConfig{ActorID: actorID}
}

// FromHeader formats the provider "From" value: `Name <address>` when a
// display name is set, the bare address otherwise.
func (c EmailConfig) FromHeader() string {
	if c.FromDisplayName != nil && *c.FromDisplayName != "" {
		return *c.FromDisplayName + " <" + c.FromAddress + ">"
	}
	return c.FromAddress
}

// Clone returns a copy that shares no pointers with c.
func (c EmailConfig) Clone() EmailConfig {
	clone := c
	if c.FromDisplayName != nil {
		name := *c.FromDisplayName
		clone.FromDisplayName = &name
	}
	return clone
}
