package app

import (
	"testing"

	"clinicdesk/config"
	"clinicdesk/internal/database"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestValidate_NilDatabase(t *testing.T) {
	app := &App{Config: config.Config{ServerPort: 8280}}
	assert.EqualError(t, app.validate(), "database is nil")
}

func TestValidate_EmptyConfig(t *testing.T) {
	app := &App{Database: database.DB{SQL: &gorm.DB{}}}
	assert.EqualError(t, app.validate(), "config is nil")
}

func TestValidate_MissingComponents(t *testing.T) {
	app := &App{
		Database: database.DB{SQL: &gorm.DB{}},
		Config:   config.Config{ServerPort: 8280},
	}
	assert.EqualError(t, app.validate(), "nil check failed")
}

func TestClose_EmptyApp(t *testing.T) {
	app := &App{}
	assert.NoError(t, app.Close())
}
