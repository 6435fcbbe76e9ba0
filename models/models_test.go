package models_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/maintainly/api-go/models"
)

func TestEnumValidators(t *testing.T) {
	assert.True(t, models.ValidRole("contractor"))
	assert.False(t, models.ValidRole("admin"))

	assert.True(t, models.ValidCategory("plumbing"))
	assert.True(t, models.ValidCategory("other"))
	assert.False(t, models.ValidCategory("roofing"))

	assert.True(t, models.ValidUrgency("emergency"))
	assert.False(t, models.ValidUrgency("urgent"))
}

func TestIDsAssignedOnCreate(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&models.Profile{}, &models.RefreshToken{}))

	p := models.Profile{Email: "t@test.io", Password: "x", Role: models.RoleTenant}
	assert.NoError(t, db.Create(&p).Error)
	assert.NotEqual(t, uuid.Nil, p.ID)

	// An explicit ID is kept.
	id := uuid.New()
	q := models.Profile{ID: id, Email: "u@test.io", Password: "x", Role: models.RoleTenant}
	assert.NoError(t, db.Create(&q).Error)
	assert.Equal(t, id, q.ID)
}
