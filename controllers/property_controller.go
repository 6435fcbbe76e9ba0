package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/maintainly/api-go/models"
	"github.com/maintainly/api-go/services"
	"gorm.io/gorm"
)

type PropertyController struct {
	DB   *gorm.DB
	Gate services.RoleGate
}

func NewPropertyController(db *gorm.DB) *PropertyController {
	return &PropertyController{DB: db}
}

func (pc *PropertyController) CreateProperty(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	if err := pc.Gate.Authorize(actor, services.ActionPropertyManage); err != nil {
		respondError(c, err)
		return
	}

	var input struct {
		Name        string `json:"name" binding:"required"`
		AddressLine string `json:"addressLine" binding:"required"`
		City        string `json:"city"`
		Postcode    string `json:"postcode"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	property := models.Property{
		LandlordID:  actor.ID,
		Name:        input.Name,
		AddressLine: input.AddressLine,
		City:        input.City,
		Postcode:    input.Postcode,
	}
	if err := pc.DB.Create(&property).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create property", "success": false})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": property})
}

func (pc *PropertyController) ListProperties(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var properties []models.Property
	q := pc.DB.Order("created_at DESC")
	// Landlords see their own; helpdesk sees everything.
	if actor.Role == models.RoleLandlord {
		q = q.Where("landlord_id = ?", actor.ID)
	}
	if err := q.Find(&properties).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list properties", "success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": properties})
}

func (pc *PropertyController) GetProperty(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property id", "success": false})
		return
	}

	var property models.Property
	if err := pc.DB.Preload("Landlord").First(&property, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found", "success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": property})
}
