package controllers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/maintainly/api-go/controllers"
	"github.com/maintainly/api-go/models"
	"github.com/maintainly/api-go/services"
	"github.com/maintainly/api-go/utils"
)

func setupControllerDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)

	sqlDB, err := db.DB()
	assert.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	assert.NoError(t, db.AutoMigrate(
		&models.Profile{},
		&models.RefreshToken{},
		&models.Property{},
		&models.MaintenanceReport{},
		&models.Attachment{},
		&models.Assignment{},
		&models.ContractorResponse{},
		&models.ContractorFinalReport{},
	))
	return db
}

// authAs stands in for the JWT middleware, stamping the claims the real
// middleware would have parsed.
func authAs(p models.Profile) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(string(utils.UserContextKey), &utils.UserClaims{UserID: p.ID, Role: string(p.Role)})
	}
}

func doGet(t *testing.T, registered string, handler gin.HandlerFunc, as models.Profile, path string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET(registered, authAs(as), handler)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

type webFixture struct {
	db *gorm.DB

	tenant     models.Profile
	landlord   models.Profile
	helpdesk   models.Profile
	contractor models.Profile

	otherTenant     models.Profile
	otherLandlord   models.Profile
	otherContractor models.Profile

	report     models.MaintenanceReport
	assignment models.Assignment
	attachment models.Attachment
}

func setupWebFixture(t *testing.T) *webFixture {
	db := setupControllerDB(t)
	mk := func(email string, role models.Role) models.Profile {
		p := models.Profile{Email: email, Password: "x", FullName: email, Role: role}
		assert.NoError(t, db.Create(&p).Error)
		return p
	}

	f := &webFixture{
		db:              db,
		tenant:          mk("tenant@test.io", models.RoleTenant),
		landlord:        mk("landlord@test.io", models.RoleLandlord),
		helpdesk:        mk("helpdesk@test.io", models.RoleHelpdesk),
		contractor:      mk("contractor@test.io", models.RoleContractor),
		otherTenant:     mk("other-tenant@test.io", models.RoleTenant),
		otherLandlord:   mk("other-landlord@test.io", models.RoleLandlord),
		otherContractor: mk("other-contractor@test.io", models.RoleContractor),
	}

	property := models.Property{LandlordID: f.landlord.ID, Name: "Flat 4B", AddressLine: "12 Harbour Street"}
	assert.NoError(t, db.Create(&property).Error)

	f.report = models.MaintenanceReport{
		PropertyID: property.ID,
		TenantID:   f.tenant.ID,
		Title:      "Leaking kitchen tap",
		Category:   models.CategoryPlumbing,
		Urgency:    models.UrgencyMedium,
		Status:     models.ReportPending,
	}
	assert.NoError(t, db.Create(&f.report).Error)

	contractorID := f.contractor.ID
	f.assignment = models.Assignment{
		ReportID:          f.report.ID,
		ContractorID:      &contractorID,
		LandlordID:        f.landlord.ID,
		Status:            models.AssignmentAssigned,
		ReassignmentCount: 1,
	}
	assert.NoError(t, db.Create(&f.assignment).Error)

	f.attachment = models.Attachment{
		ReportID:   f.report.ID,
		FileName:   "tap.jpg",
		StorageKey: "reports/x/image/1_y.jpg",
		FileType:   "image",
	}
	assert.NoError(t, db.Create(&f.attachment).Error)
	return f
}

func TestGetReportScopedToParties(t *testing.T) {
	f := setupWebFixture(t)
	rc := controllers.NewReportController(f.db, services.NewWorkflow(f.db, services.NewLocalBus()))
	path := "/reports/" + f.report.ID.String()

	for _, p := range []models.Profile{f.tenant, f.landlord, f.helpdesk, f.contractor} {
		w := doGet(t, "/reports/:id", rc.GetReport, p, path)
		assert.Equal(t, http.StatusOK, w.Code, "role %s should see the report", p.Role)
	}

	for _, p := range []models.Profile{f.otherTenant, f.otherLandlord, f.otherContractor} {
		w := doGet(t, "/reports/:id", rc.GetReport, p, path)
		assert.Equal(t, http.StatusForbidden, w.Code, "%s should be denied", p.Email)
		assert.NotContains(t, w.Body.String(), f.tenant.Email)
	}
}

func TestGetAssignmentScopedToParties(t *testing.T) {
	f := setupWebFixture(t)
	ac := controllers.NewAssignmentController(f.db, services.NewWorkflow(f.db, services.NewLocalBus()))
	path := "/assignments/" + f.assignment.ID.String()

	for _, p := range []models.Profile{f.contractor, f.landlord, f.helpdesk, f.tenant} {
		w := doGet(t, "/assignments/:id", ac.GetAssignment, p, path)
		assert.Equal(t, http.StatusOK, w.Code, "%s should see the assignment", p.Email)
	}

	for _, p := range []models.Profile{f.otherContractor, f.otherLandlord, f.otherTenant} {
		w := doGet(t, "/assignments/:id", ac.GetAssignment, p, path)
		assert.Equal(t, http.StatusForbidden, w.Code, "%s should be denied", p.Email)
	}
}

func TestResolveAttachmentScopedToParties(t *testing.T) {
	f := setupWebFixture(t)
	t.Setenv("CLOUDFLARE_ACCOUNT_ID", "test-account")
	t.Setenv("CLOUDFLARE_ACCESS_KEY_ID", "test-key")
	t.Setenv("CLOUDFLARE_SECRET_ACCESS_KEY", "test-secret")
	t.Setenv("CLOUDFLARE_BUCKET_NAME", "test-bucket")
	uc := controllers.NewUploadController(f.db)
	path := "/attachments/" + f.attachment.ID.String() + "/url"

	// A stranger must not be able to mint a signed URL off a guessed id.
	for _, p := range []models.Profile{f.otherTenant, f.otherContractor} {
		w := doGet(t, "/attachments/:id/url", uc.ResolveAttachment, p, path)
		assert.Equal(t, http.StatusForbidden, w.Code, "%s should be denied", p.Email)
		assert.NotContains(t, w.Body.String(), f.attachment.StorageKey)
	}

	w := doGet(t, "/attachments/:id/url", uc.ResolveAttachment, f.tenant, path)
	assert.Equal(t, http.StatusOK, w.Code)
}
