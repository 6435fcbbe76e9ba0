package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/maintainly/api-go/models"
	"github.com/maintainly/api-go/services"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// staleAfter is how long an assignment may sit in assigned with no
// contractor response before the sweep re-surfaces it.
const staleAfter = 24 * time.Hour

// Start runs the stale-assignment sweep every 15 minutes. Each stuck
// assignment gets a refresh hint on the report_status stream so helpdesk
// dashboards bring it back to the top.
func Start(db *gorm.DB, bus services.Bus) *cron.Cron {
	c := cron.New()

	_, err := c.AddFunc("*/15 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		cutoff := time.Now().UTC().Add(-staleAfter)
		var stale []models.Assignment
		if err := db.WithContext(ctx).
			Where("status = ? AND assigned_at < ?", models.AssignmentAssigned, cutoff).
			Find(&stale).Error; err != nil {
			log.Printf("stale assignment sweep failed: %v", err)
			return
		}

		for _, a := range stale {
			ev := services.NewEvent(services.StreamReportStatus, "update", a.ReportID.String())
			if err := bus.Publish(ctx, ev); err != nil {
				log.Printf("failed to publish stale hint for assignment %s: %v", a.ID, err)
			}
		}
		if len(stale) > 0 {
			log.Printf("stale assignment sweep flagged %d assignments", len(stale))
		}
	})
	if err != nil {
		log.Fatalf("Failed to add cron job: %v", err)
	}

	c.Start()
	log.Println("Scheduler started")
	return c
}
