package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"barangay-events/internal/database"
	event_db "barangay-events/internal/events/db"
	"barangay-events/internal/events/service"
	"barangay-events/internal/models"
)

var seedReset bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert sample community events",
	Long: `Insert a handful of sample events dated relative to now.

With --reset the events table is dropped and recreated first, which
discards every existing event.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		log := newLogger(cmd)

		bunDB, err := database.Connect(cmd.Context(), cfg.Database, log)
		if err != nil {
			return err
		}
		defer bunDB.Close()

		if seedReset {
			if err := resetSchema(cmd.Context(), bunDB); err != nil {
				return err
			}
			log.Info("SEED", "Events table recreated")
		} else if err := database.EnsureSchema(cmd.Context(), bunDB); err != nil {
			return err
		}

		svc := service.NewEventService(&event_db.DB{Bun: bunDB}, nil, log)
		n, err := seedEvents(cmd.Context(), svc, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Seeded %d events\n", n)
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedReset, "reset", false, "drop and recreate the events table before seeding")
}

func resetSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewDropTable().Model((*models.Event)(nil)).IfExists().Exec(ctx); err != nil {
		return fmt.Errorf("drop events table: %w", err)
	}
	return database.EnsureSchema(ctx, db)
}

type eventCreator interface {
	CreateEvent(ctx context.Context, req models.EventCreate) (*models.Event, error)
}

// seedEvents goes through the service so samples pass the same validation
// as API input.
func seedEvents(ctx context.Context, svc eventCreator, now time.Time) (int, error) {
	samples := sampleEvents(now)
	for i, req := range samples {
		if _, err := svc.CreateEvent(ctx, req); err != nil {
			return i, fmt.Errorf("seed %q: %w", req.Title, err)
		}
	}
	return len(samples), nil
}

func sampleEvents(now time.Time) []models.EventCreate {
	day := func(days, hour int) models.Timestamp {
		d := now.UTC().AddDate(0, 0, days)
		return models.NewTimestamp(time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.UTC))
	}
	contact := func(s string) *string { return &s }
	private := false

	return []models.EventCreate{
		{
			Title:       "Barangay Fiesta",
			Description: "Annual celebration with a procession, street dancing and a boodle fight at the plaza.",
			EventDate:   day(14, 8),
			Location:    "Barangay Plaza",
			Organizer:   "Barangay Council",
			ContactInfo: contact("0917-555-0101"),
		},
		{
			Title:       "Clean-up Drive",
			Description: "Bring gloves and sacks. Meeting point is the covered court.",
			EventDate:   day(3, 6),
			Location:    "Covered Court",
			Organizer:   "SK Council",
		},
		{
			Title:       "Free Medical Check-up",
			Description: "Blood pressure, blood sugar and basic consultation for seniors and children.",
			EventDate:   day(7, 9),
			Location:    "Barangay Health Center",
			Organizer:   "Barangay Health Workers",
			ContactInfo: contact("healthcenter@example.ph"),
		},
		{
			Title:       "Basketball League Opening",
			Description: "Opening ceremony of the inter-purok basketball league.",
			EventDate:   day(10, 16),
			Location:    "Covered Court",
			Organizer:   "SK Council",
		},
		{
			Title:       "Council Budget Meeting",
			Description: "Quarterly budget deliberation of the barangay council.",
			EventDate:   day(5, 14),
			Location:    "Barangay Hall",
			Organizer:   "Barangay Secretary",
			IsPublic:    &private,
		},
		{
			Title:       "Zumba sa Plaza",
			Description: "Weekly community exercise session. Everyone is welcome.",
			EventDate:   day(-2, 17),
			Location:    "Barangay Plaza",
			Organizer:   "Women's Association",
		},
	}
}
