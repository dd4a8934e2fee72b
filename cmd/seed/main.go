package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carepoint/healthcare-records/internal/appointment"
	"github.com/carepoint/healthcare-records/internal/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	providers := flag.Int("providers", 50, "number of providers to insert")
	patients := flag.Int("patients", 2000, "number of patients to insert")
	slots := flag.Int("slots", 5000, "number of open appointment slots to insert")
	flag.Parse()

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn, 10)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(context.Background(), pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	gofakeit.Seed(time.Now().UnixNano())

	providerIDs, err := seedProviders(context.Background(), pool, *providers)
	if err != nil {
		log.Fatalf("seed providers: %v", err)
	}
	if err := seedPatients(context.Background(), pool, *patients); err != nil {
		log.Fatalf("seed patients: %v", err)
	}
	if err := seedSlots(context.Background(), pool, providerIDs, *slots); err != nil {
		log.Fatalf("seed slots: %v", err)
	}

	log.Println("seed complete")
}

var specialties = []string{
	"Dermatology",
	"Cardiology",
	"General Practice",
	"Orthopedics",
	"Endocrinology",
	"Neurology",
	"Pediatrics",
	"Psychiatry",
	"Ophthalmology",
	"ENT",
}

func seedProviders(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d providers", count)
	now := time.Now().UTC()

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()
		_, err := pool.Exec(ctx, `
			INSERT INTO providers (id, name, specialty, license_number, email, active, created_at, updated_at, updated_by)
			VALUES ($1, $2, $3, $4, $5, TRUE, $6, $6, 'seed')`,
			id,
			"Dr. "+gofakeit.Name(),
			gofakeit.RandomString(specialties),
			gofakeit.Numerify("LIC-########"),
			gofakeit.Email(),
			now,
		)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d patients", count)
	now := time.Now().UTC()

	for i := 0; i < count; i++ {
		_, err := pool.Exec(ctx, `
			INSERT INTO patients (id, name, birth_date, email, phone, active, created_at, updated_at, updated_by)
			VALUES ($1, $2, $3, $4, $5, TRUE, $6, $6, 'seed')`,
			uuid.New(),
			gofakeit.Name(),
			gofakeit.DateRange(now.AddDate(-90, 0, 0), now.AddDate(-18, 0, 0)),
			gofakeit.Email(),
			gofakeit.Phone(),
			now,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func seedSlots(ctx context.Context, pool *pgxpool.Pool, providerIDs []uuid.UUID, count int) error {
	log.Printf("seeding %d open slots", count)
	now := time.Now().UTC()

	types := []string{
		string(appointment.TypeCheckup),
		string(appointment.TypeConsultation),
		string(appointment.TypeFollowUp),
		string(appointment.TypeProcedure),
	}

	for i := 0; i < count; i++ {
		// All seeded slots satisfy the advance-notice rule.
		scheduledAt := gofakeit.DateRange(now.Add(25*time.Hour), now.AddDate(0, 0, 30))
		_, err := pool.Exec(ctx, `
			INSERT INTO appointments (id, provider_id, scheduled_at, status, appointment_type, created_at, updated_at, updated_by)
			VALUES ($1, $2, $3, $4, $5, $6, $6, 'seed')`,
			uuid.New(),
			providerIDs[gofakeit.Number(0, len(providerIDs)-1)],
			scheduledAt,
			string(appointment.StatusAvailable),
			gofakeit.RandomString(types),
			now,
		)
		if err != nil {
			return err
		}
	}
	return nil
}
