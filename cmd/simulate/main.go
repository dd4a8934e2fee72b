package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carepoint/healthcare-records/internal/db"
)

// simulate hammers the booking endpoint with many patients competing
// for the same open slots, then verifies that every slot ended up with
// exactly one winner.

type simConfig struct {
	baseURL  string
	duration time.Duration
	workers  int
	slots    int
	patients int
}

type tally struct {
	attempts  int64
	wins      int64
	conflicts int64
	errors    int64
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := simConfig{}
	flag.StringVar(&cfg.baseURL, "base-url", "http://localhost:8080", "api-server base URL")
	flag.DurationVar(&cfg.duration, "duration", 30*time.Second, "how long to run")
	flag.IntVar(&cfg.workers, "workers", 32, "concurrent booking workers")
	flag.IntVar(&cfg.slots, "slots", 200, "open slots to contend for")
	flag.IntVar(&cfg.patients, "patients", 500, "patients to book as")
	flag.Parse()

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}
	signingKey := os.Getenv("JWT_SIGNING_KEY")
	if signingKey == "" {
		log.Fatal("JWT_SIGNING_KEY is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := db.ConnectPostgres(ctx, dsn, 5)
	cancel()
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	slotIDs, err := loadIDs(context.Background(), pool,
		`SELECT id FROM appointments WHERE status = 'AVAILABLE' ORDER BY scheduled_at LIMIT $1`, cfg.slots)
	if err != nil {
		log.Fatalf("load slots: %v", err)
	}
	patientIDs, err := loadIDs(context.Background(), pool,
		`SELECT id FROM patients WHERE active LIMIT $1`, cfg.patients)
	if err != nil {
		log.Fatalf("load patients: %v", err)
	}
	if len(slotIDs) == 0 || len(patientIDs) == 0 {
		log.Fatal("no open slots or patients found, run cmd/seed first")
	}
	log.Printf("contending %d workers over %d slots with %d patients for %s",
		cfg.workers, len(slotIDs), len(patientIDs), cfg.duration)

	token, err := mintToken(signingKey)
	if err != nil {
		log.Fatalf("mint token: %v", err)
	}

	var t tally
	runCtx, stop := context.WithTimeout(context.Background(), cfg.duration)
	defer stop()

	var wg sync.WaitGroup
	for i := 0; i < cfg.workers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			client := &http.Client{Timeout: 10 * time.Second}
			for runCtx.Err() == nil {
				slot := slotIDs[rng.Intn(len(slotIDs))]
				patient := patientIDs[rng.Intn(len(patientIDs))]
				book(runCtx, client, cfg.baseURL, token, slot, patient, &t)
			}
		}(time.Now().UnixNano() + int64(i))
	}
	wg.Wait()

	log.Printf("attempts=%d wins=%d conflicts=%d errors=%d",
		atomic.LoadInt64(&t.attempts), atomic.LoadInt64(&t.wins),
		atomic.LoadInt64(&t.conflicts), atomic.LoadInt64(&t.errors))

	if err := verify(context.Background(), pool, slotIDs, atomic.LoadInt64(&t.wins)); err != nil {
		log.Fatalf("verification FAILED: %v", err)
	}
	log.Println("verification passed: every booked slot has exactly one patient")
}

func book(ctx context.Context, client *http.Client, baseURL, token string, slot, patient uuid.UUID, t *tally) {
	atomic.AddInt64(&t.attempts, 1)

	body, _ := json.Marshal(map[string]string{"patient_id": patient.String()})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/v1/appointments/%s/book", baseURL, slot), bytes.NewReader(body))
	if err != nil {
		atomic.AddInt64(&t.errors, 1)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			atomic.AddInt64(&t.errors, 1)
		}
		return
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		atomic.AddInt64(&t.wins, 1)
	case http.StatusConflict:
		atomic.AddInt64(&t.conflicts, 1)
	default:
		atomic.AddInt64(&t.errors, 1)
	}
}

// verify counts booked slots straight from the database and compares
// against the number of 200 responses the workers observed.
func verify(ctx context.Context, pool *pgxpool.Pool, slotIDs []uuid.UUID, wins int64) error {
	var booked int64
	err := pool.QueryRow(ctx, `
		SELECT count(*) FROM appointments
		WHERE id = ANY($1) AND status = 'SCHEDULED' AND patient_id IS NOT NULL`,
		slotIDs).Scan(&booked)
	if err != nil {
		return err
	}
	if booked != wins {
		return fmt.Errorf("%d slots booked in the database but %d booking wins observed", booked, wins)
	}
	return nil
}

func loadIDs(ctx context.Context, pool *pgxpool.Pool, query string, limit int) ([]uuid.UUID, error) {
	rows, err := pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func mintToken(signingKey string) (string, error) {
	claims := jwt.MapClaims{
		"sub":   "simulate",
		"roles": []string{"staff"},
		"exp":   time.Now().Add(time.Hour).Unix(),
		"iat":   time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
}
