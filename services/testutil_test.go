package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"stattact-service/models"

	"github.com/go-co-op/gocron/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// withTestIdentity stands in for the owner middleware: X-Test-Owner,
// X-Test-User and X-Test-Email become the request's identity.
func withTestIdentity(c *fiber.Ctx) error {
	if v := c.Get("X-Test-Owner"); v != "" {
		c.Locals(LocalOwnerID, v)
	}
	if v := c.Get("X-Test-User"); v != "" {
		c.Locals(LocalUserID, v)
	}
	if v := c.Get("X-Test-Email"); v != "" {
		c.Locals(LocalUserEmail, v)
	}
	return c.Next()
}

func newTestApp() *fiber.App {
	app := fiber.New()
	app.Use(withTestIdentity)
	return app
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func newTestScheduler(t *testing.T) gocron.Scheduler {
	t.Helper()
	sched, err := gocron.NewScheduler()
	require.NoError(t, err)
	sched.Start()
	t.Cleanup(func() { _ = sched.Shutdown() })
	return sched
}

// setupTestDB starts a throwaway postgres and migrates every model. It skips
// under -short or when no container runtime is available.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres test in -short mode")
	}

	ctx := context.Background()
	container, err := startPostgres(ctx)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.StoredValue{},
		&models.Team{},
		&models.CommunityFormation{},
		&models.LeaderboardEntry{},
		&models.CheckoutSession{},
	))
	return db
}

func startPostgres(ctx context.Context) (container *postgres.PostgresContainer, err error) {
	defer func() {
		// the docker provider panics on some hosts without a daemon
		if r := recover(); r != nil {
			err = errNoDocker
		}
	}()
	return postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
}

var errNoDocker = errors.New("container runtime not available")
