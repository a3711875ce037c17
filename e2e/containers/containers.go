package containers

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const database = "bread"

// TestContainers holds all container references and connection details.
// DSNs carry the driver prefix understood by schema.OpenDB.
type TestContainers struct {
	MySQLContainer    testcontainers.Container
	PostgresContainer testcontainers.Container

	MySQLDSN    string
	PostgresDSN string
}

// SetupMySQL creates and starts a MySQL container with an empty database
func SetupMySQL(ctx context.Context) (testcontainers.Container, string, error) {
	container, err := mysql.Run(ctx, "mysql:8.4",
		mysql.WithDatabase(database),
		mysql.WithUsername("testuser"),
		mysql.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("ready for connections").
				WithOccurrence(1).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start MySQL container: %w", err)
	}

	dsn, err := container.ConnectionString(ctx, "parseTime=true")
	if err != nil {
		return container, "", fmt.Errorf("failed to get MySQL connection string: %w", err)
	}

	return container, "mysql://" + dsn, nil
}

// SetupPostgres creates and starts a PostgreSQL container with an empty database
func SetupPostgres(ctx context.Context) (testcontainers.Container, string, error) {
	container, err := postgres.Run(ctx, "postgres:17.5",
		postgres.WithDatabase(database),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start PostgreSQL container: %w", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return container, "", fmt.Errorf("failed to get PostgreSQL connection string: %w", err)
	}

	return container, dsn, nil
}

// SetupAllContainers creates and starts all required containers for testing
func SetupAllContainers(ctx context.Context) (*TestContainers, error) {
	tc := &TestContainers{}

	mysqlContainer, mysqlDSN, err := SetupMySQL(ctx)
	tc.MySQLContainer = mysqlContainer
	if err != nil {
		return tc, fmt.Errorf("failed to setup MySQL: %w", err)
	}
	tc.MySQLDSN = mysqlDSN

	postgresContainer, postgresDSN, err := SetupPostgres(ctx)
	tc.PostgresContainer = postgresContainer
	if err != nil {
		return tc, fmt.Errorf("failed to setup PostgreSQL: %w", err)
	}
	tc.PostgresDSN = postgresDSN

	return tc, nil
}

// Cleanup terminates all containers
func (tc *TestContainers) Cleanup(ctx context.Context) error {
	var lastErr error

	if tc.PostgresContainer != nil {
		if err := tc.PostgresContainer.Terminate(ctx); err != nil {
			lastErr = fmt.Errorf("failed to terminate PostgreSQL container: %w", err)
		}
	}

	if tc.MySQLContainer != nil {
		if err := tc.MySQLContainer.Terminate(ctx); err != nil {
			lastErr = fmt.Errorf("failed to terminate MySQL container: %w", err)
		}
	}

	return lastErr
}
