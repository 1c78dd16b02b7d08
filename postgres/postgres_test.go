package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/storytree/internal/kvtest"
	"github.com/meikuraledutech/storytree/postgres"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type PGStoreSuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	pool      *pgxpool.Pool
	store     *postgres.PGStore
}

func (s *PGStoreSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("storytree"),
		tcpostgres.WithUsername("user"),
		tcpostgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(2*time.Minute),
		),
	)
	require.NoError(s.T(), err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(s.T(), err)
	s.pool, err = pgxpool.New(ctx, dsn)
	require.NoError(s.T(), err)

	s.store = postgres.New(s.pool)
	require.NoError(s.T(), s.store.CreateSchema(ctx))
}

func (s *PGStoreSuite) TearDownSuite() {
	ctx := context.Background()
	if s.store != nil {
		_ = s.store.DropSchema(ctx)
	}
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(ctx)
	}
}

func (s *PGStoreSuite) TestConformance() {
	kvtest.Run(s.T(), s.store, "pg:")
}

func (s *PGStoreSuite) TestDelete() {
	ctx := context.Background()
	require.NoError(s.T(), s.store.Save(ctx, "pg:gone", []byte(`{}`)))
	require.NoError(s.T(), s.store.Delete(ctx, "pg:gone"))
	v, err := s.store.Load(ctx, "pg:gone")
	require.NoError(s.T(), err)
	s.Nil(v)
}

func TestPGStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(PGStoreSuite))
}
