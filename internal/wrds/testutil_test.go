package wrds

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// wrdsSchema mirrors the slice of the WRDS catalog the client queries,
// including the filter columns.
const wrdsSchema = `
CREATE SCHEMA crsp;
CREATE SCHEMA comp;

CREATE TABLE crsp.msf_v2 (
	permno           INTEGER NOT NULL,
	mthcaldt         DATE    NOT NULL,
	mthret           DOUBLE PRECISION,
	mthretx          DOUBLE PRECISION,
	mthprc           DOUBLE PRECISION,
	shrout           DOUBLE PRECISION,
	primaryexch      TEXT,
	sharetype        TEXT,
	securitytype     TEXT,
	securitysubtype  TEXT,
	usincflg         TEXT,
	issuertype       TEXT,
	conditionaltype  TEXT,
	tradingstatusflg TEXT
);

CREATE TABLE crsp.dsf_v2 (
	permno           INTEGER NOT NULL,
	dlycaldt         DATE    NOT NULL,
	dlyret           DOUBLE PRECISION,
	dlyretx          DOUBLE PRECISION,
	primaryexch      TEXT,
	sharetype        TEXT,
	securitytype     TEXT,
	securitysubtype  TEXT,
	usincflg         TEXT,
	issuertype       TEXT,
	conditionaltype  TEXT,
	tradingstatusflg TEXT
);

CREATE TABLE crsp.dsix (
	caldt  DATE NOT NULL,
	vwretd DOUBLE PRECISION,
	vwretx DOUBLE PRECISION
);

CREATE TABLE comp.funda (
	gvkey    TEXT NOT NULL,
	datadate DATE NOT NULL,
	fyear    INTEGER,
	at       DOUBLE PRECISION,
	seq      DOUBLE PRECISION,
	txditc   DOUBLE PRECISION,
	pstkrv   DOUBLE PRECISION,
	pstkl    DOUBLE PRECISION,
	pstk     DOUBLE PRECISION,
	ib       DOUBLE PRECISION,
	dp       DOUBLE PRECISION,
	act      DOUBLE PRECISION,
	che      DOUBLE PRECISION,
	lct      DOUBLE PRECISION,
	dlc      DOUBLE PRECISION,
	txp      DOUBLE PRECISION,
	dltt     DOUBLE PRECISION,
	sale     DOUBLE PRECISION,
	dvc      DOUBLE PRECISION,
	indfmt   TEXT,
	datafmt  TEXT,
	popsrc   TEXT,
	consol   TEXT
);

CREATE TABLE crsp.ccmxpf_linktable (
	gvkey     TEXT NOT NULL,
	lpermno   INTEGER,
	linkdt    DATE,
	linkenddt DATE,
	linktype  TEXT,
	linkprim  TEXT
);
`

// setupWRDS starts a PostgreSQL container seeded with the WRDS schema and
// returns a Client plus an admin pool for inserting fixtures.
func setupWRDS(t *testing.T) (*Client, *pgxpool.Pool, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("wrds"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	admin, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err, "failed to create admin pool")

	_, err = admin.Exec(ctx, wrdsSchema)
	require.NoError(t, err, "failed to create wrds schema")

	client, err := NewClient(ctx, dsn)
	require.NoError(t, err, "failed to create client")

	cleanup := func() {
		client.Close()
		admin.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return client, admin, cleanup
}

// seedMonth inserts one monthly row with common-stock filter values.
// Nil numeric arguments become NULLs.
func seedMonth(t *testing.T, ctx context.Context, pool *pgxpool.Pool, permno int, date string, ret, retx, prc, shrout any, exch string) {
	t.Helper()

	_, err := pool.Exec(ctx, `
		INSERT INTO crsp.msf_v2
			(permno, mthcaldt, mthret, mthretx, mthprc, shrout, primaryexch,
			 sharetype, securitytype, securitysubtype, usincflg, issuertype,
			 conditionaltype, tradingstatusflg)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'NS', 'EQTY', 'COM', 'Y', 'CORP', 'RW', 'A')`,
		permno, date, ret, retx, prc, shrout, exch)
	require.NoError(t, err)
}

// seedDay inserts one daily row with common-stock filter values.
func seedDay(t *testing.T, ctx context.Context, pool *pgxpool.Pool, permno int, date string, ret, retx any) {
	t.Helper()

	_, err := pool.Exec(ctx, `
		INSERT INTO crsp.dsf_v2
			(permno, dlycaldt, dlyret, dlyretx, primaryexch,
			 sharetype, securitytype, securitysubtype, usincflg, issuertype,
			 conditionaltype, tradingstatusflg)
		VALUES ($1, $2, $3, $4, 'N', 'NS', 'EQTY', 'COM', 'Y', 'CORP', 'RW', 'A')`,
		permno, date, ret, retx)
	require.NoError(t, err)
}

// seedFunda inserts one standard consolidated industrial annual row.
func seedFunda(t *testing.T, ctx context.Context, pool *pgxpool.Pool, gvkey, datadate string, fyear any, fields map[string]any) {
	t.Helper()

	cols := []string{"gvkey", "datadate", "fyear", "indfmt", "datafmt", "popsrc", "consol"}
	args := []any{gvkey, datadate, fyear, "INDL", "STD", "D", "C"}
	for col, v := range fields {
		cols = append(cols, col)
		args = append(args, v)
	}
	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}
	sql := fmt.Sprintf("INSERT INTO comp.funda (%s) VALUES (%s)",
		strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	_, err := pool.Exec(ctx, sql, args...)
	require.NoError(t, err)
}

// seedLink inserts one link-table row. A nil linkenddt means still open.
func seedLink(t *testing.T, ctx context.Context, pool *pgxpool.Pool, gvkey string, permno int, linkdt string, linkenddt any, linktype, linkprim string) {
	t.Helper()

	_, err := pool.Exec(ctx, `
		INSERT INTO crsp.ccmxpf_linktable
			(gvkey, lpermno, linkdt, linkenddt, linktype, linkprim)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		gvkey, permno, linkdt, linkenddt, linktype, linkprim)
	require.NoError(t, err)
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
