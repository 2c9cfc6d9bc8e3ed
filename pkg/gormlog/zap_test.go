package gormlog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRedactSQL_SecretTables(t *testing.T) {
	out := redactSQL(`INSERT INTO "gateway_config" ("id","credentials") VALUES ('g1','{"api_key":"k"}')`)
	require.NotContains(t, out, "api_key")
	require.Contains(t, out, "gateway_config")
	require.Contains(t, out, "values redacted")

	out = redactSQL(`UPDATE "client_account" SET "client_salt"='s3cret' WHERE id = 'c1'`)
	require.NotContains(t, out, "s3cret")
	require.Contains(t, out, "client_account")
}

func TestRedactSQL_OtherStatementsUntouched(t *testing.T) {
	q := `SELECT * FROM "transaction" WHERE id = 'LSP_1'`
	require.Equal(t, q, redactSQL(q))

	ins := `INSERT INTO "webhook_log" ("id") VALUES ('w1')`
	require.Equal(t, ins, redactSQL(ins))
}

func TestShortCaller(t *testing.T) {
	require.Equal(t,
		"internal/platform/db/postgres.go:38",
		shortCaller("/home/ci/repo/internal/platform/db/postgres.go:38"))
	require.Equal(t, "", shortCaller(""))
}
