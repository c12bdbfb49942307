package sqlite

import (
	"database/sql"
	"io"
	"path/filepath"
	"testing"

	"github.com/Thiht/transactor"
	txStdLib "github.com/Thiht/transactor/stdlib"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"
)

type testDB struct {
	db       *sql.DB
	tx       transactor.Transactor
	dbGetter txStdLib.DBGetter
	l        *log.Logger
}

func openTestDB(t *testing.T) testDB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "questlog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, RunMigrations(db))

	tx, dbGetter := txStdLib.NewTransactor(db, txStdLib.NestedTransactionsSavepoints)
	return testDB{
		db:       db,
		tx:       tx,
		dbGetter: dbGetter,
		l:        log.New(io.Discard),
	}
}
