// records-import loads the JSON record tree into Postgres so the service can
// run with RECORD_STORE=postgres.
package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/anoopt/rto-codes-sub000/internal/logger"
	"github.com/anoopt/rto-codes-sub000/internal/migrate"
	"github.com/anoopt/rto-codes-sub000/internal/records"
	"github.com/anoopt/rto-codes-sub000/internal/utils"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()
	dir := utils.EnvString("RECORDS_DIR", filepath.Join(utils.EnvString("DATA_DIR", "data"), "states"))
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}
	l.Info("records_import_start", "dir", dir)

	ctx, cancel := context.WithTimeout(context.Background(), utils.EnvDuration("IMPORT_TIMEOUT_S", time.Second, 5*time.Minute))
	defer cancel()

	fs, err := records.OpenFileStore(dir)
	if err != nil {
		l.Error("records_open_error", "err", err)
		os.Exit(1)
	}
	states, _ := fs.States(ctx)
	rtos, _ := fs.ListRTOs(ctx, "")
	if len(states) == 0 {
		l.Warn("records_import_empty", "dir", dir)
		return
	}

	db, err := utils.OpenPostgresFromEnv()
	if err != nil {
		l.Error("db_open_error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		l.Error("db_ping_error", "err", err)
		os.Exit(1)
	}
	if err := migrate.EnsureSchema(ctx, db); err != nil {
		l.Error("schema_error", "err", err)
		os.Exit(1)
	}
	if err := records.AttachDB(db).Import(ctx, states, rtos); err != nil {
		l.Error("records_import_error", "err", err)
		os.Exit(1)
	}
}
