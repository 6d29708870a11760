package utils

import (
	"database/sql"
	"net/url"

	"github.com/rotisserie/eris"

	_ "github.com/lib/pq"
)

// BuildPostgresDSNFromEnv assembles a lib/pq URL from PG_* variables.
func BuildPostgresDSNFromEnv() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.User(EnvString("PG_USER", "postgres")),
		Host:     EnvString("PG_HOST", "localhost") + ":" + EnvString("PG_PORT", "5432"),
		Path:     "/" + EnvString("PG_DB", "rtocodes"),
		RawQuery: "sslmode=" + url.QueryEscape(EnvString("PG_SSLMODE", "disable")),
	}
	if pass := EnvString("PG_PASSWORD", ""); pass != "" {
		u.User = url.UserPassword(u.User.Username(), pass)
	}
	return u.String()
}

// OpenPostgresFromEnv opens the record database. The pool is small: the
// record store is read-mostly and every state is loaded once per request.
func OpenPostgresFromEnv() (*sql.DB, error) {
	db, err := sql.Open("postgres", BuildPostgresDSNFromEnv())
	if err != nil {
		return nil, eris.Wrap(err, "open postgres")
	}
	db.SetMaxOpenConns(EnvInt("PG_MAX_OPEN_CONNS", 10))
	db.SetMaxIdleConns(EnvInt("PG_MAX_IDLE_CONNS", 5))
	return db, nil
}
