package records

import (
	"context"
	"database/sql"
	"strings"

	"github.com/anoopt/rto-codes-sub000/internal/logger"

	"github.com/lib/pq"
	"github.com/rotisserie/eris"
)

// PGStore reads the record tables created by migrate.EnsureSchema.
type PGStore struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *PGStore { return &PGStore{db: db} }

const stateCols = "code, name, svg_district_ids"

const rtoCols = "code, state, state_code, region, city, district, division, description, status, address, pin_code, phone, email, jurisdiction_areas, is_district_hq"

func (s *PGStore) States(ctx context.Context) ([]StateConfig, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+stateCols+" FROM _rto_states ORDER BY name")
	if err != nil {
		return nil, eris.Wrap(err, "query states")
	}
	var out []StateConfig
	for rows.Next() {
		var c StateConfig
		if err := rows.Scan(&c.Code, &c.Name, pq.Array(&c.SVGDistrictIDs)); err != nil {
			rows.Close()
			return nil, eris.Wrap(err, "scan state")
		}
		out = append(out, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "iterate states")
	}
	for i := range out {
		if err := s.fillState(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *PGStore) StateConfig(ctx context.Context, state string) (StateConfig, bool, error) {
	var c StateConfig
	state = strings.TrimSpace(state)
	if state == "" {
		return c, false, nil
	}
	row := s.db.QueryRowContext(ctx, "SELECT "+stateCols+" FROM _rto_states WHERE lower(code)=lower($1) OR lower(name)=lower($1) LIMIT 1", state)
	if err := row.Scan(&c.Code, &c.Name, pq.Array(&c.SVGDistrictIDs)); err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return c, false, nil
		}
		return c, false, eris.Wrapf(err, "query state %s", state)
	}
	if err := s.fillState(ctx, &c); err != nil {
		return c, false, err
	}
	return c, true, nil
}

func (s *PGStore) fillState(ctx context.Context, c *StateConfig) error {
	m, err := s.pairs(ctx, "SELECT canonical, svg_id FROM _rto_district_mapping WHERE state_code=$1", c.Code)
	if err != nil {
		return eris.Wrapf(err, "district mapping %s", c.Code)
	}
	c.DistrictMapping = m
	a, err := s.pairs(ctx, "SELECT external_name, canonical FROM _rto_boundary_aliases WHERE state_code=$1", c.Code)
	if err != nil {
		return eris.Wrapf(err, "boundary aliases %s", c.Code)
	}
	if len(a) > 0 {
		c.BoundaryAliases = a
	}
	return nil
}

func (s *PGStore) pairs(ctx context.Context, q, code string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, q, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

func (s *PGStore) ListRTOs(ctx context.Context, state string) ([]RTO, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if strings.TrimSpace(state) == "" {
		rows, err = s.db.QueryContext(ctx, "SELECT "+rtoCols+" FROM _rto_records ORDER BY code")
	} else {
		c, ok, cerr := s.StateConfig(ctx, state)
		if cerr != nil {
			return nil, cerr
		}
		if !ok {
			return nil, nil
		}
		rows, err = s.db.QueryContext(ctx, "SELECT "+rtoCols+" FROM _rto_records WHERE state_code=$1 ORDER BY code", c.Code)
	}
	if err != nil {
		return nil, eris.Wrap(err, "query records")
	}
	defer rows.Close()
	var out []RTO
	for rows.Next() {
		var r RTO
		var status string
		if err := rows.Scan(&r.Code, &r.State, &r.StateCode, &r.Region, &r.City, &r.District, &r.Division,
			&r.Description, &status, &r.Address, &r.PinCode, &r.Phone, &r.Email,
			pq.Array(&r.JurisdictionAreas), &r.IsDistrictHeadquarter); err != nil {
			return nil, eris.Wrap(err, "scan record")
		}
		r.Status = Status(status)
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "iterate records")
}

func (s *PGStore) DistrictMapping(ctx context.Context, state string) (map[string]string, error) {
	c, ok, err := s.StateConfig(ctx, state)
	if err != nil || !ok {
		return map[string]string{}, err
	}
	return c.DistrictMapping, nil
}

func (s *PGStore) ValidSVGDistrictIDs(ctx context.Context, state string) ([]string, error) {
	c, ok, err := s.StateConfig(ctx, state)
	if err != nil || !ok {
		return nil, err
	}
	return c.SVGDistrictIDs, nil
}

// textArray encodes a nil slice as '{}'; the array columns are NOT NULL and
// pq.Array(nil) is NULL.
func textArray(ss []string) interface{} {
	if ss == nil {
		ss = []string{}
	}
	return pq.Array(ss)
}

// Import: upsert states and records in one transaction.
// Constraint: a state's mapping and alias rows are replaced wholesale, so a
// district removed from config.json disappears from the tables too.
func (s *PGStore) Import(ctx context.Context, states []StateConfig, rtos []RTO) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "begin import")
	}
	defer func() { _ = tx.Rollback() }()

	for _, c := range states {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO _rto_states(code, name, svg_district_ids) VALUES($1,$2,$3)
             ON CONFLICT (code) DO UPDATE SET name=EXCLUDED.name, svg_district_ids=EXCLUDED.svg_district_ids`,
			c.Code, c.Name, textArray(c.SVGDistrictIDs)); err != nil {
			return eris.Wrapf(err, "upsert state %s", c.Code)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM _rto_district_mapping WHERE state_code=$1", c.Code); err != nil {
			return eris.Wrapf(err, "clear mapping %s", c.Code)
		}
		for canonical, id := range c.DistrictMapping {
			if _, err := tx.ExecContext(ctx, "INSERT INTO _rto_district_mapping(state_code, canonical, svg_id) VALUES($1,$2,$3)", c.Code, canonical, id); err != nil {
				return eris.Wrapf(err, "insert mapping %s/%s", c.Code, canonical)
			}
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM _rto_boundary_aliases WHERE state_code=$1", c.Code); err != nil {
			return eris.Wrapf(err, "clear aliases %s", c.Code)
		}
		for ext, canonical := range c.BoundaryAliases {
			if _, err := tx.ExecContext(ctx, "INSERT INTO _rto_boundary_aliases(state_code, external_name, canonical) VALUES($1,$2,$3)", c.Code, ext, canonical); err != nil {
				return eris.Wrapf(err, "insert alias %s/%s", c.Code, ext)
			}
		}
	}
	for _, r := range rtos {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO _rto_records(`+rtoCols+`) VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
             ON CONFLICT (code) DO UPDATE SET state=EXCLUDED.state, state_code=EXCLUDED.state_code, region=EXCLUDED.region,
             city=EXCLUDED.city, district=EXCLUDED.district, division=EXCLUDED.division, description=EXCLUDED.description,
             status=EXCLUDED.status, address=EXCLUDED.address, pin_code=EXCLUDED.pin_code, phone=EXCLUDED.phone,
             email=EXCLUDED.email, jurisdiction_areas=EXCLUDED.jurisdiction_areas, is_district_hq=EXCLUDED.is_district_hq`,
			r.Code, r.State, r.StateCode, r.Region, r.City, r.District, r.Division, r.Description, string(r.Status),
			r.Address, r.PinCode, r.Phone, r.Email, textArray(r.JurisdictionAreas), r.IsDistrictHeadquarter); err != nil {
			return eris.Wrapf(err, "upsert record %s", r.Code)
		}
	}
	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "commit import")
	}
	logger.L().Info("records_import_done", "states", len(states), "rtos", len(rtos))
	return nil
}
