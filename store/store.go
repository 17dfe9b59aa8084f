// Package store persists intake records in the intakes table: identity
// columns plus one opaque JSON data blob per record.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/mbolis/boxer-intake/model"
)

var ErrNotFound = errors.New("intake not found")

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Create inserts a new record and returns its id. The insert is committed
// before Create returns.
func (s *Store) Create(ctx context.Context, athleteName, email *string, rec model.Record) (int64, error) {
	data, err := rec.MarshalData()
	if err != nil {
		return 0, errors.Wrap(err, "store: encode intake")
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO intakes (created_at_utc, athlete_name, email, data_json)
		VALUES (?, ?, ?, ?)`,
		model.FormatTimestamp(s.now()),
		athleteName,
		email,
		string(data),
	)
	if err != nil {
		return 0, errors.Wrap(err, "store: insert intake")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "store: insert intake id")
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, id int64) (model.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at_utc, athlete_name, email, data_json
		FROM intakes
		WHERE id = ?`,
		id,
	)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Record{}, ErrNotFound
	}
	if err != nil {
		return model.Record{}, errors.Wrapf(err, "store: get intake %d", id)
	}
	return rec, nil
}

// ListAll returns every record, newest (highest id) first.
func (s *Store) ListAll(ctx context.Context) ([]model.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at_utc, athlete_name, email, data_json
		FROM intakes
		ORDER BY id DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "store: list intakes")
	}
	defer rows.Close()

	records := []model.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, errors.Wrap(err, "store: list intakes scan")
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "store: list intakes")
	}
	return records, nil
}

// ReplaceFields overwrites the data blob (fields, meta, upload references) of
// an existing record. Identity columns and created_at_utc are untouched.
// A missing id yields ErrNotFound.
func (s *Store) ReplaceFields(ctx context.Context, id int64, rec model.Record) error {
	data, err := rec.MarshalData()
	if err != nil {
		return errors.Wrap(err, "store: encode intake")
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE intakes
		SET data_json = ?
		WHERE id = ?`,
		string(data),
		id,
	)
	if err != nil {
		return errors.Wrapf(err, "store: update intake %d", id)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "store: update intake %d verify", id)
	}
	if n < 1 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (model.Record, error) {
	var (
		rec     model.Record
		created string
		name    sql.NullString
		email   sql.NullString
		data    string
	)
	if err := row.Scan(&rec.ID, &created, &name, &email, &data); err != nil {
		return model.Record{}, err
	}

	var err error
	rec.CreatedAt, err = model.ParseTimestamp(created)
	if err != nil {
		return model.Record{}, errors.Wrapf(err, "intake %d created_at_utc", rec.ID)
	}
	if name.Valid {
		rec.AthleteName = &name.String
	}
	if email.Valid {
		rec.Email = &email.String
	}
	if err = rec.UnmarshalData([]byte(data)); err != nil {
		return model.Record{}, errors.Wrapf(err, "intake %d data_json", rec.ID)
	}
	return rec, nil
}
