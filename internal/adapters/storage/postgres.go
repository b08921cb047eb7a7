package storage

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"

	"tickstats/internal/domain"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(ctx context.Context, dsn string) (*PostgresRepo, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresRepo{db: db}, nil
}

func (p *PostgresRepo) InsertAggregates(ctx context.Context, rows []domain.MinuteAggregate) error {
	if len(rows) == 0 {
		return nil
	}
	const q = `
		INSERT INTO tick_aggregates (instrument, ts, avg_price, min_price, max_price, tick_count)
		VALUES ($1,$2,$3,$4,$5,$6)
	`
	tx, err := p.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.Instrument, r.Ts, r.Avg, r.Min, r.Max, r.Count); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (p *PostgresRepo) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.db.PingContext(ctx)
}

func (p *PostgresRepo) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}
