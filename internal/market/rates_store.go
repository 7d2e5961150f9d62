// Package market supplies market context for rate recommendations: lane
// rate benchmarks from the rates warehouse and freight-industry news
// headlines for sales context.
package market

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/snowflakedb/gosnowflake" // Snowflake driver
)

// WarehouseConfig is the Snowflake connection for the rates warehouse.
type WarehouseConfig struct {
	Account   string `yaml:"account"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	Database  string `yaml:"database"`
	Schema    string `yaml:"schema"`
	Warehouse string `yaml:"warehouse"`
}

// LaneRate is one benchmark row: the going rate band for a container
// type on an origin/destination port-code lane.
type LaneRate struct {
	OriginCode      string    `json:"origin_code"`
	DestinationCode string    `json:"destination_code"`
	ContainerType   string    `json:"container_type"`
	LowUSD          float64   `json:"low_usd"`
	HighUSD         float64   `json:"high_usd"`
	ValidFrom       time.Time `json:"valid_from"`
}

// RatesStore reads lane benchmarks from the warehouse.
type RatesStore struct {
	db *sql.DB
}

// NewRatesStore opens the Snowflake connection.
func NewRatesStore(cfg WarehouseConfig) (*RatesStore, error) {
	dsn := fmt.Sprintf("%s:%s@%s/%s/%s", cfg.User, cfg.Password, cfg.Account, cfg.Database, cfg.Schema)
	if cfg.Warehouse != "" {
		dsn += "?warehouse=" + cfg.Warehouse
	}
	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("market: opening warehouse connection: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)
	return &RatesStore{db: db}, nil
}

// NewRatesStoreWithDB wraps an existing handle, used by tests.
func NewRatesStoreWithDB(db *sql.DB) *RatesStore {
	return &RatesStore{db: db}
}

// Close releases the connection pool.
func (s *RatesStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping verifies warehouse connectivity.
func (s *RatesStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// LaneRates returns the current benchmarks for a lane, newest first.
func (s *RatesStore) LaneRates(ctx context.Context, originCode, destCode string) ([]LaneRate, error) {
	query := `
		SELECT ORIGIN_CODE, DESTINATION_CODE, CONTAINER_TYPE, LOW_USD, HIGH_USD, VALID_FROM
		FROM LANE_RATE_BENCHMARKS
		WHERE ORIGIN_CODE = ? AND DESTINATION_CODE = ?
		ORDER BY VALID_FROM DESC
	`
	rows, err := s.db.QueryContext(ctx, query, originCode, destCode)
	if err != nil {
		return nil, fmt.Errorf("market: querying lane rates: %w", err)
	}
	defer rows.Close()

	var out []LaneRate
	for rows.Next() {
		var r LaneRate
		if err := rows.Scan(&r.OriginCode, &r.DestinationCode, &r.ContainerType, &r.LowUSD, &r.HighUSD, &r.ValidFrom); err != nil {
			return nil, fmt.Errorf("market: scanning lane rate: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Snapshot renders the lane's benchmarks in the map shape the rate
// recommender consumes: container type to "$low-$high".
func (s *RatesStore) Snapshot(ctx context.Context, originCode, destCode string) (map[string]any, error) {
	rates, err := s.LaneRates(ctx, originCode, destCode)
	if err != nil {
		return nil, err
	}
	bands := map[string]any{}
	for _, r := range rates {
		if _, seen := bands[r.ContainerType]; seen {
			continue // newest row per container type wins
		}
		bands[r.ContainerType] = fmt.Sprintf("$%.0f-$%.0f", r.LowUSD, r.HighUSD)
	}
	return map[string]any{
		"lane":        originCode + "-" + destCode,
		"rate_ranges": bands,
	}, nil
}
