package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/scubot/tidechart/pkg/station"
)

// stationRecord is the stations table.
type stationRecord struct {
	ID        string `gorm:"primaryKey"`
	Name      string
	Latitude  float64
	Longitude float64
	CreatedAt time.Time `gorm:"index"`
}

func (stationRecord) TableName() string {
	return "stations"
}

// PostgresConfig uses the libpq environment variables.
type PostgresConfig struct {
	Host     string `envconfig:"PGHOST" default:"localhost"`
	Port     string `envconfig:"PGPORT" default:"5432"`
	User     string `envconfig:"PGUSER" default:"postgres"`
	Password string `envconfig:"PGPASSWORD"`
	Database string `envconfig:"PGDATABASE" default:"tidechart"`
	SSLMode  string `envconfig:"PGSSLMODE" default:"disable"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.Host,
		c.User,
		c.Password,
		c.Database,
		c.Port,
		c.SSLMode)
}

// Postgres stores stations in a SQL table through gorm.
type Postgres struct {
	db *gorm.DB
}

// PostgresFromEnv connects using PGHOST, PGPORT, PGUSER, PGPASSWORD and PGDATABASE
// and migrates the stations table.
func PostgresFromEnv() (*Postgres, error) {
	var cfg PostgresConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return NewPostgres(db)
}

// NewPostgres wraps an open connection and migrates the stations table.
func NewPostgres(db *gorm.DB) (*Postgres, error) {
	if err := db.AutoMigrate(&stationRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate stations table: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Get(ctx context.Context, id string) (station.Station, bool, error) {
	var rec stationRecord
	err := p.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return station.Station{}, false, nil
	}
	if err != nil {
		return station.Station{}, false, err
	}
	return rec.station(), true, nil
}

func (p *Postgres) Put(ctx context.Context, st station.Station) error {
	if err := st.Validate(); err != nil {
		return fmt.Errorf("refusing to store station: %w", err)
	}
	rec := stationRecord{
		ID:        st.ID,
		Name:      st.Name,
		Latitude:  st.Latitude,
		Longitude: st.Longitude,
	}
	return p.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rec).Error
}

func (p *Postgres) All(ctx context.Context) ([]station.Station, error) {
	var recs []stationRecord
	if err := p.db.WithContext(ctx).Order("created_at, id").Find(&recs).Error; err != nil {
		return nil, err
	}
	result := make([]station.Station, 0, len(recs))
	for _, rec := range recs {
		result = append(result, rec.station())
	}
	return result, nil
}

func (rec stationRecord) station() station.Station {
	return station.Station{
		ID:        rec.ID,
		Name:      rec.Name,
		Latitude:  rec.Latitude,
		Longitude: rec.Longitude,
	}
}
