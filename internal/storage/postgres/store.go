package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/agrolytics/maize-advisor/internal/model"
	"github.com/agrolytics/maize-advisor/internal/model/entities"
)

// Store implements every accessor contract the services consume, backed by
// one gorm connection.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

// Open connects to Postgres and migrates the schema.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.AutoMigrate(
		&entities.Farm{},
		&entities.MaizeVariety{},
		&entities.PlantingSession{},
		&entities.SoilSample{},
		&entities.WeatherObservation{},
		&entities.YieldPrediction{},
		&entities.Recommendation{},
	); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

// ---------------- sessions / varieties / farms ----------------

func (s *Store) SessionByID(ctx context.Context, id uint) (*entities.PlantingSession, error) {
	var sess entities.PlantingSession
	err := s.db.WithContext(ctx).Preload("Farm").Preload("Variety").First(&sess, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &model.NotFoundError{Kind: "planting session", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *Store) FarmByID(ctx context.Context, id uint) (*entities.Farm, error) {
	var farm entities.Farm
	err := s.db.WithContext(ctx).First(&farm, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &model.NotFoundError{Kind: "farm", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &farm, nil
}

func (s *Store) VarietyByID(ctx context.Context, id uint) (*entities.MaizeVariety, error) {
	var v entities.MaizeVariety
	err := s.db.WithContext(ctx).First(&v, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &model.NotFoundError{Kind: "maize variety", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ---------------- soil ----------------

// LatestSoilSample returns the newest sample for the farm, or nil when the
// farm has never been sampled. Absence is reduced data completeness, not an
// error.
func (s *Store) LatestSoilSample(ctx context.Context, farmID uint) (*entities.SoilSample, error) {
	var sample entities.SoilSample
	err := s.db.WithContext(ctx).
		Where("farm_id = ?", farmID).
		Order("sample_date DESC").
		First(&sample).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sample, nil
}

// ---------------- weather observations ----------------

func (s *Store) ObservationByDate(ctx context.Context, farmID uint, date time.Time) (*entities.WeatherObservation, error) {
	day := date.UTC().Truncate(24 * time.Hour)
	var obs entities.WeatherObservation
	err := s.db.WithContext(ctx).
		Where("farm_id = ? AND date = ?", farmID, day).
		First(&obs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &obs, nil
}

// UpsertObservation inserts or replaces the row for (farm, date). Safe under
// concurrent identical writes.
func (s *Store) UpsertObservation(ctx context.Context, obs entities.WeatherObservation) error {
	obs.Date = obs.Day()
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "farm_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"temp_min", "temp_max", "temp_avg", "rainfall_mm",
			"humidity_pct", "wind_speed", "solar_radiation", "source",
		}),
	}).Create(&obs).Error
}

// ObservationsBetween returns the farm's observations with from <= date < to,
// ascending by date.
func (s *Store) ObservationsBetween(ctx context.Context, farmID uint, from, to time.Time) ([]entities.WeatherObservation, error) {
	var out []entities.WeatherObservation
	err := s.db.WithContext(ctx).
		Where("farm_id = ? AND date >= ? AND date < ?", farmID, from.UTC(), to.UTC()).
		Order("date ASC").
		Find(&out).Error
	return out, err
}

// ---------------- predictions ----------------

func (s *Store) SavePrediction(ctx context.Context, p *entities.YieldPrediction) error {
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *Store) PredictionByID(ctx context.Context, id string) (*entities.YieldPrediction, error) {
	var p entities.YieldPrediction
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &model.NotFoundError{Kind: "yield prediction", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) PredictionsBySession(ctx context.Context, sessionID uint) ([]entities.YieldPrediction, error) {
	var out []entities.YieldPrediction
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("prediction_date DESC").
		Find(&out).Error
	return out, err
}

// AvgPredictedYield averages the stored prediction history across all
// sessions of the same farm and variety. ok is false when no history exists.
func (s *Store) AvgPredictedYield(ctx context.Context, farmID, varietyID uint) (float64, bool, error) {
	var row struct {
		Avg *float64
	}
	err := s.db.WithContext(ctx).
		Model(&entities.YieldPrediction{}).
		Select("AVG(yield_predictions.predicted_yield) as avg").
		Joins("JOIN planting_sessions ON planting_sessions.id = yield_predictions.session_id").
		Where("planting_sessions.farm_id = ? AND planting_sessions.variety_id = ?", farmID, varietyID).
		Scan(&row).Error
	if err != nil {
		return 0, false, err
	}
	if row.Avg == nil {
		return 0, false, nil
	}
	return *row.Avg, true, nil
}

// ---------------- recommendations ----------------

func (s *Store) SaveRecommendations(ctx context.Context, batch []entities.Recommendation) error {
	if len(batch) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(&batch).Error
}

func (s *Store) RecommendationsBySession(ctx context.Context, sessionID uint) ([]entities.Recommendation, error) {
	var out []entities.Recommendation
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}
