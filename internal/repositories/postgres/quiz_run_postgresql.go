package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/SAP-F-2025/quiz-generator/internal/models"
	"github.com/SAP-F-2025/quiz-generator/internal/repositories"
	"gorm.io/gorm"
)

type QuizRunPostgreSQL struct {
	db *gorm.DB
}

func NewQuizRunPostgreSQL(db *gorm.DB) repositories.QuizRunRepository {
	return &QuizRunPostgreSQL{db: db}
}

func (q QuizRunPostgreSQL) Create(ctx context.Context, run *models.QuizRun) error {
	return q.db.WithContext(ctx).Create(run).Error
}

func (q QuizRunPostgreSQL) GetByID(ctx context.Context, id string) (*models.QuizRun, error) {
	var run models.QuizRun
	if err := q.db.WithContext(ctx).Where("id = ?", id).First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

func (q QuizRunPostgreSQL) List(ctx context.Context, filters repositories.QuizRunFilters) ([]*models.QuizRun, int64, error) {
	var runs []*models.QuizRun
	var total int64
	filters = repositories.NormalizeFilters(filters)

	// apply filter first
	query := q.db.WithContext(ctx).Model(&models.QuizRun{})
	query = q.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then apply pagination and sorting
	query = query.Order(fmt.Sprintf("%s %s", filters.SortBy, filters.SortOrder)).
		Limit(filters.Limit).
		Offset(filters.Offset)

	if err := query.Find(&runs).Error; err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}

func (q QuizRunPostgreSQL) GetLatestByURL(ctx context.Context, url string) (*models.QuizRun, error) {
	var run models.QuizRun
	if err := q.db.WithContext(ctx).
		Where("url = ? AND status = ?", url, models.RunSuccess).
		Order("created_at DESC").
		First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

func (q QuizRunPostgreSQL) Stats(ctx context.Context) (*repositories.QuizRunStats, error) {
	var stats repositories.QuizRunStats
	err := q.db.WithContext(ctx).Model(&models.QuizRun{}).
		Select(`COUNT(*) AS total_runs,
			COUNT(*) FILTER (WHERE status = ?) AS successful_runs,
			COUNT(*) FILTER (WHERE status = ?) AS failed_runs,
			COALESCE(AVG(duration_ms), 0) AS average_duration_ms,
			COALESCE(SUM(question_count), 0) AS total_questions`,
			models.RunSuccess, models.RunFailure).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (q QuizRunPostgreSQL) applyFilters(query *gorm.DB, filters repositories.QuizRunFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.URL != "" {
		query = query.Where("url = ?", filters.URL)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}
