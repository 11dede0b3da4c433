package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"health-dashboard/internal/models"

	"go.uber.org/zap"
)

// ErrDatasetNotFound 公司没有已处理的数据集
var ErrDatasetNotFound = errors.New("dataset not found")

// DatasetRepository 公司数据集（processed_data / active_stations 以 JSONB 存储）
type DatasetRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDatasetRepository 创建数据集仓库
func NewDatasetRepository(db *sql.DB, logger *zap.Logger) *DatasetRepository {
	return &DatasetRepository{
		db:     db,
		logger: logger,
	}
}

// ListCompanies 已保存数据集的公司，按名称排序
func (r *DatasetRepository) ListCompanies(ctx context.Context) ([]string, error) {
	query := `
		SELECT company_name
		FROM company_datasets
		ORDER BY company_name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query companies: %w", err)
	}
	defer rows.Close()

	companies := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating companies: %w", err)
	}
	return companies, nil
}

// GetDataset 读取公司数据集（不做校验）
func (r *DatasetRepository) GetDataset(ctx context.Context, company string) (*models.Dataset, error) {
	query := `
		SELECT
			processed_data,
			active_stations
		FROM company_datasets
		WHERE company_name = $1
	`

	var peopleJSON, stationsJSON []byte
	err := r.db.QueryRowContext(ctx, query, company).Scan(&peopleJSON, &stationsJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, company)
		}
		return nil, fmt.Errorf("failed to query dataset: %w", err)
	}

	ds := &models.Dataset{Company: company}
	if len(peopleJSON) > 0 {
		if err := json.Unmarshal(peopleJSON, &ds.People); err != nil {
			return nil, fmt.Errorf("failed to parse processed_data: %w", err)
		}
	}
	if len(stationsJSON) > 0 {
		if err := json.Unmarshal(stationsJSON, &ds.ActiveStations); err != nil {
			return nil, fmt.Errorf("failed to parse active_stations: %w", err)
		}
	}
	return ds, nil
}

// LoadDataset 读取并校验数据集，实现 state.Source
func (r *DatasetRepository) LoadDataset(ctx context.Context, company string) (*models.Dataset, error) {
	ds, err := r.GetDataset(ctx, company)
	if err != nil {
		return nil, err
	}
	if err := ds.Validate(); err != nil {
		r.logger.Warn("Rejected invalid dataset",
			zap.String("company", company),
			zap.Error(err),
		)
		return nil, err
	}

	r.logger.Debug("Loaded dataset from database",
		zap.String("company", company),
		zap.Int("people", len(ds.People)),
		zap.Int("stations", len(ds.ActiveStations)),
	)
	return ds, nil
}

// SaveDataset 写入（覆盖）公司数据集
func (r *DatasetRepository) SaveDataset(ctx context.Context, ds *models.Dataset) error {
	if ds.Company == "" {
		return fmt.Errorf("%w: empty company name", models.ErrInvalidRecord)
	}
	if err := ds.Validate(); err != nil {
		return err
	}

	peopleJSON, err := json.Marshal(ds.People)
	if err != nil {
		return fmt.Errorf("failed to marshal processed_data: %w", err)
	}
	stationsJSON, err := json.Marshal(ds.ActiveStations)
	if err != nil {
		return fmt.Errorf("failed to marshal active_stations: %w", err)
	}

	query := `
		INSERT INTO company_datasets (company_name, processed_data, active_stations, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (company_name) DO UPDATE
		SET processed_data = EXCLUDED.processed_data,
			active_stations = EXCLUDED.active_stations,
			updated_at = NOW()
	`
	if _, err := r.db.ExecContext(ctx, query, ds.Company, peopleJSON, stationsJSON); err != nil {
		return fmt.Errorf("failed to save dataset: %w", err)
	}

	r.logger.Info("Saved dataset",
		zap.String("company", ds.Company),
		zap.Int("people", len(ds.People)),
	)
	return nil
}

const datasetSchema = `
	CREATE TABLE IF NOT EXISTS company_datasets (
		company_name    TEXT PRIMARY KEY,
		processed_data  JSONB NOT NULL DEFAULT '[]'::jsonb,
		active_stations JSONB NOT NULL DEFAULT '[]'::jsonb,
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// EnsureSchema 创建 company_datasets 表（已存在则跳过）
func (r *DatasetRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, datasetSchema); err != nil {
		return fmt.Errorf("failed to create company_datasets: %w", err)
	}
	return nil
}
