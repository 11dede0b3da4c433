// Package source 选择数据集来源：Postgres 直读或导入服务 API
package source

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"health-dashboard/internal/config"
	"health-dashboard/internal/models"
	"health-dashboard/internal/repository"

	"go.uber.org/zap"
)

const (
	KindPostgres = "postgres"
	KindHTTP     = "http"
)

// Source 数据集来源
type Source interface {
	LoadDataset(ctx context.Context, company string) (*models.Dataset, error)
	ListCompanies(ctx context.Context) ([]string, error)
}

// New 按配置创建来源；postgres 来源需要 db
func New(cfg *config.Config, db *sql.DB, logger *zap.Logger) (Source, error) {
	switch cfg.Dashboard.Source {
	case KindPostgres, "":
		if db == nil {
			return nil, fmt.Errorf("postgres source requires a database connection")
		}
		return repository.NewDatasetRepository(db, logger), nil
	case KindHTTP:
		timeout := time.Duration(cfg.Dashboard.APITimeout) * time.Second
		return NewAPIClient(cfg.Dashboard.APIBaseURL, timeout, logger), nil
	default:
		return nil, fmt.Errorf("unknown dataset source %q", cfg.Dashboard.Source)
	}
}
