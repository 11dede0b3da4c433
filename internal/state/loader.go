package state

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"health-dashboard/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrSuperseded 加载结果已被更新的请求取代，调用方应直接忽略
var ErrSuperseded = errors.New("load superseded by a newer request")

// Source 数据集来源（Postgres 或导入服务 API）
type Source interface {
	LoadDataset(ctx context.Context, company string) (*models.Dataset, error)
}

// Loader 异步加载数据集并提交到 Store
// 每个请求分配递增序号，只有最新请求的结果（成功或失败）会生效
type Loader struct {
	source Source
	store  *Store
	logger *zap.Logger
	seq    atomic.Uint64
}

// NewLoader 创建加载器
func NewLoader(source Source, store *Store, logger *zap.Logger) *Loader {
	return &Loader{
		source: source,
		store:  store,
		logger: logger,
	}
}

// Load 加载公司数据集。
// 被更新请求取代时返回 ErrSuperseded；最新请求失败时返回错误，Store 保持原状态
func (l *Loader) Load(ctx context.Context, company string) (*State, error) {
	seq := l.seq.Add(1)
	requestID := uuid.NewString()
	logger := l.logger.With(
		zap.String("request_id", requestID),
		zap.String("company", company),
		zap.Uint64("seq", seq),
	)
	logger.Debug("Loading dataset")

	ds, err := l.source.LoadDataset(ctx, company)
	if l.seq.Load() != seq {
		logger.Debug("Discarding superseded load result", zap.Error(err))
		return nil, ErrSuperseded
	}
	if err != nil {
		logger.Error("Failed to load dataset", zap.Error(err))
		return nil, fmt.Errorf("failed to load dataset for %s: %w", company, err)
	}

	st, ok := l.store.DispatchIf(func(*State) bool {
		return l.seq.Load() == seq
	}, DatasetLoaded{Company: company, Dataset: ds})
	if !ok {
		logger.Debug("Discarding superseded load result")
		return nil, ErrSuperseded
	}

	logger.Info("Dataset loaded",
		zap.Int("people", len(st.People)),
		zap.Int("stations", len(st.Stations)),
	)
	return st, nil
}

// IsSuperseded 判断是否为被取代的加载
func IsSuperseded(err error) bool {
	return errors.Is(err, ErrSuperseded)
}
