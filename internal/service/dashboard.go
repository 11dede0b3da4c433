package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"health-dashboard/common/database"
	rediscommon "health-dashboard/common/redis"
	"health-dashboard/internal/aggregator"
	"health-dashboard/internal/config"
	"health-dashboard/internal/consumer"
	"health-dashboard/internal/debounce"
	"health-dashboard/internal/drilldown"
	"health-dashboard/internal/export"
	"health-dashboard/internal/models"
	"health-dashboard/internal/repository"
	"health-dashboard/internal/roster"
	"health-dashboard/internal/source"
	"health-dashboard/internal/state"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ErrNoDataset 尚未加载任何公司数据
var ErrNoDataset = errors.New("no dataset loaded")

const reloadTimeout = 30 * time.Second

// DashboardService 体检看板服务
// 选择公司后经 Loader 加载，状态变化时整体重算视图并写入 Redis 缓存
type DashboardService struct {
	config        *config.Config
	logger        *zap.Logger
	db            *sql.DB
	redisClient   *redis.Client
	source        source.Source
	store         *state.Store
	loader        *state.Loader
	cacheManager  *aggregator.CacheManager
	eventConsumer *consumer.EventConsumer

	// 上传事件可能连续到达，合并为一次重新加载
	reload *debounce.Debouncer[string]
	// 搜索框输入
	search *debounce.Debouncer[string]

	// 缓存写入在锁外进行，按状态版本丢弃过期的写入
	publishMu        sync.Mutex
	dashboardVersion uint64
	drillDownVersion uint64
}

// NewDashboardService 按配置连接数据库和 Redis 并创建服务
func NewDashboardService(cfg *config.Config, logger *zap.Logger) (*DashboardService, error) {
	ctx := context.Background()

	var db *sql.DB
	if cfg.Dashboard.Source == source.KindPostgres || cfg.Dashboard.Source == "" {
		var err error
		db, err = database.NewPostgresDB(ctx, &cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := repository.NewDatasetRepository(db, logger).EnsureSchema(ctx); err != nil {
			database.Close(db)
			return nil, err
		}
	}

	src, err := source.New(cfg, db, logger)
	if err != nil {
		if db != nil {
			database.Close(db)
		}
		return nil, err
	}

	redisClient := rediscommon.NewRedisClient(&cfg.Redis)
	if err := rediscommon.Ping(ctx, redisClient); err != nil {
		if db != nil {
			database.Close(db)
		}
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	s := New(cfg, logger, src, redisClient)
	s.db = db
	return s, nil
}

// New 使用已创建的依赖构建服务；redisClient 为 nil 时不缓存视图也不消费事件
func New(cfg *config.Config, logger *zap.Logger, src source.Source, redisClient *redis.Client) *DashboardService {
	store := state.NewStore()
	s := &DashboardService{
		config:      cfg,
		logger:      logger,
		redisClient: redisClient,
		source:      src,
		store:       store,
		loader:      state.NewLoader(src, store, logger),
	}

	if redisClient != nil {
		kv := aggregator.NewRedisKVStore(redisClient)
		s.cacheManager = aggregator.NewCacheManager(cfg, kv, logger)
		s.eventConsumer = consumer.NewEventConsumer(
			redisClient,
			s,
			logger,
			cfg.Dashboard.EventStream,
			cfg.Dashboard.ConsumerGroup,
			cfg.Dashboard.ConsumerName,
			int64(cfg.Dashboard.BatchSize),
		)
	}

	delay := time.Duration(cfg.Dashboard.DebounceMs) * time.Millisecond
	s.reload = debounce.New(s.reloadCompany, delay)
	s.search = debounce.New(s.applySearchTerm, delay)
	return s
}

// Start 启动服务，阻塞直到 ctx 取消
func (s *DashboardService) Start(ctx context.Context) error {
	s.logger.Info("Starting health dashboard service",
		zap.String("source", s.config.Dashboard.Source),
		zap.String("company", s.config.Dashboard.Company),
	)

	if company := s.config.Dashboard.Company; company != "" {
		if _, err := s.SelectCompany(ctx, company); err != nil {
			s.logger.Error("Failed to load initial company", zap.String("company", company), zap.Error(err))
		}
	}

	if s.eventConsumer == nil {
		<-ctx.Done()
		return nil
	}
	return s.eventConsumer.Start(ctx)
}

// Stop 停止服务：未执行的搜索立即执行，未执行的重新加载丢弃
func (s *DashboardService) Stop(ctx context.Context) error {
	s.logger.Info("Stopping health dashboard service")

	s.reload.Stop()
	s.search.Flush()

	var errs []error
	if s.redisClient != nil {
		if err := rediscommon.Close(s.redisClient); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}
	if s.db != nil {
		if err := database.Close(s.db); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Current 当前状态快照
func (s *DashboardService) Current() *state.State {
	return s.store.Current()
}

// ListCompanies 可选择的公司
func (s *DashboardService) ListCompanies(ctx context.Context) ([]string, error) {
	return s.source.ListCompanies(ctx)
}

// SelectCompany 加载公司数据集并重算视图
// 加载被更新的请求取代时不返回错误，返回当前状态
func (s *DashboardService) SelectCompany(ctx context.Context, company string) (*state.State, error) {
	st, err := s.load(ctx, company)
	if state.IsSuperseded(err) {
		return s.store.Current(), nil
	}
	return st, err
}

func (s *DashboardService) load(ctx context.Context, company string) (*state.State, error) {
	st, err := s.loader.Load(ctx, company)
	if err != nil {
		return nil, err
	}
	s.publishDashboard(ctx, st)
	s.publishDrillDown(ctx, st)
	return st, nil
}

// ScheduleReload 防抖后重新加载公司数据
func (s *DashboardService) ScheduleReload(company string) {
	s.reload.Call(company)
}

func (s *DashboardService) reloadCompany(company string) {
	ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
	defer cancel()

	if _, err := s.SelectCompany(ctx, company); err != nil {
		s.logger.Error("Failed to reload dataset", zap.String("company", company), zap.Error(err))
	}
}

// ApplyCriteria 替换过滤条件
func (s *DashboardService) ApplyCriteria(ctx context.Context, c roster.Criteria) *state.State {
	st := s.store.Dispatch(state.CriteriaChanged{Criteria: c})
	s.publishDashboard(ctx, st)
	return st
}

// TypeSearch 搜索框输入，防抖后替换过滤条件中的搜索词
func (s *DashboardService) TypeSearch(term string) {
	s.search.Call(term)
}

func (s *DashboardService) applySearchTerm(term string) {
	st := s.store.Dispatch(state.SearchTermChanged{Term: term})
	s.publishDashboard(context.Background(), st)
}

// SetStationSearch 站点名称搜索
func (s *DashboardService) SetStationSearch(ctx context.Context, term string) *state.State {
	st := s.store.Dispatch(state.StationSearchChanged{Term: term})
	s.publishDashboard(ctx, st)
	return st
}

// OpenDrillDown 生成并打开明细快照
func (s *DashboardService) OpenDrillDown(ctx context.Context, kind drilldown.Kind, dctx drilldown.Context) (drilldown.Snapshot, error) {
	if !s.store.Current().Loaded() {
		return drilldown.Snapshot{}, ErrNoDataset
	}
	st := s.store.Dispatch(state.DrillDownOpened{Kind: kind, Context: dctx})
	s.publishDrillDown(ctx, st)

	snap, _ := st.DrillDown.Current()
	s.logger.Debug("Opened drill-down",
		zap.String("kind", kind.String()),
		zap.String("title", snap.Title),
		zap.Int("records", len(snap.Records)),
	)
	return snap, nil
}

// SearchDrillDown 在当前明细快照内搜索
func (s *DashboardService) SearchDrillDown(term string) (drilldown.Snapshot, bool) {
	return s.store.Current().SearchDrillDown(term)
}

// CloseDrillDown 关闭明细
func (s *DashboardService) CloseDrillDown(ctx context.Context) {
	st := s.store.Dispatch(state.DrillDownClosed{})
	s.publishDrillDown(ctx, st)
}

// SearchIndividuals 个人搜索
func (s *DashboardService) SearchIndividuals(term string) []models.Person {
	return roster.SearchIndividuals(s.store.Current().People, term, roster.IndividualSearchLimit)
}

// PersonDetail 个人详情
func (s *DashboardService) PersonDetail(id string) (roster.Detail, bool) {
	st := s.store.Current()
	p, ok := roster.FindByID(st.People, id)
	if !ok {
		return roster.Detail{}, false
	}
	return roster.PersonDetail(p, st.Stations), true
}

// FollowUps 当前待跟进名单，按姓名/工号/部门搜索
func (s *DashboardService) FollowUps(term string) []models.FollowUpRow {
	return aggregator.FilterFollowUps(s.store.Current().Dashboard.FollowUps, term)
}

// Export 导出 Excel 到配置目录，返回文件路径
// 全量报表使用未过滤名单；待跟进名单使用当前过滤条件下的结果
func (s *DashboardService) Export(kind string) (string, error) {
	return s.exportState(s.store.Current(), kind)
}

func (s *DashboardService) exportState(st *state.State, kind string) (string, error) {
	if !st.Loaded() {
		return "", ErrNoDataset
	}

	var sheet export.Sheet
	switch kind {
	case consumer.ExportFullReport:
		sheet = export.FullReport(st.People, st.Stations)
	case consumer.ExportFollowUp:
		sheet = export.FollowUpList(st.Dashboard.FollowUps)
	default:
		return "", fmt.Errorf("unknown export kind %q", kind)
	}

	path, err := export.Save(s.config.Dashboard.ExportDir, st.Company, sheet)
	if err != nil {
		return "", err
	}
	s.logger.Info("Exported workbook",
		zap.String("company", st.Company),
		zap.String("kind", kind),
		zap.String("path", path),
		zap.Int("rows", len(sheet.Rows)),
	)
	return path, nil
}

// HandleEvent 实现 consumer.Handler
func (s *DashboardService) HandleEvent(ctx context.Context, event *consumer.DashboardEvent) error {
	switch event.EventType {
	case consumer.EventDatasetSelected:
		_, err := s.SelectCompany(ctx, event.Company)
		return err

	case consumer.EventDatasetUploaded:
		if event.Company != s.store.Current().Company {
			s.logger.Debug("Ignoring upload for inactive company", zap.String("company", event.Company))
			return nil
		}
		s.ScheduleReload(event.Company)
		return nil

	case consumer.EventExportRequested:
		st := s.store.Current()
		if st.Company != event.Company {
			var err error
			// 被取代时已加载的是其他公司，不能导出
			if st, err = s.load(ctx, event.Company); err != nil {
				return fmt.Errorf("failed to load %s for export: %w", event.Company, err)
			}
		}
		_, err := s.exportState(st, event.ExportKind)
		return err

	default:
		return nil
	}
}

func (s *DashboardService) publishDashboard(ctx context.Context, st *state.State) {
	if s.cacheManager == nil || !st.Loaded() {
		return
	}
	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	if st.Version <= s.dashboardVersion {
		return
	}
	s.dashboardVersion = st.Version
	if err := s.cacheManager.UpdateDashboardCache(ctx, &st.Dashboard); err != nil {
		s.logger.Warn("Failed to update dashboard cache", zap.String("company", st.Company), zap.Error(err))
	}
}

func (s *DashboardService) publishDrillDown(ctx context.Context, st *state.State) {
	if s.cacheManager == nil || !st.Loaded() {
		return
	}
	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	if st.Version <= s.drillDownVersion {
		return
	}
	s.drillDownVersion = st.Version
	var snap *drilldown.Snapshot
	if cur, ok := st.DrillDown.Current(); ok {
		snap = &cur
	}
	if err := s.cacheManager.UpdateDrillDownCache(ctx, st.Company, snap); err != nil {
		s.logger.Warn("Failed to update drill-down cache", zap.String("company", st.Company), zap.Error(err))
	}
}
