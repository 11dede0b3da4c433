package config

import (
	"os"
	"strconv"

	commoncfg "health-dashboard/common/config"
)

// Config 体检看板服务配置
type Config struct {
	Database commoncfg.DatabaseConfig
	Redis    commoncfg.RedisConfig

	Dashboard struct {
		// 数据来源："postgres"（直接读库）或 "http"（调用导入服务 API）
		Source     string
		APIBaseURL string
		APITimeout int // 秒

		// 启动时加载的公司（可为空，等待 dataset.selected 事件）
		Company string

		// Redis Streams 配置（接收上传/切换/导出事件）
		EventStream   string
		ConsumerGroup string
		ConsumerName  string
		BatchSize     int

		// 视图缓存 TTL（秒）
		ViewTTL int

		// 导出文件目录
		ExportDir string

		// 重新加载防抖（毫秒）
		DebounceMs int
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 加载配置
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Database.Host = "localhost"
	cfg.Database.Port = 5432
	cfg.Database.User = "postgres"
	cfg.Database.Password = "postgres"
	cfg.Database.Database = "health_dashboard"
	cfg.Database.SSLMode = "disable"
	cfg.Database.LoadFromEnv("DB")

	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.LoadFromEnv("REDIS")

	cfg.Dashboard.Source = getEnv("DASHBOARD_SOURCE", "postgres")
	cfg.Dashboard.APIBaseURL = getEnv("DASHBOARD_API_BASE_URL", "http://localhost:3000")
	cfg.Dashboard.APITimeout = parsePositiveInt(getEnv("DASHBOARD_API_TIMEOUT", "30"), 30)
	cfg.Dashboard.Company = getEnv("DASHBOARD_COMPANY", "")
	cfg.Dashboard.EventStream = getEnv("DASHBOARD_EVENT_STREAM", "health-dashboard:events")
	cfg.Dashboard.ConsumerGroup = getEnv("DASHBOARD_CONSUMER_GROUP", "health-dashboard-group")
	cfg.Dashboard.ConsumerName = getEnv("DASHBOARD_CONSUMER_NAME", "health-dashboard-1")
	cfg.Dashboard.BatchSize = parsePositiveInt(getEnv("DASHBOARD_BATCH_SIZE", "10"), 10)
	cfg.Dashboard.ViewTTL = parsePositiveInt(getEnv("DASHBOARD_VIEW_TTL", "3600"), 3600)
	cfg.Dashboard.ExportDir = getEnv("DASHBOARD_EXPORT_DIR", "exports")
	cfg.Dashboard.DebounceMs = parsePositiveInt(getEnv("DASHBOARD_DEBOUNCE_MS", "300"), 300)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parsePositiveInt(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return def
	}
	return v
}
