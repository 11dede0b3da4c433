package source

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"health-dashboard/internal/models"
	"health-dashboard/internal/repository"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// companyResponse GET /company/{name} 响应
type companyResponse struct {
	ProcessedData  []models.Person  `json:"processedData"`
	ActiveStations []models.Station `json:"activeStations"`
}

// errorResponse 导入服务错误响应
type errorResponse struct {
	Message string `json:"message"`
}

// APIClient 导入服务 API 客户端（数据集来源之一）
type APIClient struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewAPIClient 创建客户端；timeout <= 0 时使用 30 秒
func NewAPIClient(baseURL string, timeout time.Duration, logger *zap.Logger) *APIClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		}).
		SetHeader("Accept", "application/json")

	return &APIClient{
		httpClient: client,
		logger:     logger,
	}
}

// ListCompanies GET /companies
func (c *APIClient) ListCompanies(ctx context.Context) ([]string, error) {
	var companies []string
	var apiErr errorResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&companies).
		SetError(&apiErr).
		Get("/companies")
	if err != nil {
		return nil, fmt.Errorf("failed to call companies API: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp.StatusCode(), apiErr)
	}
	if companies == nil {
		companies = []string{}
	}
	return companies, nil
}

// LoadDataset GET /company/{name}，校验后返回，实现 state.Source
func (c *APIClient) LoadDataset(ctx context.Context, company string) (*models.Dataset, error) {
	c.logger.Debug("Calling ingestion API: company dataset", zap.String("company", company))

	var body companyResponse
	var apiErr errorResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("company", company).
		SetResult(&body).
		SetError(&apiErr).
		Get("/company/{company}")
	if err != nil {
		c.logger.Error("Ingestion API call failed", zap.String("company", company), zap.Error(err))
		return nil, fmt.Errorf("failed to call company API: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", repository.ErrDatasetNotFound, company)
	}
	if resp.IsError() {
		c.logger.Error("Ingestion API returned error",
			zap.String("company", company),
			zap.Int("status_code", resp.StatusCode()),
			zap.String("msg", apiErr.Message),
		)
		return nil, apiError(resp.StatusCode(), apiErr)
	}

	ds := &models.Dataset{
		Company:        company,
		People:         body.ProcessedData,
		ActiveStations: body.ActiveStations,
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

func apiError(status int, body errorResponse) error {
	if body.Message != "" {
		return fmt.Errorf("ingestion API error: %s (status: %d)", body.Message, status)
	}
	return fmt.Errorf("ingestion API error: status %d", status)
}
