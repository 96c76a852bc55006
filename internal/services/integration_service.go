package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"capristore/internal/metrics"
	"capristore/internal/models"
	"capristore/internal/repositories"
	"capristore/pkg/cache"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const externalFeedName = "external-products"

// IntegrationService compares the shop's inventory with the partner feed.
type IntegrationService struct {
	repo     repositories.IntegrationRepository
	cache    cache.FeedCache
	cacheTTL time.Duration
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewIntegrationService creates a new IntegrationService. feedCache may be nil.
func NewIntegrationService(
	repo repositories.IntegrationRepository,
	feedCache cache.FeedCache,
	cacheTTL time.Duration,
	m *metrics.Metrics,
	logger *zap.Logger,
) *IntegrationService {
	if feedCache == nil {
		feedCache = cache.NoopFeedCache{}
	}
	return &IntegrationService{
		repo:     repo,
		cache:    feedCache,
		cacheTTL: cacheTTL,
		metrics:  m,
		logger:   logger,
	}
}

// Reconcile normalizes both feeds, applies the filter to each and pairs
// products by name. A failing external feed is reported, not returned.
func (s *IntegrationService) Reconcile(ctx context.Context, filter ProductFilter) (*models.ReconciliationReport, error) {
	localRecords, err := s.repo.LocalProducts(ctx)
	if err != nil {
		return nil, err
	}

	report := &models.ReconciliationReport{}
	externalRecords, err := s.externalRecords(ctx)
	if err != nil {
		s.logger.Warn("external feed unavailable", zap.Error(err))
		report.ExternalErr = err.Error()
	}

	report.Local = filter.ApplyFeed(NormalizeFeed(localRecords))
	report.External = filter.ApplyFeed(NormalizeFeed(externalRecords))
	report.Matches, report.OnlyLocal, report.OnlyExternal = matchByName(report.Local, report.External)
	return report, nil
}

func (s *IntegrationService) externalRecords(ctx context.Context) ([]repositories.FeedRecord, error) {
	payload, err := s.cache.Get(ctx, externalFeedName)
	switch {
	case err == nil:
		var records []repositories.FeedRecord
		if jsonErr := json.Unmarshal(payload, &records); jsonErr == nil {
			s.metrics.IncFeedCache(true)
			return records, nil
		}
		s.logger.Warn("discarding unreadable cached feed")
	case !errors.Is(err, cache.ErrMiss):
		s.logger.Warn("feed cache lookup failed", zap.Error(err))
	}
	s.metrics.IncFeedCache(false)

	records, err := s.repo.ExternalProducts(ctx)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(records); err == nil {
		if err := s.cache.Set(ctx, externalFeedName, payload, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache external feed", zap.Error(err))
		}
	}
	return records, nil
}

// NormalizeFeed converts raw records to FeedProduct. Missing or unparsable
// fields fall back to empty text and zero numbers; units are lower-cased.
func NormalizeFeed(records []repositories.FeedRecord) []models.FeedProduct {
	products := make([]models.FeedProduct, 0, len(records))
	for _, r := range records {
		products = append(products, models.FeedProduct{
			ID:    stringOf(r["id"]),
			Name:  textOf(r["name"]),
			Price: decimalOf(r["price"]),
			Unit:  strings.ToLower(textOf(r["unit"])),
			Stock: intOf(r["stock"]),
		})
	}
	return products
}

func matchByName(local, external []models.FeedProduct) (matches []models.ProductMatch, onlyLocal, onlyExternal []models.FeedProduct) {
	byName := make(map[string]int, len(external))
	for i, p := range external {
		key := nameKey(p.Name)
		if _, dup := byName[key]; key != "" && !dup {
			byName[key] = i
		}
	}

	matches = make([]models.ProductMatch, 0)
	onlyLocal = make([]models.FeedProduct, 0)
	used := make(map[int]bool, len(external))
	for _, l := range local {
		i, ok := byName[nameKey(l.Name)]
		if !ok || used[i] {
			onlyLocal = append(onlyLocal, l)
			continue
		}
		used[i] = true
		e := external[i]
		matches = append(matches, models.ProductMatch{
			Name:       l.Name,
			Local:      l,
			External:   e,
			PriceDiff:  e.Price.Sub(l.Price),
			StockDiff:  e.Stock - l.Stock,
			UnitsMatch: l.Unit == e.Unit,
		})
	}

	onlyExternal = make([]models.FeedProduct, 0)
	for i, e := range external {
		if !used[i] {
			onlyExternal = append(onlyExternal, e)
		}
	}
	return matches, onlyLocal, onlyExternal
}

func nameKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func textOf(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func stringOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func decimalOf(v any) decimal.Decimal {
	switch t := v.(type) {
	case float64:
		return decimal.NewFromFloat(t)
	case int:
		return decimal.NewFromInt(int64(t))
	case int64:
		return decimal.NewFromInt(t)
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(t)); err == nil {
			return d
		}
	}
	return decimal.Zero
}

func intOf(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case int:
		return t
	case int64:
		return int(t)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return int(f)
		}
	}
	return 0
}
