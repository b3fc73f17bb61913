// Package geocode 通过 Nominatim 反向地理编码，把 GPS 坐标转换为 City_REGION。
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/John-Robertt/nameback/internal/infra/httpx"
)

const (
	DefaultEndpoint = "https://nominatim.openstreetmap.org/reverse"
	// MemoTTL 是内存缓存有效期。
	MemoTTL = time.Hour
)

var ErrNoLocation = errors.New("geocode: 响应中没有可用的地名")

// memoEntry 的 key 为保留 4 位小数的坐标。
type memoEntry struct {
	location string
	at       time.Time
}

// Client 是 Nominatim 反向地理编码客户端。
//
// 约束：
// - 全局最多每秒 1 个外发请求（rate.Limiter，阻塞等待而不是丢弃）
// - 缓存的"查-填"在同一把锁内完成：同一坐标并发查询只会发出一次请求
// - 连续失败后熔断，熔断期间直接返回错误，上层回退为坐标格式
type Client struct {
	Endpoint string
	HTTP     *http.Client
	Logger   *slog.Logger

	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[string]
	now     func() time.Time

	mu   sync.Mutex
	memo map[string]memoEntry
}

// New 构造客户端；userAgent 会作为每个请求的 User-Agent。
func New(userAgent string, logger *slog.Logger) (*Client, error) {
	hc, err := httpx.NewClient(httpx.Options{UserAgent: userAgent, Timeout: httpx.DefaultTimeout})
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		Endpoint: DefaultEndpoint,
		HTTP:     hc,
		Logger:   logger,
		limiter:  rate.NewLimiter(rate.Every(time.Second), 1),
		now:      time.Now,
		memo:     map[string]memoEntry{},
	}
	c.breaker = gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "nominatim",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			// 没有地名不是服务故障。
			return err == nil || errors.Is(err, ErrNoLocation) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit_breaker_state_change", "name", name, "from", from.String(), "to", to.String())
		},
	})
	return c, nil
}

func memoKey(lat, lon float64) string {
	return fmt.Sprintf("%.4f,%.4f", lat, lon)
}

// Reverse 返回坐标对应的 City_REGION（或单独的城市/地区）。
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (string, error) {
	key := memoKey(lat, lon)

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.memo[key]; ok && c.now().Sub(e.at) < MemoTTL {
		c.Logger.Debug("geocode cache hit", "key", key)
		return e.location, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	loc, err := c.breaker.Execute(func() (string, error) {
		return c.fetch(ctx, lat, lon)
	})
	if err != nil {
		return "", err
	}
	c.memo[key] = memoEntry{location: loc, at: c.now()}
	return loc, nil
}

type response struct {
	Address *Address `json:"address"`
}

// Address 是 Nominatim 响应中 address 字段的子集。
type Address struct {
	City        string `json:"city"`
	Town        string `json:"town"`
	Village     string `json:"village"`
	Hamlet      string `json:"hamlet"`
	Suburb      string `json:"suburb"`
	State       string `json:"state"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
}

func (c *Client) fetch(ctx context.Context, lat, lon float64) (string, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("format", "json")
	q.Set("zoom", "10")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	c.Logger.Debug("geocoding via nominatim", "lat", lat, "lon", lon)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("geocode 请求失败：%w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("geocode 返回状态码 %d", resp.StatusCode)
	}
	var r response
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&r); err != nil {
		return "", fmt.Errorf("geocode 响应解析失败：%w", err)
	}
	if r.Address == nil {
		return "", ErrNoLocation
	}
	loc := FormatAddress(*r.Address)
	if loc == "" {
		return "", ErrNoLocation
	}
	return loc, nil
}

// FormatAddress 按 city/town/village/hamlet/suburb 取城市；美国与加拿大取州/省（缩写），其它国家取国家名。
func FormatAddress(a Address) string {
	city := firstNonEmpty(a.City, a.Town, a.Village, a.Hamlet, a.Suburb)

	cc := strings.ToLower(a.CountryCode)
	region := a.Country
	if cc == "us" || cc == "ca" {
		region = a.State
	}

	city = cleanForFilename(city)
	region = cleanForFilename(region)
	switch cc {
	case "us":
		if ab, ok := usStates[strings.ToLower(region)]; ok {
			region = ab
		}
	case "ca":
		if ab, ok := caProvinces[strings.ToLower(region)]; ok {
			region = ab
		}
	}

	switch {
	case city != "" && region != "":
		return city + "_" + region
	case city != "":
		return city
	default:
		return region
	}
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// cleanForFilename 只保留字母数字（"New York" -> "NewYork"）。
func cleanForFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
