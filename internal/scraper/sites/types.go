package sites

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/deniskrds/tixplore-app/internal/config"
	"github.com/deniskrds/tixplore-app/internal/models/domain"

	"github.com/go-resty/resty/v2"
)

// Record — сырые данные одного события от конкретного продавца.
// Реализации: BubiletRecord и PassoRecord.
type Record interface {
	Vendor() string
	// Normalize приводит данные продавца к каноническому событию и вариантам покупки.
	Normalize() (domain.Event, []domain.TicketSource)
	record()
}

// HandleFunc получает каждую успешно скачанную запись. Ошибки сохранения обрабатывает сама.
type HandleFunc func(ctx context.Context, rec Record)

// Site — скрапер одного продавца.
type Site interface {
	Name() string
	Policy() domain.UpsertPolicy
	Scrape(ctx context.Context, handle HandleFunc) (Stats, error)
}

// Stats — счётчики скачивания за один прогон.
type Stats struct {
	Seen   int
	Failed int
}

type statsCounter struct {
	seen   atomic.Int64
	failed atomic.Int64
}

func (s *statsCounter) snapshot() Stats {
	return Stats{Seen: int(s.seen.Load()), Failed: int(s.failed.Load())}
}

// FlexibleString — поле, которое продавец присылает то строкой, то числом.
type FlexibleString string

func (f *FlexibleString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexibleString(n.String())
		return nil
	}

	return fmt.Errorf("expected string or number, got %s", string(data))
}

func (f FlexibleString) String() string {
	return string(f)
}

// FlexibleFloat — цена числом или строкой ("1.250,00" не поддерживается, только "1250.00").
type FlexibleFloat float64

func (f *FlexibleFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = 0
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*f = FlexibleFloat(v)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("expected number or string, got %s", string(data))
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse price %q: %w", s, err)
	}
	*f = FlexibleFloat(v)
	return nil
}

// newRestyClient настраивает таймаут и повторы с экспоненциальной задержкой.
func newRestyClient(cfg config.HTTPClientConfig, baseURL string) *resty.Client {
	return resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(cfg.RetryMaxWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})
}

// getJSON выполняет GET и раскладывает тело ответа в out.
// Любой ответ вне 2xx и невалидный JSON считаются ошибкой.
func getJSON(req *resty.Request, path string, out any) error {
	resp, err := req.Get(path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}

	if !resp.IsSuccess() {
		return fmt.Errorf("GET %s: unexpected status %d", resp.Request.URL, resp.StatusCode())
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("GET %s: decode json: %w", resp.Request.URL, err)
	}

	return nil
}

func concurrencyLimit(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
