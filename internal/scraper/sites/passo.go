package sites

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/deniskrds/tixplore-app/internal/config"
	"github.com/deniskrds/tixplore-app/internal/models/domain"
	"github.com/deniskrds/tixplore-app/internal/utils/logger/sl"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/errgroup"
)

const PassoName = "passo"

// без заголовков браузера API passo отвечает ошибкой
var passoHeaders = map[string]string{
	"Accept":             "application/json, text/plain, */*",
	"Accept-Language":    "en-GB,en-US;q=0.9,en;q=0.8",
	"Connection":         "keep-alive",
	"Content-Type":       "text/plain",
	"CurrentCulture":     "tr-TR",
	"Origin":             "https://www.passo.com.tr",
	"Referer":            "https://www.passo.com.tr/",
	"User-Agent":         "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"sec-ch-ua":          `"Google Chrome";v="131", "Chromium";v="131", "Not_A Brand";v="24"`,
	"sec-ch-ua-mobile":   "?0",
	"sec-ch-ua-platform": `"macOS"`,
}

type PassoVenueEvent struct {
	ID     FlexibleString `json:"id"`
	SeoURL string         `json:"seoUrl"`
	Name   string         `json:"name"`
}

type PassoVenueDetails struct {
	IsError bool `json:"isError"`
	Value   struct {
		VenueEvents []PassoVenueEvent `json:"venueEvents"`
	} `json:"value"`
}

type PassoCategory struct {
	Name  string        `json:"name"`
	Price FlexibleFloat `json:"price"`
}

type PassoEvent struct {
	Name         string          `json:"name"`
	GenreName    string          `json:"genreName"`
	SubGenreName string          `json:"subGenreName"`
	VenueName    string          `json:"venueName"`
	Date         FlexibleString  `json:"date"`
	EndDate      FlexibleString  `json:"endDate"`
	ImageName    string          `json:"detailPageImageName"`
	Description  string          `json:"detailPageDescription"`
	SeoURL       string          `json:"seoUrl"`
	Categories   []PassoCategory `json:"categories"`
}

type PassoEventDetails struct {
	IsError bool       `json:"isError"`
	Value   PassoEvent `json:"value"`
}

// PassoRecord — детали одного события площадки passo.
type PassoRecord struct {
	Event  PassoEvent
	WebURL string
}

func (PassoRecord) record() {}

func (PassoRecord) Vendor() string { return PassoName }

func (r PassoRecord) Normalize() (domain.Event, []domain.TicketSource) {
	v := r.Event

	event := domain.Event{
		Name:        v.Name,
		Type:        v.GenreName,
		Location:    v.VenueName,
		Time:        v.Date.String(),
		ImageURL:    v.ImageName,
		Description: paragraphsToText(v.Description),
		Cast:        []string{},
	}
	if v.SubGenreName != "" {
		event.Genre = []string{v.SubGenreName}
	}
	if v.EndDate != "" {
		event.Duration = fmt.Sprintf("%s - %s", v.EndDate, v.Date)
	}

	url := fmt.Sprintf("%s/tr/%s", strings.TrimRight(r.WebURL, "/"), v.SeoURL)
	sources := make([]domain.TicketSource, 0, len(v.Categories))
	for _, c := range v.Categories {
		sources = append(sources, domain.TicketSource{
			Name:  c.Name,
			Price: float64(c.Price),
			URL:   url,
		})
	}

	return event, sources
}

// Passo — клиент API passo, события собираются по площадкам из конфига.
type Passo struct {
	logger      *slog.Logger
	cfg         config.PassoConfig
	concurrency int
	client      *resty.Client
}

func NewPasso(logger *slog.Logger, cfg config.ScraperConfig) *Passo {
	return &Passo{
		logger:      logger,
		cfg:         cfg.Passo,
		concurrency: concurrencyLimit(cfg.Concurrency),
		client:      newRestyClient(cfg.HTTP, cfg.Passo.BaseURL).SetHeaders(passoHeaders),
	}
}

func (p *Passo) Name() string { return PassoName }

func (p *Passo) Policy() domain.UpsertPolicy { return domain.PolicyGetOrCreate }

func (p *Passo) VenueDetails(ctx context.Context, seoURL, venueID string) (PassoVenueDetails, error) {
	var details PassoVenueDetails
	req := p.client.R().SetContext(ctx).SetPathParams(map[string]string{
		"seo":     seoURL,
		"id":      venueID,
		"culture": p.cfg.CultureID,
	})
	if err := getJSON(req, "/getvenuedetails/{seo}/{id}/{culture}", &details); err != nil {
		return PassoVenueDetails{}, err
	}
	return details, nil
}

func (p *Passo) EventDetails(ctx context.Context, seoURL, eventID string) (PassoEventDetails, error) {
	var details PassoEventDetails
	req := p.client.R().SetContext(ctx).SetPathParams(map[string]string{
		"seo":     seoURL,
		"id":      eventID,
		"culture": p.cfg.CultureID,
	})
	if err := getJSON(req, "/geteventdetails/{seo}/{id}/{culture}", &details); err != nil {
		return PassoEventDetails{}, err
	}
	return details, nil
}

// Scrape обходит площадки по очереди, события внутри площадки скачиваются параллельно.
// Площадка с ошибкой пропускается целиком.
func (p *Passo) Scrape(ctx context.Context, handle HandleFunc) (Stats, error) {
	op := "Passo.Scrape()"
	log := p.logger.With(slog.String("op", op))

	var stats statsCounter

	for _, venue := range p.cfg.Venues {
		if ctx.Err() != nil {
			break
		}

		venueLog := log.With(slog.String("venue", venue.Name))

		details, err := p.VenueDetails(ctx, venue.SeoURL, strconv.FormatInt(venue.ID, 10))
		if err != nil {
			stats.failed.Add(1)
			venueLog.Error("failed to fetch venue", sl.Err(err))
			continue
		}
		if details.IsError {
			stats.failed.Add(1)
			venueLog.Error("venue details returned an error")
			continue
		}

		venueLog.Info("venue events listed", slog.Int("count", len(details.Value.VenueEvents)))

		g := new(errgroup.Group)
		g.SetLimit(p.concurrency)

		for _, ev := range details.Value.VenueEvents {
			if ctx.Err() != nil {
				break
			}

			g.Go(func() error {
				stats.seen.Add(1)

				eventLog := venueLog.With(slog.String("eventId", ev.ID.String()))

				event, err := p.EventDetails(ctx, ev.SeoURL, ev.ID.String())
				if err != nil {
					stats.failed.Add(1)
					eventLog.Error("failed to fetch event", sl.Err(err))
					return nil
				}
				if event.IsError {
					stats.failed.Add(1)
					eventLog.Error("event details returned an error")
					return nil
				}

				handle(ctx, PassoRecord{Event: event.Value, WebURL: p.cfg.WebURL})
				return nil
			})
		}

		_ = g.Wait()
	}

	return stats.snapshot(), ctx.Err()
}
