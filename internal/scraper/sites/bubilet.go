package sites

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/deniskrds/tixplore-app/internal/config"
	"github.com/deniskrds/tixplore-app/internal/models/domain"
	"github.com/deniskrds/tixplore-app/internal/utils/logger/sl"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/errgroup"
)

const (
	BubiletName       = "bubilet"
	bubiletSourceName = "bubilet.com"
	// bubiletImagePlacement — файл с этим местом показа используется как картинка события.
	bubiletImagePlacement = "dikeyResim"
	bubiletRegionHeader   = "ilid"
)

type BubiletEvent struct {
	ID   FlexibleString `json:"etkinlikId"`
	Slug string         `json:"slug"`
	Name string         `json:"etkinlikAdi"`
}

type BubiletPlace struct {
	Title string `json:"baslik"`
}

type BubiletFile struct {
	URL       string `json:"url"`
	Placement string `json:"gosterimYeri"`
}

type BubiletDetails struct {
	Files    []BubiletFile  `json:"dosyalar"`
	Summary  string         `json:"ozet"`
	Duration FlexibleString `json:"sure"`
}

type BubiletSession struct {
	Date          string        `json:"tarih"`
	DiscountPrice FlexibleFloat `json:"indirimliFiyat"`
}

type BubiletPriceGroup struct {
	Sessions []BubiletSession `json:"sessions"`
}

type BubiletGenre struct {
	Name string `json:"adi"`
}

// BubiletRecord — всё, что удалось собрать по одному событию bubilet.
type BubiletRecord struct {
	Event   BubiletEvent
	Places  []BubiletPlace
	Details BubiletDetails
	Prices  []BubiletPriceGroup
	Genres  []BubiletGenre

	CDNURL   string
	WebURL   string
	CitySlug string
}

func (BubiletRecord) record() {}

func (BubiletRecord) Vendor() string { return BubiletName }

func (r BubiletRecord) Normalize() (domain.Event, []domain.TicketSource) {
	event := domain.Event{
		Name:        r.Event.Name,
		Genre:       make([]string, 0, len(r.Genres)),
		Description: htmlToText(r.Details.Summary),
		Cast:        []string{},
		Duration:    r.Details.Duration.String(),
	}

	for _, g := range r.Genres {
		event.Genre = append(event.Genre, g.Name)
	}
	if len(r.Genres) > 0 {
		event.Type = r.Genres[0].Name
	}

	if len(r.Places) > 0 {
		event.Location = r.Places[0].Title
	}

	var price float64
	if session, ok := r.firstSession(); ok {
		event.Time, _, _ = strings.Cut(session.Date, "T")
		price = float64(session.DiscountPrice)
	}

	for _, f := range r.Details.Files {
		if f.Placement == bubiletImagePlacement {
			event.ImageURL = strings.TrimRight(r.CDNURL, "/") + f.URL
			break
		}
	}

	source := domain.TicketSource{
		Name:  bubiletSourceName,
		Price: price,
		URL:   fmt.Sprintf("%s/%s/etkinlik/%s", strings.TrimRight(r.WebURL, "/"), r.CitySlug, r.Event.Slug),
	}

	return event, []domain.TicketSource{source}
}

func (r BubiletRecord) firstSession() (BubiletSession, bool) {
	if len(r.Prices) == 0 || len(r.Prices[0].Sessions) == 0 {
		return BubiletSession{}, false
	}
	return r.Prices[0].Sessions[0], true
}

// Bubilet — клиент JSON API bubilet.
type Bubilet struct {
	logger      *slog.Logger
	cfg         config.BubiletConfig
	concurrency int
	client      *resty.Client
}

func NewBubilet(logger *slog.Logger, cfg config.ScraperConfig) *Bubilet {
	return &Bubilet{
		logger:      logger,
		cfg:         cfg.Bubilet,
		concurrency: concurrencyLimit(cfg.Concurrency),
		client:      newRestyClient(cfg.HTTP, cfg.Bubilet.BaseURL),
	}
}

func (b *Bubilet) Name() string { return BubiletName }

func (b *Bubilet) Policy() domain.UpsertPolicy { return domain.PolicyAppendSources }

func (b *Bubilet) request(ctx context.Context, region string) *resty.Request {
	req := b.client.R().SetContext(ctx)
	if region != "" {
		req.SetHeader(bubiletRegionHeader, region)
	}
	return req
}

// ListEvents — последние события региона.
func (b *Bubilet) ListEvents(ctx context.Context, region string) ([]BubiletEvent, error) {
	var events []BubiletEvent
	if err := getJSON(b.request(ctx, region), "/Anasayfa/6/Etkinlikler", &events); err != nil {
		return nil, err
	}
	return events, nil
}

// ListCities — города и количество событий в них. Формат ответа не фиксирован, поэтому сырые объекты.
func (b *Bubilet) ListCities(ctx context.Context) ([]map[string]any, error) {
	var cities []map[string]any
	if err := getJSON(b.request(ctx, ""), "/etkinlik/EtkinlikSehirleri", &cities); err != nil {
		return nil, err
	}
	return cities, nil
}

func (b *Bubilet) Places(ctx context.Context, eventID, region string) ([]BubiletPlace, error) {
	var places []BubiletPlace
	req := b.request(ctx, region).SetPathParam("id", eventID)
	if err := getJSON(req, "/Etkinlik/{id}/Mekanlar", &places); err != nil {
		return nil, err
	}
	return places, nil
}

func (b *Bubilet) Details(ctx context.Context, slug string) (BubiletDetails, error) {
	var details BubiletDetails
	req := b.request(ctx, "").SetPathParam("slug", slug)
	if err := getJSON(req, "/Etkinlik/Slug/{slug}", &details); err != nil {
		return BubiletDetails{}, err
	}
	return details, nil
}

// Prices — сеансы с ценами. Ответ закодирован, см. DecodePayload.
func (b *Bubilet) Prices(ctx context.Context, eventID, region string) ([]BubiletPriceGroup, error) {
	var payload EncodedPayload
	req := b.request(ctx, region).SetPathParam("id", eventID)
	if err := getJSON(req, "/Etkinlik/{id}/sessions/all", &payload); err != nil {
		return nil, err
	}

	var decoded struct {
		Data []BubiletPriceGroup `json:"data"`
	}
	if err := DecodePayloadInto(payload, &decoded); err != nil {
		return nil, fmt.Errorf("decode prices of %s: %w", eventID, err)
	}

	return decoded.Data, nil
}

func (b *Bubilet) Genres(ctx context.Context, eventID, region string) ([]BubiletGenre, error) {
	var genres []BubiletGenre
	req := b.request(ctx, region).SetPathParam("id", eventID)
	if err := getJSON(req, "/Etkinlik/{id}/Etiket", &genres); err != nil {
		return nil, err
	}
	return genres, nil
}

func (b *Bubilet) fetchRecord(ctx context.Context, ev BubiletEvent) (BubiletRecord, error) {
	id, region := ev.ID.String(), b.cfg.RegionID
	rec := BubiletRecord{
		Event:    ev,
		CDNURL:   b.cfg.CDNURL,
		WebURL:   b.cfg.WebURL,
		CitySlug: b.cfg.CitySlug,
	}

	var err error
	if rec.Places, err = b.Places(ctx, id, region); err != nil {
		return BubiletRecord{}, fmt.Errorf("places: %w", err)
	}
	if rec.Details, err = b.Details(ctx, ev.Slug); err != nil {
		return BubiletRecord{}, fmt.Errorf("details: %w", err)
	}
	if rec.Prices, err = b.Prices(ctx, id, region); err != nil {
		return BubiletRecord{}, fmt.Errorf("prices: %w", err)
	}
	if rec.Genres, err = b.Genres(ctx, id, region); err != nil {
		return BubiletRecord{}, fmt.Errorf("genres: %w", err)
	}

	return rec, nil
}

// Scrape собирает последние события региона. Ошибка по одному событию его пропускает,
// ошибка списка событий прерывает весь прогон.
func (b *Bubilet) Scrape(ctx context.Context, handle HandleFunc) (Stats, error) {
	op := "Bubilet.Scrape()"
	log := b.logger.With(
		slog.String("op", op),
		slog.String("region", b.cfg.RegionID),
	)

	events, err := b.ListEvents(ctx, b.cfg.RegionID)
	if err != nil {
		return Stats{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("events listed", slog.Int("count", len(events)))

	var stats statsCounter
	g := new(errgroup.Group)
	g.SetLimit(b.concurrency)

	for _, ev := range events {
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			stats.seen.Add(1)

			rec, err := b.fetchRecord(ctx, ev)
			if err != nil {
				stats.failed.Add(1)
				log.Error("failed to fetch event",
					slog.String("slug", ev.Slug),
					sl.Err(err),
				)
				return nil
			}

			handle(ctx, rec)
			return nil
		})
	}

	_ = g.Wait()

	return stats.snapshot(), ctx.Err()
}
