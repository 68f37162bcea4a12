package config

import "time"

type Config struct {
	Env            string           `yaml:"env" env:"ENV" env-default:"local"`
	HttpServer     HttpServerConfig `yaml:"httpServer"`
	DBConfig       DBConfig         `yaml:"db"`
	RedisConfig    RedisConfig      `yaml:"redis"`
	BotConfig      BotConfig        `yaml:"bot"`
	ScraperConfig  ScraperConfig    `yaml:"scraper"`
	CategoriesFile string           `yaml:"categoriesFile" env:"CATEGORIES_FILE" env-default:""`
	Categories     CategoryMap      `yaml:"-"`
	configPath     string
}

// TrustProxyHeaders включает разбор X-Forwarded-For / X-Real-IP. Только за своим прокси,
// иначе клиент сам выбирает адрес, по которому его ограничивают.
type HttpServerConfig struct {
	Address           string          `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost"`
	Port              string          `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	Timeout           time.Duration   `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"10s"`
	IdleTimeout       time.Duration   `yaml:"idleTimeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	RateLimit         RateLimitConfig `yaml:"rateLimit"`
	AllowOrigins      []string        `yaml:"allowOrigins" env-default:"*"`
	TrustProxyHeaders bool            `yaml:"trustProxyHeaders" env:"HTTP_TRUST_PROXY_HEADERS" env-default:"false"`
}

// RateLimitConfig — фиксированное окно: не больше Requests запросов за Window с одного адреса.
type RateLimitConfig struct {
	Enabled  bool          `yaml:"enabled" env:"RATE_LIMIT_ENABLED" env-default:"true"`
	Requests int           `yaml:"requests" env:"RATE_LIMIT_REQUESTS" env-default:"10"`
	Window   time.Duration `yaml:"window" env:"RATE_LIMIT_WINDOW" env-default:"5s"`
	Prefix   string        `yaml:"prefix" env-default:"rl"`
}

type DBConfig struct {
	Host            string        `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port            string        `yaml:"port" env:"DB_PORT" env-default:"5432"`
	Name            string        `yaml:"name" env:"DB_NAME" env-default:"tixplore"`
	User            string        `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password        string        `yaml:"password" env:"DB_PASSWORD" env-default:""`
	SSLMode         string        `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	MaxOpenConns    int           `yaml:"maxOpenConns" env-default:"10"`
	MaxIdleConns    int           `yaml:"maxIdleConns" env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime" env-default:"30m"`
}

// RedisConfig — пустой адрес отключает redis, лимитер работает в памяти процесса.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:""`
	Password string `yaml:"password" env:"REDIS_PASSWORD" env-default:""`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type BotConfig struct {
	TgbotApiToken string `yaml:"tgbot_apitoken" env:"TGBOT_APITOKEN" env-default:""`
	ChatID        int64  `yaml:"chatId" env:"TGBOT_CHAT_ID" env-default:"0"`
}

// HTTPClientConfig описывает поведение исходящих запросов к сайтам продавцов.
type HTTPClientConfig struct {
	Timeout      time.Duration `yaml:"timeout" env:"SCRAPER_HTTP_TIMEOUT" env-default:"15s"`
	RetryCount   int           `yaml:"retryCount" env:"SCRAPER_HTTP_RETRY_COUNT" env-default:"3"`
	RetryWait    time.Duration `yaml:"retryWait" env-default:"500ms"`
	RetryMaxWait time.Duration `yaml:"retryMaxWait" env-default:"5s"`
}

type BubiletConfig struct {
	Enabled  bool   `yaml:"enabled" env-default:"true"`
	BaseURL  string `yaml:"baseUrl" env:"BUBILET_BASE_URL" env-default:"https://apiv2.bubilet.com.tr/api"`
	WebURL   string `yaml:"webUrl" env-default:"https://www.bubilet.com.tr"`
	CDNURL   string `yaml:"cdnUrl" env-default:"https://cdn.bubilet.com.tr"`
	RegionID string `yaml:"regionId" env:"BUBILET_REGION_ID" env-default:"34"`
	CitySlug string `yaml:"citySlug" env:"BUBILET_CITY_SLUG" env-default:"istanbul"`
}

// VenueConfig — площадка passo, события которой нужно собрать.
type VenueConfig struct {
	ID     int64  `yaml:"id"`
	SeoURL string `yaml:"seoUrl"`
	Name   string `yaml:"name"`
}

type PassoConfig struct {
	Enabled   bool          `yaml:"enabled" env-default:"true"`
	BaseURL   string        `yaml:"baseUrl" env:"PASSO_BASE_URL" env-default:"https://ticketingweb.passo.com.tr/api/passoweb"`
	WebURL    string        `yaml:"webUrl" env-default:"https://www.passo.com.tr"`
	CultureID string        `yaml:"cultureId" env-default:"118"`
	Venues    []VenueConfig `yaml:"venues"`
}

type ScraperConfig struct {
	JobBufferSize int              `yaml:"jobBufferSize" env:"SCRAPER_JOB_BUFFER_SIZE" env-default:"10"`
	WorkersCount  int              `yaml:"workersCount" env:"SCRAPER_WORKERS_COUNT" env-default:"2"`
	Timeout       int              `yaml:"timeout" env:"SCRAPER_TIMEOUT" env-default:"600"` //in seconds
	Interval      time.Duration    `yaml:"interval" env:"SCRAPER_INTERVAL" env-default:"0s"`
	Concurrency   int              `yaml:"concurrency" env:"SCRAPER_CONCURRENCY" env-default:"4"`
	HTTP          HTTPClientConfig `yaml:"http"`
	Bubilet       BubiletConfig    `yaml:"bubilet"`
	Passo         PassoConfig      `yaml:"passo"`
}

func (s ScraperConfig) GetTimeout() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

// DefaultVenues — площадки passo, если в конфиге не задано ни одной.
func DefaultVenues() []VenueConfig {
	return []VenueConfig{
		{ID: 306216, SeoURL: "volkswagen-arena-etkinlik-biletleri", Name: "Volkswagen Arena"},
	}
}
