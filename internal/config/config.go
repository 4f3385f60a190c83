package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings"

	"github.com/iliyamo/dorm-finder/internal/geo"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DataSource     string // "mysql", "mongo" or "memory"
	SeedFile       string // JSON array of dorm records for DataSource=memory
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	MongoURI       string // document store connection string (DataSource=mongo)
	MongoDB        string // document store database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	Reference   geo.Point // campus coordinate distances are measured from
	DefaultLang string    // "th" or "en"; picks the display name of a listing
	ZonesFile   string    // optional YAML file overriding the built-in zone table

	PriceMatch   string // "within" or "overlap"
	CoolingMatch string // "loose", "fallback" or "strict"

	AMQPURL           string   // broker URL; empty disables review events
	CORSOrigins       []string // allowed browser origins
	EnrichConcurrency int      // parallel detail fetches for comparison enrichment
	LogLevel          string   // debug, info, warn, error
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message. The MySQL variables
// are always required because users and refresh tokens live there.
func Load() Config {
	cfg := Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DataSource:     strings.ToLower(envStr("DATA_SOURCE", "mysql")),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),

		Reference: geo.Point{
			Lat: envFloat("REF_LAT", 16.2469),
			Lon: envFloat("REF_LON", 103.2522),
		},
		DefaultLang: envStr("DEFAULT_LANG", "th"),
		ZonesFile:   os.Getenv("ZONES_FILE"),

		PriceMatch:   envStr("PRICE_MATCH", "within"),
		CoolingMatch: envStr("COOLING_MATCH", "loose"),

		AMQPURL:           firstEnv("RABBITMQ_URL", "AMQP_URL"),
		CORSOrigins:       splitList(envStr("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		EnrichConcurrency: envInt("ENRICH_CONCURRENCY", 4),
		LogLevel:          envStr("LOG_LEVEL", "info"),
	}
	switch cfg.DataSource {
	case "mongo":
		cfg.MongoURI = must("MONGO_URI")
		cfg.MongoDB = envStr("MONGO_DB", "dorms")
	case "memory":
		cfg.SeedFile = os.Getenv("SEED_FILE")
	default:
		cfg.DataSource = "mysql"
	}
	// Users and refresh tokens always live in MySQL.
	cfg.DBUser = must("DB_USER")
	cfg.DBPass = os.Getenv("DB_PASS")
	cfg.DBHost = must("DB_HOST")
	cfg.DBPort = must("DB_PORT")
	cfg.DBName = must("DB_NAME")
	return cfg
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func envFloat(k string, d float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return d
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
