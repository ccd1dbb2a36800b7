// Package config assembles the service configuration from defaults, an optional
// JSON file, environment variables (and a .env file) and command line flags,
// in increasing order of priority.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/thoas/go-funk"
)

// Config holds every setting of the loan service.
type Config struct {
	RunAddr             string        `env:"SERVER_ADDRESS" validate:"hostname_port"`
	GRPCAddr            string        `env:"GRPC_SERVER_ADDRESS" validate:"omitempty,hostname_port"`
	LogLevel            string        `env:"LOG_LEVEL" validate:"loglevel"`
	LogFormat           string        `env:"LOG_FORMAT" validate:"oneof=console json"`
	DBFileName          string        `env:"FILE_STORAGE_PATH" validate:"filepath"`
	DatabaseDSN         string        `env:"DATABASE_DSN"`
	DBConnectionTimeout time.Duration `env:"DB_CONNECTION_TIMEOUT" validate:"gt=0"`
	MigrationsDir       string        `env:"MIGRATIONS_DIR"`
	TrustedSubnet       string        `env:"TRUSTED_SUBNET" validate:"omitempty,cidr"`
	Timezone            string        `env:"TIMEZONE" validate:"timezone"`
	RateLimitRPS        float64       `env:"RATE_LIMIT_RPS" validate:"gte=0"`
	RateLimitBurst      int           `env:"RATE_LIMIT_BURST" validate:"gte=0"`
	OTLPEndpoint        string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ConfigFile          string        `env:"CONFIG"`
}

type jsonConfig struct {
	RunAddr             string  `json:"server_address"`
	GRPCAddr            string  `json:"grpc_server_address"`
	LogLevel            string  `json:"log_level"`
	LogFormat           string  `json:"log_format"`
	DBFileName          string  `json:"file_storage_path"`
	DatabaseDSN         string  `json:"database_dsn"`
	DBConnectionTimeout string  `json:"db_connection_timeout"`
	MigrationsDir       string  `json:"migrations_dir"`
	TrustedSubnet       string  `json:"trusted_subnet"`
	Timezone            string  `json:"timezone"`
	RateLimitRPS        float64 `json:"rate_limit_rps"`
	RateLimitBurst      int     `json:"rate_limit_burst"`
	OTLPEndpoint        string  `json:"otel_exporter_otlp_endpoint"`
}

var defaultConfig = Config{
	RunAddr:             ":8080",
	LogLevel:            "info",
	LogFormat:           "console",
	DBConnectionTimeout: 10 * time.Second,
	MigrationsDir:       "cmd/libloans/migrations",
	Timezone:            "Local",
	RateLimitBurst:      50,
}

var allowedLogLevels = []string{"debug", "info", "warn", "error", "fatal"}

type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
}

// WithDisableFlagsParsing makes New ignore the command line.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// New builds and validates the configuration.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	var fromFlags Config
	var setFlags map[string]bool
	if !options.disableFlagsParsing {
		var err error
		setFlags, err = parseFlags(&fromFlags)
		if err != nil {
			return nil, err
		}
	}

	var fromEnv Config
	if err := env.Parse(&fromEnv); err != nil {
		return nil, fmt.Errorf("in internal/config/config.go/New(): error while `env.Parse()` calling: %w", err)
	}

	values := &Config{}
	applyDefaults(values, defaultConfig)

	configFile := fromEnv.ConfigFile
	if setFlags["c"] {
		configFile = fromFlags.ConfigFile
	}
	if configFile != "" {
		if err := values.applyJSONFile(configFile); err != nil {
			return nil, err
		}
		values.ConfigFile = configFile
	}

	applyDefaults(&fromEnv, *values)
	values = &fromEnv

	values.applyFlags(&fromFlags, setFlags)

	if err := values.validate(); err != nil {
		return nil, err
	}

	return values, nil
}

// Location returns the time zone loans are issued in.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// applyDefaults fills every zero field of values from defaults.
func applyDefaults(values *Config, defaults Config) {
	if values.RunAddr == "" {
		values.RunAddr = defaults.RunAddr
	}
	if values.GRPCAddr == "" {
		values.GRPCAddr = defaults.GRPCAddr
	}
	if values.LogLevel == "" {
		values.LogLevel = defaults.LogLevel
	}
	if values.LogFormat == "" {
		values.LogFormat = defaults.LogFormat
	}
	if values.DBFileName == "" {
		values.DBFileName = defaults.DBFileName
	}
	if values.DatabaseDSN == "" {
		values.DatabaseDSN = defaults.DatabaseDSN
	}
	if values.DBConnectionTimeout == 0 {
		values.DBConnectionTimeout = defaults.DBConnectionTimeout
	}
	if values.MigrationsDir == "" {
		values.MigrationsDir = defaults.MigrationsDir
	}
	if values.TrustedSubnet == "" {
		values.TrustedSubnet = defaults.TrustedSubnet
	}
	if values.Timezone == "" {
		values.Timezone = defaults.Timezone
	}
	if values.RateLimitRPS == 0 {
		values.RateLimitRPS = defaults.RateLimitRPS
	}
	if values.RateLimitBurst == 0 {
		values.RateLimitBurst = defaults.RateLimitBurst
	}
	if values.OTLPEndpoint == "" {
		values.OTLPEndpoint = defaults.OTLPEndpoint
	}
	if values.ConfigFile == "" {
		values.ConfigFile = defaults.ConfigFile
	}
}

func (c *Config) applyJSONFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return fmt.Errorf("in internal/config/config.go/applyJSONFile(): error while `os.ReadFile()` calling: %w", err)
	}

	var fromJSON jsonConfig
	if err := json.Unmarshal(data, &fromJSON); err != nil {
		return fmt.Errorf("in internal/config/config.go/applyJSONFile(): error while `json.Unmarshal()` calling: %w", err)
	}

	var timeout time.Duration
	if fromJSON.DBConnectionTimeout != "" {
		timeout, err = time.ParseDuration(fromJSON.DBConnectionTimeout)
		if err != nil {
			return fmt.Errorf("in internal/config/config.go/applyJSONFile(): error while `time.ParseDuration()` calling: %w", err)
		}
	}

	fileValues := Config{
		RunAddr:             fromJSON.RunAddr,
		GRPCAddr:            fromJSON.GRPCAddr,
		LogLevel:            fromJSON.LogLevel,
		LogFormat:           fromJSON.LogFormat,
		DBFileName:          fromJSON.DBFileName,
		DatabaseDSN:         fromJSON.DatabaseDSN,
		DBConnectionTimeout: timeout,
		MigrationsDir:       fromJSON.MigrationsDir,
		TrustedSubnet:       fromJSON.TrustedSubnet,
		Timezone:            fromJSON.Timezone,
		RateLimitRPS:        fromJSON.RateLimitRPS,
		RateLimitBurst:      fromJSON.RateLimitBurst,
		OTLPEndpoint:        fromJSON.OTLPEndpoint,
	}
	applyDefaults(&fileValues, *c)
	*c = fileValues

	return nil
}

func parseFlags(values *Config) (map[string]bool, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flags.StringVar(&values.RunAddr, "a", "", "address and port to run the HTTP server")
	flags.StringVar(&values.GRPCAddr, "g", "", "address and port to run the gRPC server, empty disables it")
	flags.StringVar(&values.LogLevel, "l", "", "logger level")
	flags.StringVar(&values.DBFileName, "f", "", "JSON file name with database")
	flags.StringVar(&values.DatabaseDSN, "d", "", "a string with the database connection details")
	flags.StringVar(&values.MigrationsDir, "m", "", "directory with the database migrations")
	flags.StringVar(&values.TrustedSubnet, "t", "", "CIDR of clients allowed to read internal stats")
	flags.StringVar(&values.Timezone, "z", "", "IANA time zone loans are issued in")
	flags.Float64Var(&values.RateLimitRPS, "r", 0, "allowed requests per second, 0 disables limiting")
	flags.StringVar(&values.ConfigFile, "c", "", "JSON configuration file")
	flags.StringVar(&values.ConfigFile, "config", "", "JSON configuration file (alias of -c)")

	if err := flags.Parse(os.Args[1:]); err != nil {
		return nil, fmt.Errorf("in internal/config/config.go/parseFlags(): error while `flags.Parse()` calling: %w", err)
	}

	set := map[string]bool{}
	flags.Visit(func(f *flag.Flag) {
		name := f.Name
		if name == "config" {
			name = "c"
		}
		set[name] = true
	})

	return set, nil
}

func (c *Config) applyFlags(fromFlags *Config, set map[string]bool) {
	if set["a"] {
		c.RunAddr = fromFlags.RunAddr
	}
	if set["g"] {
		c.GRPCAddr = fromFlags.GRPCAddr
	}
	if set["l"] {
		c.LogLevel = fromFlags.LogLevel
	}
	if set["f"] {
		c.DBFileName = fromFlags.DBFileName
	}
	if set["d"] {
		c.DatabaseDSN = fromFlags.DatabaseDSN
	}
	if set["m"] {
		c.MigrationsDir = fromFlags.MigrationsDir
	}
	if set["t"] {
		c.TrustedSubnet = fromFlags.TrustedSubnet
	}
	if set["z"] {
		c.Timezone = fromFlags.Timezone
	}
	if set["r"] {
		c.RateLimitRPS = fromFlags.RateLimitRPS
	}
}

func validateFilePath(fieldLevel validator.FieldLevel) bool {
	path := fieldLevel.Field().String()
	if path == "" {
		return true
	}
	_, err := os.Stat(path)

	return err == nil || os.IsNotExist(err)
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	return funk.ContainsString(allowedLogLevels, fieldLevel.Field().String())
}

func validateTimezone(fieldLevel validator.FieldLevel) bool {
	_, err := time.LoadLocation(fieldLevel.Field().String())
	return err == nil
}

func (c *Config) validate() error {
	validate := validator.New()

	customValidations := map[string]validator.Func{
		"loglevel": validateLogLevel,
		"filepath": validateFilePath,
		"timezone": validateTimezone,
	}
	for tag, fn := range customValidations {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}

	return validate.Struct(c)
}
