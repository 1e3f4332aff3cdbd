package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/workshopdir/curator/internal/backup"
	"github.com/workshopdir/curator/pkg/constants"
	"github.com/workshopdir/curator/pkg/directory"
	"github.com/workshopdir/curator/pkg/errors"
)

// Backup drivers.
const (
	BackupDriverFS   = "fs"
	BackupDriverS3   = "s3"
	BackupDriverNone = "none"
)

// Config holds the application configuration loaded from config files,
// environment variables and .env files. Flags are applied afterwards by
// UpdateFromFlags.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string
	DryRun  bool

	// Config file actually read, if any
	ConfigFile string

	// Data files
	DataDir       string
	OverridesFile string
	BranchesFile  string
	MetricsFile   string
	DashboardURL  string
	Workshops     directory.Workshops

	Research ResearchConfig
	Backup   BackupConfig

	// Logging configuration. LogLevel comes from LOG_LEVEL or the config
	// file; LogLevelFlag from --log-level, which outranks -v and -q.
	LogLevel     string
	LogLevelFlag string
	LogFormat    string
	LogOutput    string
}

// ResearchConfig controls research batches.
type ResearchConfig struct {
	BatchSize    int
	BatchDelay   time.Duration
	GeminiModel  string
	GeminiAPIKey string
}

// BackupConfig selects where backups go. The local directory is always the
// primary store; the s3 driver adds a bucket mirror.
type BackupConfig struct {
	Driver string
	Dir    string
	S3     backup.S3Config
}

// LoadConfig loads configuration in order of precedence:
//  1. Environment variables
//  2. .env and .env.local files
//  3. Config file (configFile, or .curator.yaml in $HOME or the working directory)
//  4. Defaults
func LoadConfig(configFile string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", "cannot read "+configFile, err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(constants.ConfigName)
		// A missing default config file is fine.
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.NewConfigError("config", "cannot parse config file", err)
			}
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),
		DryRun:  v.GetBool("dry_run"),

		ConfigFile: v.ConfigFileUsed(),

		DataDir:       v.GetString("data_dir"),
		OverridesFile: v.GetString("overrides_file"),
		BranchesFile:  v.GetString("branches_file"),
		MetricsFile:   v.GetString("metrics_file"),
		DashboardURL:  v.GetString("dashboard_url"),

		Research: ResearchConfig{
			BatchSize:    v.GetInt("research.batch_size"),
			BatchDelay:   v.GetDuration("research.batch_delay"),
			GeminiModel:  v.GetString("research.gemini_model"),
			GeminiAPIKey: v.GetString("gemini_api_key"),
		},
		Backup: BackupConfig{
			Driver: strings.ToLower(v.GetString("backup.driver")),
			Dir:    v.GetString("backup.dir"),
		},

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),
	}

	if err := v.UnmarshalKey("workshops", &config.Workshops); err != nil {
		return nil, errors.NewConfigError("workshops", "invalid workshop list", err)
	}
	if err := config.Workshops.Validate(); err != nil {
		return nil, errors.NewConfigError("workshops", err.Error(), err)
	}
	if err := v.UnmarshalKey("backup.s3", &config.Backup.S3); err != nil {
		return nil, errors.NewConfigError("backup.s3", "invalid s3 settings", err)
	}
	switch config.Backup.Driver {
	case BackupDriverFS, BackupDriverS3, BackupDriverNone:
	default:
		return nil, errors.NewConfigError("backup.driver", "must be one of fs, s3, none", nil)
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", constants.DefaultDataDir)
	v.SetDefault("dashboard_url", "http://localhost:8080/")
	v.SetDefault("research.batch_size", constants.DefaultBatchSize)
	v.SetDefault("research.batch_delay", constants.DefaultBatchDelay)
	v.SetDefault("research.gemini_model", constants.DefaultGeminiModel)
	v.SetDefault("backup.driver", BackupDriverFS)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")

	// AutomaticEnv only answers keys viper already knows about.
	for _, key := range []string{"gemini_api_key", "verbose", "quiet", "no_color", "format", "dry_run",
		"overrides_file", "branches_file", "metrics_file", "backup.dir", "log_level"} {
		_ = v.BindEnv(key)
	}
}

// UpdateFromFlags applies parsed command flags on top of the loaded values.
// Only flags the user actually set override config; dataDir and logLevel
// are ignored when empty.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor, dryRun bool, format, dataDir, logLevel string) {
	c.Verbose = c.Verbose || verbose
	c.Quiet = c.Quiet || quiet
	c.NoColor = c.NoColor || noColor
	c.DryRun = c.DryRun || dryRun
	if format != "" {
		c.Format = format
	}
	if dataDir != "" {
		c.DataDir = dataDir
	}
	if logLevel != "" {
		c.LogLevelFlag = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env; real environment variables win over both.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}
