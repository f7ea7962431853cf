package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Debug           bool
		TestMode        bool
		Env             string
		Build           string
		AppName         string
		SecretKey       string
		FrontendBaseURL string
		CatalogFile     string
		ExportPassword  string
		RollbarToken    string
		SendgridApiKey  string

		Server ServerConfig
		Store  StoreConfig
		Mail   MailConfig
	}

	ServerConfig struct {
		Host               string
		DebugHost          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	StoreConfig struct {
		Backend  string // csv | sheets | postgres | sqlite | memory
		Timeout  time.Duration
		CSVPath  string
		Sheets   SheetsConfig
		Database DatabaseConfig
	}

	SheetsConfig struct {
		SpreadsheetID string
		SheetName     string
		Credentials   string // file path or inline JSON
	}

	DatabaseConfig struct {
		Engine     string
		Host       string
		Port       int
		Name       string
		User       string
		Password   string
		DisableTLS bool
		Path       string // sqlite only
	}

	MailConfig struct {
		DefaultFromEmail    string
		SendAcknowledgement bool
	}
)

// Store backends
const (
	BackendCSV      = "csv"
	BackendSheets   = "sheets"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

func (dbc DatabaseConfig) Address() string {
	return net.JoinHostPort(dbc.Host, strconv.Itoa(dbc.Port))
}

func (mc MailConfig) FromAddress() mail.Address {
	addr, err := mail.ParseAddress(mc.DefaultFromEmail)
	if err != nil {
		return mail.Address{Address: mc.DefaultFromEmail}
	}
	return *addr
}

// NewConfig loads the configuration of the current environment.
// ENV selects the environment (DEV, TEST, QA, PROD) and is also used as the prefix of env vars,
// e.g. PROD_STORE_BACKEND=sheets.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("build", "develop")
	v.SetDefault("appName", "FDP Feedback")
	v.SetDefault("secretKey", "k2&z8pq$w1!vd-@7n(5ycm+4x0#e3u9h^gb)6rj*af")
	v.SetDefault("frontendBaseURL", "http://localhost:8000")
	v.SetDefault("catalogFile", "")
	v.SetDefault("exportPassword", "changeme")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")

	v.SetDefault("server.host", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 15*time.Minute)

	v.SetDefault("store.backend", BackendCSV)
	v.SetDefault("store.timeout", 10*time.Second)
	v.SetDefault("store.csvPath", filepath.Join("data", "feedback.csv"))
	v.SetDefault("store.sheets.spreadsheetID", "")
	v.SetDefault("store.sheets.sheetName", "Sheet1")
	v.SetDefault("store.sheets.credentials", "")
	v.SetDefault("store.database.engine", "postgres")
	v.SetDefault("store.database.host", "localhost")
	v.SetDefault("store.database.port", 5432)
	v.SetDefault("store.database.name", "fdpfeedback")
	v.SetDefault("store.database.user", "")
	v.SetDefault("store.database.password", "")
	v.SetDefault("store.database.disableTLS", false)
	v.SetDefault("store.database.path", filepath.Join("data", "feedback.db"))

	v.SetDefault("mail.defaultFromEmail", "FDP Feedback <noreply@localhost>")
	v.SetDefault("mail.sendAcknowledgement", true)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
		v.SetDefault("store.backend", BackendMemory)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Config{
		Debug:           v.GetBool("debug"),
		TestMode:        v.GetBool("testMode"),
		Env:             env,
		Build:           v.GetString("build"),
		AppName:         v.GetString("appName"),
		SecretKey:       v.GetString("secretKey"),
		FrontendBaseURL: v.GetString("frontendBaseURL"),
		CatalogFile:     v.GetString("catalogFile"),
		ExportPassword:  v.GetString("exportPassword"),
		RollbarToken:    v.GetString("rollbarToken"),
		SendgridApiKey:  v.GetString("sendgridApiKey"),
		Server: ServerConfig{
			Host:               v.GetString("server.host"),
			DebugHost:          v.GetString("server.debugHost"),
			ShutdownTimeout:    v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta: v.GetDuration("server.jwtExpirationDelta"),
		},
		Store: StoreConfig{
			Backend: strings.ToLower(v.GetString("store.backend")),
			Timeout: v.GetDuration("store.timeout"),
			CSVPath: v.GetString("store.csvPath"),
			Sheets: SheetsConfig{
				SpreadsheetID: v.GetString("store.sheets.spreadsheetID"),
				SheetName:     v.GetString("store.sheets.sheetName"),
				Credentials:   v.GetString("store.sheets.credentials"),
			},
			Database: DatabaseConfig{
				Engine:     v.GetString("store.database.engine"),
				Host:       v.GetString("store.database.host"),
				Port:       v.GetInt("store.database.port"),
				Name:       v.GetString("store.database.name"),
				User:       v.GetString("store.database.user"),
				Password:   v.GetString("store.database.password"),
				DisableTLS: v.GetBool("store.database.disableTLS"),
				Path:       v.GetString("store.database.path"),
			},
		},
		Mail: MailConfig{
			DefaultFromEmail:    v.GetString("mail.defaultFromEmail"),
			SendAcknowledgement: v.GetBool("mail.sendAcknowledgement"),
		},
	}
}

// NewTestConfig returns a Config suitable for tests; it never reads the environment.
func NewTestConfig() *Config {
	return &Config{
		TestMode:       true,
		Env:            "TEST",
		Build:          "test",
		AppName:        "FDP Feedback",
		SecretKey:      "secret",
		ExportPassword: "letmein",
		Server: ServerConfig{
			ShutdownTimeout:    time.Second,
			JWTExpirationDelta: 10 * time.Minute,
		},
		Store: StoreConfig{Backend: BackendMemory, Timeout: time.Second},
		Mail: MailConfig{
			DefaultFromEmail:    "FDP Feedback <noreply@localhost>",
			SendAcknowledgement: true,
		},
	}
}
