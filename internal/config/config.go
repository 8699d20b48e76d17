package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	// HTTP Server
	Port           string
	AuthUsername   string
	AuthPassword   string
	MetricsEnabled bool

	// Database
	SQLiteDBPath string

	// AMQP, optional: empty URL disables ledger events
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Ledger
	BillsBudgetPolicy    string
	BillsLookaheadDays   int
	AutoRevertWindowDays int

	// Google Sheets archive export
	GoogleSpreadsheetID    string
	GoogleArchiveSheetName string

	LogLevel string
}

var billsBudgetPolicies = []string{"all_unpaid", "due_within"}

func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8081"),
		AuthUsername:   getEnv("AUTH_USERNAME", ""),
		AuthPassword:   getEnv("AUTH_PASSWORD", ""),
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/tabung.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "tabung"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_events"),

		BillsBudgetPolicy:    getEnv("BILLS_BUDGET_POLICY", "all_unpaid"),
		BillsLookaheadDays:   getEnvInt("BILLS_LOOKAHEAD_DAYS", 7),
		AutoRevertWindowDays: getEnvInt("AUTO_REVERT_WINDOW_DAYS", 0),

		GoogleSpreadsheetID:    getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleArchiveSheetName: getEnv("GOOGLE_ARCHIVE_SHEET_NAME", "Archive"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if (c.AuthUsername == "") != (c.AuthPassword == "") {
		errors = append(errors, "AUTH_USERNAME and AUTH_PASSWORD must be set together")
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	validPolicy := false
	for _, p := range billsBudgetPolicies {
		if c.BillsBudgetPolicy == p {
			validPolicy = true
			break
		}
	}
	if !validPolicy {
		errors = append(errors, fmt.Sprintf("invalid bills budget policy '%s': must be one of %v", c.BillsBudgetPolicy, billsBudgetPolicies))
	}
	if c.BillsLookaheadDays < 0 || c.BillsLookaheadDays > 366 {
		errors = append(errors, fmt.Sprintf("invalid bills lookahead %d: must be between 0 and 366 days", c.BillsLookaheadDays))
	}
	if c.AutoRevertWindowDays < 0 {
		errors = append(errors, fmt.Sprintf("invalid auto-revert window %d: must not be negative", c.AutoRevertWindowDays))
	}

	if c.GoogleSpreadsheetID != "" && strings.TrimSpace(c.GoogleArchiveSheetName) == "" {
		errors = append(errors, "Google archive sheet name is required when GOOGLE_SPREADSHEET_ID is set")
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// AuthEnabled reports whether basic auth protects the API.
func (c *Config) AuthEnabled() bool {
	return c.AuthUsername != "" && c.AuthPassword != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
