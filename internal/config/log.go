package config

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	logFormatters = map[string]log.Formatter{
		"text":   log.TextFormatter,
		"json":   log.JSONFormatter,
		"logfmt": log.LogfmtFormatter,
	}

	levelColors = map[log.Level]lipgloss.Color{
		log.DebugLevel: lipgloss.Color("86"),
		log.InfoLevel:  lipgloss.Color("82"),
		log.WarnLevel:  lipgloss.Color("226"),
		log.ErrorLevel: lipgloss.Color("196"),
		log.FatalLevel: lipgloss.Color("208"),
	}
)

// Log represents the logging configuration
type Log struct {
	// Level is one of "debug", "info", "warn", "error", "fatal", defaults to "info", overridden by --log-level
	Level string `koanf:"level"`
	// Format is one of "text", "json" or "logfmt", defaults to text
	Format string `koanf:"format"`
	// DisableTimestamps turns off timestamps in log output, overridden by --log-disable-timestamps
	DisableTimestamps bool `koanf:"disable_timestamps"`
	// Parsed
	ParsedLevel     log.Level     `koanf:"-"`
	ParsedFormatter log.Formatter `koanf:"-"`
}

func (l *Log) Validate() (err error) {
	l.ParsedLevel, err = log.ParseLevel(l.Level)
	if err != nil {
		return fmt.Errorf("log.level must be one of debug, info, warn, error, fatal - got: %s", l.Level)
	}

	var ok bool
	l.ParsedFormatter, ok = logFormatters[l.Format]
	if !ok {
		return fmt.Errorf("log.format must be one of text, json, logfmt - got: %s", l.Format)
	}

	return nil
}

// SetLoggerDefaults applies time format, UTC and styles to the global logger.
// Called from cmd init() so errors raised before the config is read are styled too.
func SetLoggerDefaults() {
	log.SetTimeFunction(log.NowUTC)
	log.SetTimeFormat("2006-01-02T15:04:05.000Z07:00")

	styles := log.DefaultStyles()
	styles.Timestamp = lipgloss.NewStyle().Faint(true)
	styles.Prefix = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245"))
	styles.Message = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	styles.Value = lipgloss.NewStyle().Foreground(lipgloss.Color("105"))
	for level, color := range levelColors {
		styles.Levels[level] = styles.Levels[level].Foreground(color)
	}

	log.SetStyles(styles)
}

// ConfigureWithLevelString applies the log config to the global logger. A
// non-empty logLevel overrides the configured level, and
// disableTimestampsOverride turns timestamps off regardless of config.
func (l *Log) ConfigureWithLevelString(logLevel string, disableTimestampsOverride bool) {
	if logLevel != "" && logLevel != l.Level {
		parsedLevel, err := log.ParseLevel(logLevel)
		if err != nil {
			log.Error("invalid level, using "+l.Level, "invalid_level", logLevel, "error", err)
		} else {
			l.Level = logLevel
			l.ParsedLevel = parsedLevel
		}
	}

	log.SetLevel(l.ParsedLevel)
	log.SetFormatter(l.ParsedFormatter)
	log.SetReportTimestamp(!(l.DisableTimestamps || disableTimestampsOverride))

	SetLoggerDefaults()
}
