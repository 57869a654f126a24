// Package logging writes levelled log messages to stderr or a rotating file.
package logging

import (
	"fmt"
	"log"
	"os"

	"github.com/natefinch/lumberjack"
)

type ModeFlag uint

const (
	DebugMode ModeFlag = iota
	InfoMode
	WarningMode
	ErrorMode
	SilentMode
)

var (
	mode ModeFlag = InfoMode
	file *lumberjack.Logger
)

// Config selects where log messages go.
type Config struct {
	Logfile string `toml:"logfile" env:"LOGFILE"`
	MaxSize int    `toml:"max_log_size" env:"MAX_LOG_SIZE"`
	MaxAge  int    `toml:"max_log_age" env:"MAX_LOG_AGE"`
	Verbose bool   `toml:"verbose" env:"VERBOSE"`
}

// SetLogger sends log output to a rotating log file, or leaves it on stderr
// when no file is configured.
func (c *Config) SetLogger() {
	if c == nil {
		return
	}
	if c.Verbose {
		SetLogMode(DebugMode)
	}
	if c.Logfile == "" {
		log.SetOutput(os.Stderr)
		return
	}
	fmt.Fprintf(os.Stderr, "Sending log messages to: %s\n", c.Logfile)
	file = &lumberjack.Logger{
		Filename: c.Logfile,
		MaxSize:  c.MaxSize, // megabytes
		MaxAge:   c.MaxAge,  // days
	}
	log.SetOutput(file)
}

// SetLogMode sets the severity required for a message to be printed.
func SetLogMode(newMode ModeFlag) {
	mode = newMode
}

func Debugf(format string, args ...interface{}) {
	if mode <= DebugMode {
		log.Printf(" DEBUG "+format, args...)
	}
}

func Infof(format string, args ...interface{}) {
	if mode <= InfoMode {
		log.Printf(" INFO "+format, args...)
	}
}

func Warningf(format string, args ...interface{}) {
	if mode <= WarningMode {
		log.Printf(" WARNING "+format, args...)
	}
}

func Errorf(format string, args ...interface{}) {
	if mode <= ErrorMode {
		log.Printf(" ERROR "+format, args...)
	}
}

// Shutdown closes the log file if one is open.
func Shutdown() {
	if file != nil {
		log.SetOutput(os.Stderr)
		file.Close()
		file = nil
	}
}
