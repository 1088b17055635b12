// Package config loads the mighf settings from flags, the environment and
// an optional configuration file.
package config

import (
	"errors"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ezrec/mighf/translate"
)

var f = translate.From

var ErrConfigRead = errors.New(f("configuration unreadable"))

// Configuration keys.
const (
	KEY_STRICT       = "strict"
	KEY_VERBOSE      = "verbose"
	KEY_MAX_STEPS    = "max_steps"
	KEY_LOG_FILE     = "log_file"
	KEY_PROMPT       = "prompt"
	KEY_PLAIN_OUTPUT = "plain_output"
)

// ENV_PREFIX prefixes the environment variable of every key.
const ENV_PREFIX = "MIGHF"

// DEFAULT_PROMPT is the interactive shell prompt.
const DEFAULT_PROMPT = "coreshell> "

// Config holds the settings of one mighf invocation.
type Config struct {
	Strict      bool   // Report skipped instructions as errors.
	Verbose     bool   // Trace every instruction.
	MaxSteps    int    // Step limit of a run, 0 is unlimited.
	LogFile     string // Rotated log file, empty for stderr.
	Prompt      string // Shell prompt.
	PlainOutput bool   // Render drawing as text when stdout is not a terminal.
}

// Flags registers the command line flag of every key on flags.
func Flags(flags *pflag.FlagSet) {
	flags.Bool(KEY_STRICT, false, "report invalid instructions as errors")
	flags.BoolP(KEY_VERBOSE, "v", false, "verbose logging")
	flags.Int("max-steps", 0, "stop a run after this many instructions (0 = unlimited)")
	flags.String("log-file", "", "write the log to this file, with rotation")
	flags.String(KEY_PROMPT, DEFAULT_PROMPT, "interactive shell prompt")
	flags.Bool("plain-output", false, "print drawing as text when stdout is not a terminal")
}

// flagName maps keys to their flag names.
var flagName = map[string]string{
	KEY_STRICT:       KEY_STRICT,
	KEY_VERBOSE:      KEY_VERBOSE,
	KEY_MAX_STEPS:    "max-steps",
	KEY_LOG_FILE:     "log-file",
	KEY_PROMPT:       KEY_PROMPT,
	KEY_PLAIN_OUTPUT: "plain-output",
}

// Load reads the configuration. Flags registered by Flags take priority,
// then MIGHF_* environment variables, then the file at path (if not
// empty), then the defaults.
func Load(v *viper.Viper, flags *pflag.FlagSet, path string) (cfg Config, err error) {
	v.SetDefault(KEY_STRICT, false)
	v.SetDefault(KEY_VERBOSE, false)
	v.SetDefault(KEY_MAX_STEPS, 0)
	v.SetDefault(KEY_LOG_FILE, "")
	v.SetDefault(KEY_PROMPT, DEFAULT_PROMPT)
	v.SetDefault(KEY_PLAIN_OUTPUT, false)

	v.SetEnvPrefix(ENV_PREFIX)
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagName {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err = v.BindPFlag(key, flag); err != nil {
				return
			}
		}
	}

	if len(path) != 0 {
		v.SetConfigFile(path)
		if err = v.ReadInConfig(); err != nil {
			err = errors.Join(ErrConfigRead, err)
			return
		}
	}

	cfg = Config{
		Strict:      v.GetBool(KEY_STRICT),
		Verbose:     v.GetBool(KEY_VERBOSE),
		MaxSteps:    v.GetInt(KEY_MAX_STEPS),
		LogFile:     v.GetString(KEY_LOG_FILE),
		Prompt:      v.GetString(KEY_PROMPT),
		PlainOutput: v.GetBool(KEY_PLAIN_OUTPUT),
	}

	return
}

// Logger creates the logger for the configuration. Verbose enables trace
// output; otherwise only warnings are shown. The returned closer releases
// the log file, if any.
func (cfg Config) Logger(name string) (logger hclog.Logger, closer io.Closer) {
	var output io.Writer = os.Stderr
	closer = io.NopCloser(nil)

	if len(cfg.LogFile) != 0 {
		rotate := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		output = rotate
		closer = rotate
	}

	level := hclog.Warn
	if cfg.Verbose {
		level = hclog.Trace
	}

	logger = hclog.New(&hclog.LoggerOptions{
		Name:   name,
		Output: output,
		Level:  level,
	})

	return
}
