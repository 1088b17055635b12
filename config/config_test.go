package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	assert := assert.New(t)

	cfg, err := Load(viper.New(), nil, "")
	assert.NoError(err)
	assert.Equal(Config{Prompt: DEFAULT_PROMPT}, cfg)
}

func TestLoad_Environment(t *testing.T) {
	assert := assert.New(t)

	t.Setenv("MIGHF_MAX_STEPS", "50")
	t.Setenv("MIGHF_STRICT", "true")

	cfg, err := Load(viper.New(), nil, "")
	assert.NoError(err)
	assert.Equal(50, cfg.MaxSteps)
	assert.True(cfg.Strict)
}

func TestLoad_File(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "mighf.yaml")
	err := os.WriteFile(path, []byte("strict: true\nprompt: \"> \"\nmax_steps: 10\n"), 0o644)
	assert.NoError(err)

	cfg, err := Load(viper.New(), nil, path)
	assert.NoError(err)
	assert.True(cfg.Strict)
	assert.Equal("> ", cfg.Prompt)
	assert.Equal(10, cfg.MaxSteps)

	_, err = Load(viper.New(), nil, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(err, ErrConfigRead)
}

func TestLoad_Flags(t *testing.T) {
	assert := assert.New(t)

	t.Setenv("MIGHF_MAX_STEPS", "50")

	flags := pflag.NewFlagSet("mighf", pflag.ContinueOnError)
	Flags(flags)
	err := flags.Parse([]string{"--max-steps", "7", "-v", "--plain-output"})
	assert.NoError(err)

	cfg, err := Load(viper.New(), flags, "")
	assert.NoError(err)
	assert.Equal(7, cfg.MaxSteps)
	assert.True(cfg.Verbose)
	assert.True(cfg.PlainOutput)
	assert.Equal(DEFAULT_PROMPT, cfg.Prompt)
}

func TestConfig_Logger(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "mighf.log")
	cfg := Config{LogFile: path}

	logger, closer := cfg.Logger("test")
	assert.False(logger.IsDebug())
	logger.Warn("warned", "value", 1)
	assert.NoError(closer.Close())

	data, err := os.ReadFile(path)
	assert.NoError(err)
	assert.Contains(string(data), "warned")

	cfg.Verbose = true
	logger, closer = cfg.Logger("test")
	assert.True(logger.IsTrace())
	closer.Close()
}
