package configloader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/picofix/pkg/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	res, err := Load(context.Background(), LoadOptions{
		WorkingDir:         t.TempDir(),
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		IgnoreEnv:          true,
	})
	require.NoError(t, err)

	assert.Equal(t, config.DialectPico8, res.Config.Dialect)
	assert.True(t, res.Config.Backups.Enabled)
	assert.Empty(t, res.LoadedFrom)
}

func TestLoadProjectConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".picofix.yml"), "dialect: lua\nignore:\n  - vendor/**\n")

	res, err := Load(context.Background(), LoadOptions{
		WorkingDir:         dir,
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		IgnoreEnv:          true,
	})
	require.NoError(t, err)

	assert.Equal(t, config.DialectLua, res.Config.Dialect)
	assert.Equal(t, []string{"vendor/**"}, res.Config.Ignore)
	require.Len(t, res.LoadedFrom, 1)
	assert.Equal(t, filepath.Join(dir, ".picofix.yml"), res.LoadedFrom[0])
}

func TestLoadFindsConfigInParent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".picofix.yml"), "dialect: lua\n")
	sub := filepath.Join(dir, "carts", "game")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	path, err := FindProjectConfig(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".picofix.yml"), path)
}

func TestLoadStopsAtVCSRoot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".picofix.yml"), "dialect: lua\n")
	repo := filepath.Join(dir, "repo")
	require.NoError(t, os.MkdirAll(filepath.Join(repo, ".git"), 0o755))

	path, err := FindProjectConfig(context.Background(), repo)
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestLoadExplicitConfigWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".picofix.yml"), "dialect: lua\n")
	explicit := filepath.Join(dir, "other.yml")
	writeFile(t, explicit, "dialect: pico8\nbackups:\n  mode: none\n")

	res, err := Load(context.Background(), LoadOptions{
		WorkingDir:         dir,
		ExplicitPath:       explicit,
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		IgnoreEnv:          true,
	})
	require.NoError(t, err)

	assert.Equal(t, config.DialectPico8, res.Config.Dialect)
	assert.Equal(t, "none", res.Config.Backups.Mode)
	assert.Equal(t, []string{filepath.Join(dir, ".picofix.yml"), explicit}, res.LoadedFrom)
}

func TestLoadCLIOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".picofix.yml"), "dialect: lua\n")

	cli := config.NewConfig()
	cli.Dialect = config.DialectPico8
	cli.Write = true
	cli.Jobs = 4

	res, err := Load(context.Background(), LoadOptions{
		WorkingDir:         dir,
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		IgnoreEnv:          true,
		CLIConfig:          cli,
	})
	require.NoError(t, err)

	assert.Equal(t, config.DialectPico8, res.Config.Dialect)
	assert.True(t, res.Config.Write)
	assert.Equal(t, 4, res.Config.Jobs)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PICOFIX_DIALECT", "lua")
	t.Setenv("PICOFIX_JOBS", "2")
	t.Setenv("PICOFIX_IGNORE", "a/**, b/**")

	cfg := config.NewConfig()
	require.NoError(t, LoadFromEnv(cfg))

	assert.Equal(t, config.DialectLua, cfg.Dialect)
	assert.Equal(t, 2, cfg.Jobs)
	assert.Equal(t, []string{"a/**", "b/**"}, cfg.Ignore)
}

func TestLoadFromEnvInvalidBool(t *testing.T) {
	t.Setenv("PICOFIX_WRITE", "maybe")

	err := LoadFromEnv(config.NewConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PICOFIX_WRITE")
}

func TestLoadInvalidDialect(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".picofix.yml"), "dialect: moonscript\n")

	_, err := Load(context.Background(), LoadOptions{
		WorkingDir:         dir,
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		IgnoreEnv:          true,
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "dialect", verr.Field)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Format = "xml"
	cfg.Jobs = -1
	cfg.Backups.Mode = "cloud"
	cfg.Ignore = []string{"[unclosed"}

	result := Validate(cfg)
	assert.False(t, result.Valid())
	assert.Len(t, result.Errors, 4)
}

func TestValidateWriteDryRunExclusive(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Write = true
	cfg.DryRun = true

	result := Validate(cfg)
	require.False(t, result.Valid())
	assert.Contains(t, result.Errors[0].Message, "mutually exclusive")
}

func TestMergeAll(t *testing.T) {
	t.Parallel()

	base := config.NewConfig()
	mid := &config.Config{Dialect: config.DialectLua, Ignore: []string{"x"}}
	top := &config.Config{Jobs: 8}

	got := MergeAll(base, mid, top)
	assert.Equal(t, config.DialectLua, got.Dialect)
	assert.Equal(t, []string{"x"}, got.Ignore)
	assert.Equal(t, 8, got.Jobs)
	assert.True(t, got.Backups.Enabled)
}
