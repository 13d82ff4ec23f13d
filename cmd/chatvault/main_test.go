package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestIngestCommand_RequiresExportDir(t *testing.T) {
	app := &cli.App{
		Name: "chatvault",
		Commands: []*cli.Command{
			{Name: "ingest", Action: ingestCommand},
		},
	}

	err := app.Run([]string{"chatvault", "ingest"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "export directory is required")
}

func TestIngestCommand_MissingExport(t *testing.T) {
	app := &cli.App{
		Name: "chatvault",
		Commands: []*cli.Command{
			{Name: "ingest", Action: ingestCommand},
		},
	}

	err := app.Run([]string{"chatvault", "ingest", filepath.Join(t.TempDir(), "nope")})
	assert.Error(t, err)
}

func TestAskCommand_RequiresQuestion(t *testing.T) {
	app := &cli.App{
		Name: "chatvault",
		Commands: []*cli.Command{
			{Name: "ask", Action: askCommand},
		},
	}

	err := app.Run([]string{"chatvault", "ask"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "question is required")
}

func TestSetupLogger(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	newContext := func(level string) *cli.Context {
		set := flag.NewFlagSet("test", flag.ContinueOnError)
		set.String("log-level", level, "")
		return cli.NewContext(&cli.App{}, set, nil)
	}

	t.Run("valid levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "DEBUG"} {
			assert.NoError(t, setupLogger(newContext(level)), "level %q", level)
		}
	})

	t.Run("invalid level", func(t *testing.T) {
		err := setupLogger(newContext("verbose"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestLoadFileConfig(t *testing.T) {
	t.Run("explicit file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		content := "db_path = \"/tmp/archive\"\nembedding_model = \"embeddinggemma\"\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		cfg, err := loadFileConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "/tmp/archive", cfg.DBPath)
		assert.Equal(t, "embeddinggemma", cfg.EmbeddingModel)
	})

	t.Run("explicit file missing is an error", func(t *testing.T) {
		_, err := loadFileConfig(filepath.Join(t.TempDir(), "nope.toml"))
		assert.Error(t, err)
	})

	t.Run("default file missing is not an error", func(t *testing.T) {
		cfg, err := loadFileConfig("")
		require.NoError(t, err)
		require.NotNil(t, cfg)
	})
}
