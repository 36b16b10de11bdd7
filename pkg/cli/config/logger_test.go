package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/janus/pkg/cli/config"
	"github.com/secmon-lab/janus/pkg/utils/logging"
)

func TestLogger_Configure(t *testing.T) {
	original := logging.Default()
	t.Cleanup(func() { logging.SetDefault(original) })

	t.Run("json output to file masks tokens", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "janus.log")
		closer, err := config.NewLoggerForTest("info", "json", path).Configure()
		gt.NoError(t, err).Required()

		logging.Default().Info("hello", "token", "xoxb-123456", "user", "U1")
		logging.Default().Debug("hidden")
		closer()

		data, err := os.ReadFile(path)
		gt.NoError(t, err).Required()
		out := string(data)
		gt.String(t, out).Contains(`"msg":"hello"`)
		gt.String(t, out).Contains(`"user":"U1"`)
		gt.Bool(t, strings.Contains(out, "xoxb-123456")).False()
		gt.Bool(t, strings.Contains(out, "hidden")).False()
	})

	t.Run("console format", func(t *testing.T) {
		closer, err := config.NewLoggerForTest("debug", "console", "stderr").Configure()
		gt.NoError(t, err).Required()
		closer()
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := config.NewLoggerForTest("verbose", "json", "stdout").Configure()
		gt.Error(t, err).Is(config.ErrInvalidLogConfig)
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := config.NewLoggerForTest("info", "xml", "stdout").Configure()
		gt.Error(t, err).Is(config.ErrInvalidLogConfig)
	})
}
