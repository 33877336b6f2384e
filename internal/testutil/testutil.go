// Package testutil provides shared test helpers for creating config files.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// SetupTestConfig creates a complete, valid config file under tmpDir and
// returns its path.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	configContent := `database:
  host: localhost
  port: 3306
  database: xlearn_test
  username: xlearn
openai:
  api_key: test-openai-key
  model: gpt-4o-mini
x:
  api_base_url: https://api.x.test
  bearer_token: test-bearer-token
  publish_retry_attempts: 2
scheduler:
  timezone: UTC
  floor_interval_hours: 3
  reply_window_minutes: 10
  poll_interval_seconds: 10
`

	configFile := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(configFile, []byte(configContent), 0644))
	return configFile
}
