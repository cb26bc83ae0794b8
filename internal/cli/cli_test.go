package cli

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/aws-costs-tui/internal/config"
)

const serviceResponse = `{
  "ResultsByTime": [{
    "Groups": [
      {"Keys": ["Amazon Elastic Compute Cloud - Compute"], "Metrics": {"UnblendedCost": {"Amount": "523.45", "Unit": "USD"}}},
      {"Keys": ["AWS Key Management Service"], "Metrics": {"UnblendedCost": {"Amount": "0", "Unit": "USD"}}}
    ]
  }]
}`

// isolate points every configuration source at an empty temp directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("AWS_PROFILE", config.DefaultProfile)
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")
	t.Setenv("AWS_COSTS_ENDPOINT", "")
	t.Setenv("AWS_COSTS_TREND_MONTHS", "")
	t.Setenv("AWS_COSTS_DROP_ZERO", "")
	t.Setenv("AWS_COSTS_LOG_FILE", "")
	return dir
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "awscosts")
}

func TestProfilesCommand(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "credentials"),
		[]byte("[default]\naws_access_key_id = A\naws_secret_access_key = B\n\n[prod]\naws_access_key_id = C\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config"),
		[]byte("[profile dev]\nregion = eu-west-1\n"), 0o600))

	out, _, err := execute(t, "profiles")
	require.NoError(t, err)
	assert.Equal(t, "default\ndev\nprod\n", out)
}

func TestProfilesCommand_Empty(t *testing.T) {
	isolate(t)

	out, errOut, err := execute(t, "profiles")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "no profiles found")
}

func TestRoot_MissingCredentials(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "--no-tui")
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrConfiguration)
	assert.Contains(t, err.Error(), `profile "default"`)
}

func TestRoot_InvalidMonths(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "--no-tui", "--months", "30")
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrConfiguration)
}

func TestRoot_RejectsArgs(t *testing.T) {
	_, _, err := execute(t, "extra")
	assert.Error(t, err)
}

func TestRoot_TextReport(t *testing.T) {
	isolate(t)

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = io.WriteString(w, serviceResponse)
	}))
	defer srv.Close()

	t.Setenv("AWS_COSTS_ENDPOINT", srv.URL)
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIDEXAMPLE")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")

	out, _, err := execute(t, "--no-tui", "--months", "3", "--drop-zero")
	require.NoError(t, err)

	assert.Equal(t, int32(5), requests.Load(), "current + previous + three trend months")
	assert.Contains(t, out, "Current month (month to date)")
	assert.Contains(t, out, "Amazon Elastic Compute Cloud - Compute")
	assert.Contains(t, out, "523.45")
	assert.NotContains(t, out, "Key Management", "--drop-zero should hide zero spend")
}

func TestOptionsApply(t *testing.T) {
	cmd := NewRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"-p", "prod", "--months", "12"}))

	cfg := &config.Config{Profile: "default", Region: "eu-west-1", TrendMonths: 6}
	opts := &options{profile: "prod", months: 12, region: "ignored"}
	opts.apply(cfg, cmd.Flags())

	assert.Equal(t, "prod", cfg.Profile)
	assert.Equal(t, 12, cfg.TrendMonths)
	assert.Equal(t, "eu-west-1", cfg.Region, "unset flags keep loaded values")
}
