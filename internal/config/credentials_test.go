package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/ini.v1"

	"github.com/j-veylop/aws-costs-tui/internal/models"
)

const credentialsFixture = `
# shared credentials
[default]
aws_access_key_id = AKIDEXAMPLE
aws_secret_access_key = wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY

[billing]
aws_access_key_id=AKIABILLING
aws_secret_access_key=billing-secret
aws_session_token = token-123
; trailing comment
`

const configFixture = `
[default]
region = eu-central-1

[profile billing]
region=us-west-2

[profile ops]
aws_access_key_id = AKIAOPS
aws_secret_access_key = ops-secret

[profile empty]
output = json
`

func writeProfiles(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	creds := filepath.Join(dir, "credentials")
	conf := filepath.Join(dir, "config")
	if err := os.WriteFile(creds, []byte(credentialsFixture), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(conf, []byte(configFixture), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")
	t.Setenv("AWS_SESSION_TOKEN", "")
	return &Config{Profile: DefaultProfile, CredentialsFile: creds, ConfigFile: conf}
}

func TestParseProfiles(t *testing.T) {
	got, err := parseProfiles(strings.NewReader(configFixture + "\norphan=1\n[ spaced ]\nk = v = w\n"))
	if err != nil {
		t.Fatalf("parseProfiles() failed: %v", err)
	}

	if got["billing"]["region"] != "us-west-2" {
		t.Errorf("billing region = %q", got["billing"]["region"])
	}
	if _, ok := got["profile billing"]; ok {
		t.Error("profile prefix should be stripped")
	}
	if got["spaced"]["k"] != "v = w" {
		t.Errorf("value split = %q, want first '=' only", got["spaced"]["k"])
	}
	if _, ok := got["empty"]; !ok {
		t.Error("section without credentials should still be listed")
	}
	if _, ok := got[ini.DefaultSection]; ok {
		t.Error("keys outside a section should not create a profile")
	}
}

func TestParseProfiles_KeepsHashInValues(t *testing.T) {
	got, err := parseProfiles(strings.NewReader("[default]\naws_secret_access_key = abc#def;ghi\n"))
	if err != nil {
		t.Fatalf("parseProfiles() failed: %v", err)
	}
	if v := got["default"]["aws_secret_access_key"]; v != "abc#def;ghi" {
		t.Errorf("secret = %q, want the full value", v)
	}
}

func TestParseProfiles_Malformed(t *testing.T) {
	if _, err := parseProfiles(strings.NewReader("[default\nkey = value\n")); err == nil {
		t.Error("an unclosed section header should fail")
	}
}

func TestReadProfiles_Missing(t *testing.T) {
	got, err := readProfiles(filepath.Join(t.TempDir(), "nope"))
	if err != nil || len(got) != 0 {
		t.Errorf("readProfiles(missing) = %v, %v", got, err)
	}
}

func TestResolveCredentials(t *testing.T) {
	tests := []struct {
		name       string
		profile    string
		env        map[string]string
		wantKey    string
		wantToken  string
		wantSource models.CredentialSource
		wantRegion string
	}{
		{
			name:       "DefaultFromFile",
			profile:    "default",
			wantKey:    "AKIDEXAMPLE",
			wantSource: models.SourceCredentialsFile,
			wantRegion: "eu-central-1",
		},
		{
			name:       "DefaultFromEnv",
			profile:    "default",
			env:        map[string]string{"AWS_ACCESS_KEY_ID": "AKIAENV", "AWS_SECRET_ACCESS_KEY": "env-secret", "AWS_SESSION_TOKEN": "tok"},
			wantKey:    "AKIAENV",
			wantToken:  "tok",
			wantSource: models.SourceEnvironment,
			wantRegion: "eu-central-1",
		},
		{
			name:       "PartialEnvFallsThrough",
			profile:    "default",
			env:        map[string]string{"AWS_ACCESS_KEY_ID": "AKIAENV"},
			wantKey:    "AKIDEXAMPLE",
			wantSource: models.SourceCredentialsFile,
			wantRegion: "eu-central-1",
		},
		{
			name:       "NamedProfileIgnoresEnv",
			profile:    "billing",
			env:        map[string]string{"AWS_ACCESS_KEY_ID": "AKIAENV", "AWS_SECRET_ACCESS_KEY": "env-secret"},
			wantKey:    "AKIABILLING",
			wantToken:  "token-123",
			wantSource: models.SourceCredentialsFile,
			wantRegion: "us-west-2",
		},
		{
			name:       "ConfigFileKeys",
			profile:    "ops",
			wantKey:    "AKIAOPS",
			wantSource: models.SourceConfigFile,
			wantRegion: "us-east-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := writeProfiles(t)
			cfg.Profile = tt.profile
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			creds, err := ResolveCredentials(cfg)
			if err != nil {
				t.Fatalf("ResolveCredentials() failed: %v", err)
			}
			if creds.AccessKeyID != tt.wantKey {
				t.Errorf("AccessKeyID = %q, want %q", creds.AccessKeyID, tt.wantKey)
			}
			if creds.SessionToken != tt.wantToken {
				t.Errorf("SessionToken = %q, want %q", creds.SessionToken, tt.wantToken)
			}
			if creds.Source != tt.wantSource {
				t.Errorf("Source = %v, want %v", creds.Source, tt.wantSource)
			}
			if creds.Region != tt.wantRegion {
				t.Errorf("Region = %q, want %q", creds.Region, tt.wantRegion)
			}
			if creds.Profile != tt.profile {
				t.Errorf("Profile = %q, want %q", creds.Profile, tt.profile)
			}
		})
	}
}

func TestResolveCredentials_ExplicitRegionWins(t *testing.T) {
	cfg := writeProfiles(t)
	cfg.Region = "sa-east-1"

	creds, err := ResolveCredentials(cfg)
	if err != nil {
		t.Fatalf("ResolveCredentials() failed: %v", err)
	}
	if creds.Region != "sa-east-1" {
		t.Errorf("Region = %q, want sa-east-1", creds.Region)
	}
}

func TestResolveCredentials_Missing(t *testing.T) {
	for _, profile := range []string{"empty", "does-not-exist"} {
		t.Run(profile, func(t *testing.T) {
			cfg := writeProfiles(t)
			cfg.Profile = profile

			_, err := ResolveCredentials(cfg)
			if !errors.Is(err, ErrConfiguration) {
				t.Fatalf("error = %v, want ErrConfiguration", err)
			}
			if !strings.Contains(err.Error(), profile) {
				t.Errorf("error %q should name the profile", err)
			}
		})
	}
}

func TestListProfiles(t *testing.T) {
	cfg := writeProfiles(t)

	got, err := ListProfiles(cfg)
	if err != nil {
		t.Fatalf("ListProfiles() failed: %v", err)
	}
	want := []string{"billing", "default", "empty", "ops"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListProfiles() = %v, want %v", got, want)
	}
}

func TestListProfiles_NoFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{CredentialsFile: filepath.Join(dir, "a"), ConfigFile: filepath.Join(dir, "b")}

	got, err := ListProfiles(cfg)
	if err != nil || len(got) != 0 {
		t.Errorf("ListProfiles() = %v, %v", got, err)
	}
}
