package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/j-veylop/aws-costs-tui/internal/logger"
	"github.com/j-veylop/aws-costs-tui/internal/models"
)

// ErrConfiguration reports missing or invalid settings. It is raised before
// any network call.
var ErrConfiguration = errors.New("configuration error")

const fallbackRegion = "us-east-1"

// profileFile maps section names to their key/value pairs. Config-file
// headers of the form "[profile name]" are stored under "name".
type profileFile map[string]map[string]string

// parseProfiles reads the shared INI format. Keys outside a section are
// ignored; values keep any '#' or ';' they contain.
func parseProfiles(r io.Reader) (profileFile, error) {
	file, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true, KeyValueDelimiters: "="}, io.NopCloser(r))
	if err != nil {
		return nil, err
	}

	sections := make(profileFile)
	for _, section := range file.Sections() {
		if section.Name() == ini.DefaultSection {
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(section.Name(), "profile "))
		values, ok := sections[name]
		if !ok {
			values = make(map[string]string)
			sections[name] = values
		}
		for _, key := range section.Keys() {
			values[key.Name()] = key.Value()
		}
	}
	return sections, nil
}

// readProfiles parses path. A missing file yields an empty set.
func readProfiles(path string) (profileFile, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return profileFile{}, nil
		}
		return nil, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Error("failed to close profile file", "path", path, "error", err)
		}
	}()
	return parseProfiles(f)
}

// keys returns the access key, secret and token of a section.
func (p profileFile) keys(profile string) (id, secret, token string, ok bool) {
	section, found := p[profile]
	if !found {
		return "", "", "", false
	}
	id = section["aws_access_key_id"]
	secret = section["aws_secret_access_key"]
	token = section["aws_session_token"]
	return id, secret, token, id != "" && secret != ""
}

// ResolveRegion picks the signing region: explicit setting, then the
// profile's region in the config file, then us-east-1.
func ResolveRegion(cfg *Config) string {
	if cfg.Region != "" {
		return cfg.Region
	}
	conf, err := readProfiles(cfg.ConfigFile)
	if err != nil {
		logger.Warn("failed to read AWS config file", "path", cfg.ConfigFile, "error", err)
		return fallbackRegion
	}
	if region := conf[cfg.Profile]["region"]; region != "" {
		return region
	}
	return fallbackRegion
}

// ResolveCredentials finds keys for cfg.Profile. Environment variables are
// only consulted for the default profile; after that the credentials file
// and then the config file are searched.
func ResolveCredentials(cfg *Config) (models.Credentials, error) {
	creds := models.Credentials{
		Profile: cfg.Profile,
		Region:  ResolveRegion(cfg),
	}

	if cfg.Profile == DefaultProfile {
		id := os.Getenv("AWS_ACCESS_KEY_ID")
		secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
		if id != "" && secret != "" {
			creds.AccessKeyID = id
			creds.SecretAccessKey = secret
			creds.SessionToken = os.Getenv("AWS_SESSION_TOKEN")
			creds.Source = models.SourceEnvironment
			logger.Debug("loaded credentials", "source", creds.Source.String())
			return creds, nil
		}
	}

	sources := []struct {
		path   string
		source models.CredentialSource
	}{
		{cfg.CredentialsFile, models.SourceCredentialsFile},
		{cfg.ConfigFile, models.SourceConfigFile},
	}
	for _, src := range sources {
		file, err := readProfiles(src.path)
		if err != nil {
			return models.Credentials{}, fmt.Errorf("%w: read %s: %v", ErrConfiguration, src.path, err)
		}
		if id, secret, token, ok := file.keys(cfg.Profile); ok {
			creds.AccessKeyID = id
			creds.SecretAccessKey = secret
			creds.SessionToken = token
			creds.Source = src.source
			logger.Debug("loaded credentials", "source", creds.Source.String(), "profile", cfg.Profile)
			return creds, nil
		}
	}

	return models.Credentials{}, fmt.Errorf(
		"%w: no credentials found for profile %q; run 'aws configure' or set AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY",
		ErrConfiguration, cfg.Profile)
}

// ListProfiles returns the sorted union of profile names in the credentials
// and config files.
func ListProfiles(cfg *Config) ([]string, error) {
	seen := make(map[string]struct{})
	for _, path := range []string{cfg.CredentialsFile, cfg.ConfigFile} {
		file, err := readProfiles(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		for name := range file {
			seen[name] = struct{}{}
		}
	}

	profiles := make([]string, 0, len(seen))
	for name := range seen {
		profiles = append(profiles, name)
	}
	sort.Strings(profiles)
	return profiles, nil
}
