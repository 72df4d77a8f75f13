package config

import (
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
)

type SettingsType struct {
	m map[string]SettingType
}

type SettingType struct {
	Description string
	Value       string
}

// NewSettingType reads every known setting from the environment. When out is
// non-nil the resolved table is rendered to it.
func NewSettingType(out io.Writer) *SettingsType {
	s := &SettingsType{m: make(map[string]SettingType)}

	s.Set(LISTEN_ADDR, "Console listen address", ":8080")
	s.Set(DEFAULT_ENDPOINT, "Endpoint selected for new operator sessions", "http://localhost")
	s.Set(EXTRA_ENDPOINTS, "Additional endpoints, label=url comma separated", "")
	s.Set(ATTEMPT_POLICY, "Submission while in flight: race or drop", "race")
	s.Set(HTTP_TIMEOUT, "Login request timeout, 0 waits forever", "0")
	s.Set(PROBE_ORIGIN, "Origin sent with login requests to check CORS", "")
	s.Set(TOKEN_STORE, "Token storage backend: file, memory or redis", "file")
	s.Set(TOKEN_FILE, "Token file for the file backend", "loginprobe-tokens.json")
	s.Set(TOKEN_KEY, "Key the received token is stored under", "auth_token")
	s.Set(REDIS_ADDR, "Redis address for the redis backend", "127.0.0.1:6379")
	s.Set(REDIS_PASSWORD, "Redis password", "")
	s.Set(REDIS_DB, "Redis database index", "0")
	s.Set(SESSION_SECURE_COOKIE, "Mark the console session cookie Secure", "false")

	if out != nil {
		s.Render(out)
	}
	return s
}

func (s *SettingsType) Render(out io.Writer) {
	keys := make([]string, 0, len(s.m))
	for key := range s.m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	table := tablewriter.NewWriter(out)
	table.Header("KEY", "Description", "value")
	for _, key := range keys {
		setting := s.m[key]
		value := setting.Value
		if key == REDIS_PASSWORD && value != "" {
			value = "***"
		}
		table.Append([]string{key, setting.Description, value})
	}
	table.Render()
}

func (s *SettingsType) Get(id string) string {
	return s.m[id].Value
}

func (s *SettingsType) Has(id string) bool {
	return len(s.m[id].Value) > 0
}

func (s *SettingsType) IsTrue(id string) bool {
	v := strings.ToLower(strings.TrimSpace(s.m[id].Value))
	return v == "1" || v == "true" || v == "yes"
}

func (s *SettingsType) Int(id string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s.m[id].Value))
}

// Duration accepts Go durations ("30s") or a bare number of seconds.
func (s *SettingsType) Duration(id string) (time.Duration, error) {
	v := strings.TrimSpace(s.m[id].Value)
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}

func (s *SettingsType) Set(id string, description string, defaultValue string) {
	if value, ok := os.LookupEnv(id); ok {
		s.m[id] = SettingType{Description: description, Value: value}
	} else {
		s.m[id] = SettingType{Description: description, Value: defaultValue}
	}
}

const (
	LISTEN_ADDR           = "LISTEN_ADDR"
	DEFAULT_ENDPOINT      = "DEFAULT_ENDPOINT"
	EXTRA_ENDPOINTS       = "EXTRA_ENDPOINTS"
	ATTEMPT_POLICY        = "ATTEMPT_POLICY"
	HTTP_TIMEOUT          = "HTTP_TIMEOUT"
	PROBE_ORIGIN          = "PROBE_ORIGIN"
	TOKEN_STORE           = "TOKEN_STORE"
	TOKEN_FILE            = "TOKEN_FILE"
	TOKEN_KEY             = "TOKEN_KEY"
	REDIS_ADDR            = "REDIS_ADDR"
	REDIS_PASSWORD        = "REDIS_PASSWORD"
	REDIS_DB              = "REDIS_DB"
	SESSION_SECURE_COOKIE = "SESSION_SECURE_COOKIE"
)
