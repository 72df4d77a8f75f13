package endpoint

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// LoginPath is appended to the selected base URL for every attempt.
const LoginPath = "/api/auth/login"

var ErrUnknownEndpoint = errors.New("unknown endpoint")

type Endpoint struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// LoginURL concatenates the base URL and LoginPath without normalising either.
func (e Endpoint) LoginURL() string {
	return e.Value + LoginPath
}

var Presets = []Endpoint{
	{Value: "https://backendhotelt.onrender.com", Label: "Production (Render)"},
	{Value: "http://localhost", Label: "Local (Docker - port 80)"},
	{Value: "http://localhost:8000", Label: "Local (Artisan - port 8000)"},
	{Value: "http://127.0.0.1", Label: "Local (127.0.0.1 - port 80)"},
}

// Catalog is the fixed set of endpoints an operator may pick from.
type Catalog struct {
	list []Endpoint
	def  Endpoint
}

func NewCatalog(defaultValue string, extra ...Endpoint) (*Catalog, error) {
	list := make([]Endpoint, 0, len(Presets)+len(extra))
	seen := make(map[string]bool, len(Presets)+len(extra))
	for _, e := range append(append([]Endpoint{}, Presets...), extra...) {
		if seen[e.Value] {
			continue
		}
		if err := validateBase(e.Value); err != nil {
			return nil, fmt.Errorf("endpoint %q: %w", e.Label, err)
		}
		seen[e.Value] = true
		list = append(list, e)
	}

	c := &Catalog{list: list}
	def, ok := c.Lookup(defaultValue)
	if !ok {
		return nil, fmt.Errorf("default %q: %w", defaultValue, ErrUnknownEndpoint)
	}
	c.def = def
	return c, nil
}

func (c *Catalog) All() []Endpoint {
	out := make([]Endpoint, len(c.list))
	copy(out, c.list)
	return out
}

func (c *Catalog) Default() Endpoint {
	return c.def
}

func (c *Catalog) Lookup(value string) (Endpoint, bool) {
	for _, e := range c.list {
		if e.Value == value {
			return e, true
		}
	}
	return Endpoint{}, false
}

// ParseExtra reads a "label=url,label=url" list.
func ParseExtra(raw string) ([]Endpoint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var out []Endpoint
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		label, value, ok := strings.Cut(item, "=")
		if !ok {
			return nil, fmt.Errorf("endpoint entry %q: expected label=url", item)
		}
		label = strings.TrimSpace(label)
		value = strings.TrimRight(strings.TrimSpace(value), "/")
		if label == "" {
			label = value
		}
		out = append(out, Endpoint{Value: value, Label: label})
	}
	return out, nil
}

func validateBase(value string) error {
	u, err := url.Parse(value)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}
