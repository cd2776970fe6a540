// Package scenario loads and validates YAML scenario files: the target
// service, the endpoints to exercise, the load shape to apply, and the
// thresholds a run must satisfy.
package scenario

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/loadcart/http-load-runner/pkg/shape"
	"github.com/loadcart/http-load-runner/pkg/threshold"
)

// Duration wraps time.Duration so scenario files can say "90s" or "2m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("duration must be a string like \"90s\": %w", err)
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// Scenario is a complete load test definition.
type Scenario struct {
	Name       string           `yaml:"name"`
	BaseURL    string           `yaml:"base_url"`
	Profile    Profile          `yaml:"profile"`
	Shape      ShapeConfig      `yaml:"shape"`
	Endpoints  []Endpoint       `yaml:"endpoints"`
	Thresholds []ThresholdEntry `yaml:"thresholds"`
}

// Endpoint is one HTTP operation workers exercise. Weight sets how often
// it is picked relative to the scenario's other endpoints.
type Endpoint struct {
	Name    string            `yaml:"name"`
	Method  string            `yaml:"method"`
	Path    string            `yaml:"path"`
	Weight  int               `yaml:"weight"`
	Body    string            `yaml:"body"`
	Headers map[string]string `yaml:"headers"`
}

// ShapeConfig declares the load shape. Type selects which fields apply:
// ramp uses peak_users/ramp_up/hold/decay, spike uses baseline_users/
// peak_users/warm_up/spike/cool_down.
type ShapeConfig struct {
	Type          string   `yaml:"type"`
	PeakUsers     int      `yaml:"peak_users"`
	BaselineUsers int      `yaml:"baseline_users"`
	RampUp        Duration `yaml:"ramp_up"`
	Hold          Duration `yaml:"hold"`
	Decay         Duration `yaml:"decay"`
	WarmUp        Duration `yaml:"warm_up"`
	Spike         Duration `yaml:"spike"`
	CoolDown      Duration `yaml:"cool_down"`
	SpawnRate     float64  `yaml:"spawn_rate"`
}

// ThresholdEntry maps one endpoint to its limits, in file order.
type ThresholdEntry struct {
	Endpoint string       `yaml:"endpoint"`
	Limits   []LimitEntry `yaml:"limits"`
}

type LimitEntry struct {
	Metric string  `yaml:"metric"`
	Max    float64 `yaml:"max"`
}

var allowedMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true,
	"DELETE": true, "HEAD": true, "OPTIONS": true,
}

// Load reads, parses, and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario file %s: %w", path, err)
	}

	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &s, nil
}

// applyDefaults fills optional fields before validation.
func (s *Scenario) applyDefaults() {
	if s.Profile == "" {
		s.Profile = ProfileBaseline
	}
	if s.Shape.SpawnRate == 0 {
		s.Shape.SpawnRate = 1
	}
	for i := range s.Endpoints {
		if s.Endpoints[i].Method == "" {
			s.Endpoints[i].Method = "GET"
		} else {
			s.Endpoints[i].Method = strings.ToUpper(s.Endpoints[i].Method)
		}
		if s.Endpoints[i].Weight == 0 {
			s.Endpoints[i].Weight = 1
		}
	}
}

// Validate checks the whole definition: target URL, endpoints, shape
// config (via the shape constructors), profile caps, and thresholds.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	if s.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	parsed, err := url.Parse(s.BaseURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("base_url must be an http(s) URL, got %q", s.BaseURL)
	}
	if !KnownProfile(s.Profile) {
		return fmt.Errorf("unknown profile %q", s.Profile)
	}

	if len(s.Endpoints) == 0 {
		return fmt.Errorf("at least one endpoint is required")
	}
	seen := make(map[string]bool)
	for _, ep := range s.Endpoints {
		if ep.Name == "" {
			return fmt.Errorf("every endpoint needs a name")
		}
		if seen[ep.Name] {
			return fmt.Errorf("duplicate endpoint %q", ep.Name)
		}
		seen[ep.Name] = true
		if !strings.HasPrefix(ep.Path, "/") {
			return fmt.Errorf("endpoint %q: path must start with /, got %q", ep.Name, ep.Path)
		}
		if !allowedMethods[ep.Method] {
			return fmt.Errorf("endpoint %q: unsupported method %q", ep.Name, ep.Method)
		}
		if ep.Weight < 1 {
			return fmt.Errorf("endpoint %q: weight must be positive, got %d", ep.Name, ep.Weight)
		}
	}

	built, err := s.BuildShape()
	if err != nil {
		return err
	}

	profile := GetProfileConfig(s.Profile)
	peak := s.Shape.PeakUsers
	if peak > profile.MaxPeakUsers {
		return fmt.Errorf("profile %q caps peak users at %d, scenario declares %d",
			s.Profile, profile.MaxPeakUsers, peak)
	}
	if built.TotalDuration() > profile.MaxDuration {
		return fmt.Errorf("profile %q caps duration at %v, scenario declares %v",
			s.Profile, profile.MaxDuration, built.TotalDuration())
	}

	for _, entry := range s.Thresholds {
		if !seen[entry.Endpoint] {
			return fmt.Errorf("thresholds reference unknown endpoint %q", entry.Endpoint)
		}
	}
	if err := s.BuildSpec().Validate(); err != nil {
		return err
	}
	return nil
}

// BuildShape constructs the configured load shape. Shape constructors
// perform the numeric validation.
func (s *Scenario) BuildShape() (shape.Shape, error) {
	switch s.Shape.Type {
	case "ramp":
		return shape.NewRampShape(shape.RampConfig{
			PeakUsers: s.Shape.PeakUsers,
			RampUp:    s.Shape.RampUp.Std(),
			Hold:      s.Shape.Hold.Std(),
			Decay:     s.Shape.Decay.Std(),
			SpawnRate: s.Shape.SpawnRate,
		})
	case "spike":
		return shape.NewSpikeShape(shape.SpikeConfig{
			BaselineUsers: s.Shape.BaselineUsers,
			PeakUsers:     s.Shape.PeakUsers,
			WarmUp:        s.Shape.WarmUp.Std(),
			Spike:         s.Shape.Spike.Std(),
			CoolDown:      s.Shape.CoolDown.Std(),
			SpawnRate:     s.Shape.SpawnRate,
		})
	default:
		return nil, fmt.Errorf("unknown shape type %q (want ramp or spike)", s.Shape.Type)
	}
}

// BuildSpec converts the scenario's threshold entries into a checker
// spec, preserving file order. A scenario without thresholds gets the
// default limits applied to each of its endpoints.
func (s *Scenario) BuildSpec() threshold.Spec {
	if len(s.Thresholds) == 0 {
		return threshold.DefaultSpecFor(s.EndpointNames())
	}

	spec := make(threshold.Spec, 0, len(s.Thresholds))
	for _, entry := range s.Thresholds {
		limits := make([]threshold.Limit, 0, len(entry.Limits))
		for _, l := range entry.Limits {
			limits = append(limits, threshold.Limit{Metric: l.Metric, Max: l.Max})
		}
		spec = append(spec, threshold.EndpointLimits{Endpoint: entry.Endpoint, Limits: limits})
	}
	return spec
}

// EndpointNames lists endpoint names in declaration order.
func (s *Scenario) EndpointNames() []string {
	names := make([]string, 0, len(s.Endpoints))
	for _, ep := range s.Endpoints {
		names = append(names, ep.Name)
	}
	return names
}

// EndpointByName finds a declared endpoint.
func (s *Scenario) EndpointByName(name string) (Endpoint, bool) {
	for _, ep := range s.Endpoints {
		if ep.Name == name {
			return ep, true
		}
	}
	return Endpoint{}, false
}
