package config

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"sync/atomic"

	"github.com/go-viper/mapstructure/v2"
)

// Instrumenter selects which instrumentation source is allowed to create
// spans: the in-process middleware, or the external OpenTelemetry SDK
// observed by the bridge. The two are mutually exclusive.
type Instrumenter string

const (
	InstrumenterInternal Instrumenter = "internal"
	InstrumenterOtel     Instrumenter = "otel"
)

type Config struct {
	// ReportURL is the telemetry backend finished traces are reported to.
	// Its host is also used to suppress spans generated by our own
	// outbound reporting calls.
	ReportURL string

	DatabaseFile string
	ConfigFile   string

	Runtime *Runtime
}

// Runtime holds the flags the span bridge reads on every event. They are
// atomics so a config reload can flip them while traces are in flight.
type Runtime struct {
	enabled      atomic.Bool
	instrumenter atomic.Value
}

func NewRuntime(enabled bool, instrumenter Instrumenter) *Runtime {
	r := &Runtime{}
	r.SetTracingEnabled(enabled)
	r.SetInstrumenter(instrumenter)
	return r
}

func (r *Runtime) TracingEnabled() bool {
	return r.enabled.Load()
}

func (r *Runtime) SetTracingEnabled(enabled bool) {
	r.enabled.Store(enabled)
}

func (r *Runtime) Instrumenter() Instrumenter {
	if v, ok := r.instrumenter.Load().(Instrumenter); ok {
		return v
	}
	return InstrumenterOtel
}

func (r *Runtime) SetInstrumenter(i Instrumenter) {
	r.instrumenter.Store(i)
}

// fileConfig is the shape of the optional JSON config file. The file is
// decoded into a plain map first and then through mapstructure, so partial
// files and loosely typed values are fine.
type fileConfig struct {
	ReportURL    string `mapstructure:"report_url"`
	DatabaseFile string `mapstructure:"database_file"`
	Tracing      *bool  `mapstructure:"tracing"`
	Instrumenter string `mapstructure:"instrumenter"`
}

func CreateConfig(ctx context.Context) (*Config, error) {
	cfg := &Config{
		DatabaseFile: "dev.sqlite",
		ConfigFile:   os.Getenv("TRACEBRIDGE_CONFIG"),
		Runtime:      NewRuntime(true, InstrumenterOtel),
	}

	if cfg.ConfigFile != "" {
		fc, err := readFile(cfg.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg.apply(fc)
	}

	if v := os.Getenv("TRACEBRIDGE_REPORT_URL"); v != "" {
		cfg.ReportURL = v
	}
	if v := os.Getenv("TRACEBRIDGE_DB"); v != "" {
		cfg.DatabaseFile = v
	}
	if v := os.Getenv("TRACEBRIDGE_TRACING"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("parsing TRACEBRIDGE_TRACING: %w", err)
		}
		cfg.Runtime.SetTracingEnabled(enabled)
	}
	if v := os.Getenv("TRACEBRIDGE_INSTRUMENTER"); v != "" {
		i, err := parseInstrumenter(v)
		if err != nil {
			return nil, err
		}
		cfg.Runtime.SetInstrumenter(i)
	}

	return cfg, nil
}

// ReportHost is the host portion of ReportURL, or empty when no backend is
// configured.
func (c *Config) ReportHost() string {
	if c.ReportURL == "" {
		return ""
	}

	u, err := url.Parse(c.ReportURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func (c *Config) apply(fc *fileConfig) {
	if fc.ReportURL != "" {
		c.ReportURL = fc.ReportURL
	}
	if fc.DatabaseFile != "" {
		c.DatabaseFile = fc.DatabaseFile
	}
	if fc.Tracing != nil {
		c.Runtime.SetTracingEnabled(*fc.Tracing)
	}
	if fc.Instrumenter != "" {
		if i, err := parseInstrumenter(fc.Instrumenter); err == nil {
			c.Runtime.SetInstrumenter(i)
		}
	}
}

func parseInstrumenter(v string) (Instrumenter, error) {
	switch Instrumenter(v) {
	case InstrumenterInternal, InstrumenterOtel:
		return Instrumenter(v), nil
	}
	return "", fmt.Errorf("unknown instrumenter %q", v)
}

func readFile(path string) (*fileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	values := map[string]any{}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	fc := &fileConfig{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           fc,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(values); err != nil {
		return nil, fmt.Errorf("decoding config file %s: %w", path, err)
	}

	return fc, nil
}
