package config

// Default configuration values.
const (
	DefaultDirectory = "/var/lib/polykv/data"

	DefaultEngineBackend = "memory"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsAddr = "127.0.0.1:9090"
)

// Default returns the default Spec.
func Default() *Spec {
	return &Spec{
		Directory: DefaultDirectory,
		Engine: EngineSpec{
			Backend:   DefaultEngineBackend,
			EnableWAL: true,
		},
		Log: LogSpec{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Metrics: MetricsSpec{
			Enabled: false,
			Addr:    DefaultMetricsAddr,
		},
	}
}
