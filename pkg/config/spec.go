package config

// Spec is the root configuration structure: a JSON document with a root
// data directory, optional per-disk directory overrides, and an engine
// subsection whose keys are substrate-specific.
type Spec struct {
	Directory       string          `koanf:"directory"`
	DataDirectories []DataDirectory `koanf:"data_directories"`
	Engine          EngineSpec      `koanf:"engine"`
	Log             LogSpec         `koanf:"log"`
	Metrics         MetricsSpec     `koanf:"metrics"`
}

// DataDirectory is one additional disk a substrate may shard data across.
// MaxSize accepts either a plain byte count or a human-readable suffix
// ("KB", "MB", "GB", "TB") handled by ParseSize.
type DataDirectory struct {
	Path    string `koanf:"path"`
	MaxSize string `koanf:"max_size"`
}

// EngineSpec selects and configures the substrate backend. Config and
// ConfigFilePath are mutually exclusive: ConfigFilePath, if set, points to
// a JSON file holding the same shape as Config.
type EngineSpec struct {
	Backend        string         `koanf:"backend"`
	Config         map[string]any `koanf:"config"`
	ConfigFilePath string         `koanf:"config_file_path"`

	// EnableWAL turns on write-ahead log durability, independent of Backend.
	EnableWAL bool `koanf:"enable_wal"`

	// EncryptionKeyHex, if set, is a hex-encoded key used to encrypt WAL
	// entry payloads at rest via pkg/crypto/adaptive. Empty means WAL
	// entries are stored in plaintext.
	EncryptionKeyHex string `koanf:"encryption_key_hex"`
}

// LogSpec configures structured logging.
type LogSpec struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MetricsSpec configures the Prometheus metrics endpoint.
type MetricsSpec struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}
