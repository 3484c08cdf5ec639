package config

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendS3     = "s3"
	BackendRedis  = "redis"

	CompressionNone = "none"
	CompressionGzip = "gzip"
	CompressionZstd = "zstd"

	// Suffix of the slot that keeps undecodable data aside before it is overwritten.
	CorruptSuffix = ".corrupt"

	DefaultConfigPath = "config.yaml"
)
