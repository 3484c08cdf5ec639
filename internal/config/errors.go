package config

const (
	// Storage errors
	ErrOpenSlotFmt         = "Failed to open storage slot: %v"
	ErrInitializeDatabase  = "Failed to initialize database"
	ErrInitializingPosts   = "Error initializing posts"
	ErrPersistingPosts     = "Error persisting posts"
	ErrBackingUpCorruptFmt = "Failed to back up corrupt data to %s"

	// Config errors
	ErrLoadConfig            = "Failed to load config"
	ErrWriteConfigContentFmt = "Failed to write config content: %v"
	ErrCreateTempFileFmt     = "Failed to create temp file: %v"

	// Editor errors
	ErrDecodingMedia = "Error decoding media"
)
