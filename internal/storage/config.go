package storage

// MinIOConfig holds MinIO connection configuration for the snapshot archive.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// Enabled reports whether an archive endpoint is configured.
func (c MinIOConfig) Enabled() bool {
	return c.Endpoint != ""
}
