package intake

import (
	"github.com/kbukum/voiceingest/util"
	"github.com/kbukum/voiceingest/validation"
)

// IdentityNames are the request keys an identity may arrive under.
type IdentityNames struct {
	Header        string `mapstructure:"header"`
	Field         string `mapstructure:"field"`
	Query         string `mapstructure:"query"`
	FallbackField string `mapstructure:"fallback_field"`
}

const defaultMinBytes = 1000

// Config configures upload intake.
type Config struct {
	// FileFields are the multipart fields searched for the audio, in order.
	FileFields []string `mapstructure:"file_fields"`
	// MinBytes rejects uploads smaller than this as empty. Zero leaves
	// only zero-byte uploads rejected; unset means 1000.
	MinBytes *int64 `mapstructure:"min_bytes" validate:"omitempty,gte=0"`
	// TempDir holds uploaded files. Empty means os.TempDir().
	TempDir string `mapstructure:"temp_dir"`
	// MaxMemory is the in-memory multipart threshold (e.g. "32MB").
	MaxMemory string `mapstructure:"max_memory"`
	// Identity names the request keys carrying the caller identity.
	Identity IdentityNames `mapstructure:"identity"`
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if len(c.FileFields) == 0 {
		c.FileFields = []string{"audio", "file"}
	}
	if c.MinBytes == nil {
		c.MinBytes = util.Ptr[int64](defaultMinBytes)
	}
	if c.MaxMemory == "" {
		c.MaxMemory = "32MB"
	}
	c.Identity.Header = util.Coalesce(c.Identity.Header, "X-User-Id")
	c.Identity.Field = util.Coalesce(c.Identity.Field, "userId")
	c.Identity.Query = util.Coalesce(c.Identity.Query, "userId")
	c.Identity.FallbackField = util.Coalesce(c.Identity.FallbackField, "user_id")
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	v := validation.New("intake")
	v.Merge("", validation.Struct("", c))
	v.Custom(len(c.FileFields) > 0, "file_fields", "must not be empty")
	v.Custom(util.ParseSize(c.MaxMemory, -1) > 0, "max_memory", "must be a positive size")
	return v.Err()
}

func (c *Config) minBytes() int64 {
	return util.Deref(c.MinBytes, defaultMinBytes)
}

func (c *Config) maxMemory() int64 {
	return util.ParseSize(c.MaxMemory, 32<<20)
}
