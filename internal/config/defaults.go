package config

const (
	defaultCacheMode   = "none"
	defaultCacheDir    = "~/.cache/talisman/bundle"
	defaultCacheMaxMiB = 2048
	defaultOutputDir   = "./out"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"

	// defaultPatchCDN is the base URL template for the patch CDN; the patch
	// version is appended as a path segment.
	defaultPatchCDN = "https://patch.poecdn.com/patch"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Cache: Cache{
			Mode:   defaultCacheMode,
			Dir:    defaultCacheDir,
			MaxMiB: defaultCacheMaxMiB,
		},
		Output: Output{
			Dir: defaultOutputDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// PatchCDNURL returns the bundle base URL for a patch version on the CDN.
func PatchCDNURL(patch string) string {
	return defaultPatchCDN + "/" + patch + "/"
}
