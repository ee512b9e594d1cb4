// Package buildinfo contains build-time metadata separate from user configuration
package buildinfo

// UnknownValue is reported for metadata that was not injected at build time.
const UnknownValue = "unknown"

// userAgentProduct is the product token of the HTTP User-Agent.
const userAgentProduct = "pokeart-go"

// Context contains build-time metadata that is not user-configurable.
// Values are injected with -ldflags at build time.
type Context struct {
	// Version holds the Git version tag from build
	version string

	// BuildDate is the time when the binary was built
	buildDate string
}

// NewContext creates a build context from linker-injected values.
func NewContext(version, buildDate string) *Context {
	return &Context{version: version, buildDate: buildDate}
}

// Version returns the build version or UnknownValue
func (c *Context) Version() string {
	if c == nil || c.version == "" {
		return UnknownValue
	}
	return c.version
}

// BuildDate returns the build date or UnknownValue
func (c *Context) BuildDate() string {
	if c == nil || c.buildDate == "" {
		return UnknownValue
	}
	return c.buildDate
}

// UserAgent returns the default HTTP User-Agent, pokeart-go/<version>.
func (c *Context) UserAgent() string {
	return userAgentProduct + "/" + c.Version()
}
