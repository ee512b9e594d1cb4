// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// DefaultEndpoint is the public PokeAPI pokemon resource.
const DefaultEndpoint = "https://pokeapi.co/api/v2/pokemon"

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("api.endpoint", DefaultEndpoint)
	viper.SetDefault("api.timeout", 30*time.Second)
	viper.SetDefault("api.useragent", "")
	viper.SetDefault("api.cachettl", time.Duration(0))

	viper.SetDefault("output.dir", "storage")
	viper.SetDefault("output.extension", "png")
	viper.SetDefault("output.recursive", false)

	viper.SetDefault("log.level", "warn")
	viper.SetDefault("log.file", "")

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.dsn", "")

	viper.SetDefault("metrics.file", "")
}
