package config

// CLIConfig is the configuration for ghost-cli.
type CLIConfig struct {
	// Server is the default ghostlink server address.
	Server string `yaml:"server"`

	// Output is the default output format: table, json, yaml.
	Output string `yaml:"output"`

	// AdminToken authenticates maintenance commands.
	AdminToken string `yaml:"admin_token"`

	// TimeoutSeconds bounds one API request. Zero uses the client
	// default.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server: "http://127.0.0.1:3000",
		Output: "table",
	}
}
