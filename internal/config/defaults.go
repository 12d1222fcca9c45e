package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceDemo,
		Fetch: FetchConfig{
			TimeoutSeconds: 10,
			DemoFallback:   true,
		},
		Bridge: BridgeConfig{
			Port: 19192,
		},
		CDP: CDPConfig{
			URL: "ws://127.0.0.1:9222",
		},
		View: ViewConfig{
			Sort:          "lastActive",
			GroupByWindow: true,
		},
		Logging: LoggingConfig{
			Dir: "~/.local/share/tabmon",
		},
	}
}
