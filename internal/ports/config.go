package ports

// GameConfigPort reads the game's base XML configuration files.
type GameConfigPort interface {
	// ListConfigs returns base document names mapped to their paths.
	ListConfigs(dir string) (map[string]string, error)
	ReadConfig(path string) ([]byte, error)
}
