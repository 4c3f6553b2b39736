package adapters

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"modlet-tools/internal/ports"
)

// GameConfigAdapter reads the game's base XML configuration files.
type GameConfigAdapter struct{}

func NewGameConfigAdapter() GameConfigAdapter {
	return GameConfigAdapter{}
}

func (a GameConfigAdapter) ListConfigs(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read game config directory").
			WithCause(err)
	}
	configs := map[string]string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(name), ".xml") {
			continue
		}
		configs[name] = filepath.Join(dir, name)
	}
	return configs, nil
}

func (a GameConfigAdapter) ReadConfig(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read base config " + path).
			WithCause(err)
	}
	return data, nil
}

var _ ports.GameConfigPort = GameConfigAdapter{}
