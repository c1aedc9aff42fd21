package cli

import (
	"fmt"
	"strings"

	"scrape-client-go/pkg/config"

	"github.com/pelletier/go-toml/v2"
)

// ShowConfig displays the current configuration
func (a *App) ShowConfig() error {
	data, err := toml.Marshal(a.cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	_, err = fmt.Fprintln(a.out, string(data))
	return err
}

// SetConfig sets a configuration value and saves the file.
// Format: section.key=value (e.g., "api.base_url=http://localhost:8000")
func (a *App) SetConfig(setStr string) error {
	parts := strings.SplitN(setStr, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("invalid format: expected 'section.key=value'")
	}

	if err := a.cfg.Set(parts[0], parts[1]); err != nil {
		return err
	}
	return config.Save(a.cfg)
}
