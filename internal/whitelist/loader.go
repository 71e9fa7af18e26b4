package whitelist

import (
	"errors"
	"fmt"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/viper"

	"whatsapp-relay/internal/config"
)

// Load builds the Registry from the inline participants plus, when set, the
// external whitelist file. Any failure here is meant to abort startup.
func Load(cfg config.WhitelistConfig) (*Registry, error) {
	entries := append([]config.ParticipantConfig(nil), cfg.Participants...)

	if cfg.File != "" {
		fromFile, err := readFile(cfg.File)
		if err != nil {
			return nil, err
		}
		entries = append(entries, fromFile...)
	}

	return NewRegistry(lo.Map(entries, func(e config.ParticipantConfig, _ int) Participant {
		return Participant{MobileNumber: e.MobileNumber, DisplayName: e.DisplayName}
	}))
}

// readFile accepts YAML or JSON, chosen by extension, with a top level
// "participants" list.
func readFile(path string) ([]config.ParticipantConfig, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("whitelist file %s not found", path)
		}
		return nil, fmt.Errorf("failed to stat whitelist file %s: %w", path, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to parse whitelist file %s: %w", path, err)
	}

	if !v.IsSet("participants") {
		return nil, fmt.Errorf("whitelist file %s has no participants key", path)
	}

	var entries []config.ParticipantConfig
	if err := v.UnmarshalKey("participants", &entries); err != nil {
		return nil, fmt.Errorf("failed to decode whitelist file %s: %w", path, err)
	}
	return entries, nil
}
