package config

import (
	"fmt"

	"gopkg.in/ini.v1"
)

// Registry exposes the platform sections of the credentials profile file
// (ini format, one section per platform: [aws], [snowflake], [databricks],
// [azure]).
type Registry interface {
	Platforms() []string
	Section(platform string) (map[string]string, error)
}

type cfgRegistry struct {
	cfg *ini.File
}

func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile file: %w", err)
	}
	return &cfgRegistry{cfg: cfg}, nil
}

func (cr *cfgRegistry) Platforms() []string {
	var platforms []string
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) > 0 {
			platforms = append(platforms, section.Name())
		}
	}
	return platforms
}

func (cr *cfgRegistry) Section(platform string) (map[string]string, error) {
	section, err := cr.cfg.GetSection(platform)
	if err != nil {
		return nil, fmt.Errorf("profile section %q not found", platform)
	}
	values := make(map[string]string, len(section.Keys()))
	for _, key := range section.Keys() {
		values[key.Name()] = key.Value()
	}
	return values, nil
}
