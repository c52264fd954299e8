package ps

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/nickyhof/GateDB/core"
)

// LoadConfig reads a JSON configuration document from a local path, a
// file://, http(s):// or s3://bucket/key URL. ${VAR} references in zone
// passwords are expanded from the environment.
func LoadConfig(ctx context.Context, path string) (*core.Config, error) {
	return LoadConfigWith(ctx, path, S3OptionsFromEnv())
}

// LoadConfigWith is LoadConfig with explicit S3 options.
func LoadConfigWith(ctx context.Context, path string, options *S3Options) (*core.Config, error) {
	reader, err := openReader(ctx, path, options)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	defer reader.Close()

	var config core.Config
	if err := json.NewDecoder(reader).Decode(&config); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrConfiguration, path, err)
	}

	for name, zone := range config.Connections {
		zone.Password = os.ExpandEnv(zone.Password)
		config.Connections[name] = zone
	}

	return &config, nil
}
