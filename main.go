package GateDB

import (
	"context"
	"log"

	"github.com/nickyhof/GateDB/core"
	"github.com/nickyhof/GateDB/db"
	"github.com/nickyhof/GateDB/ps"
)

type Instance struct {
	Config *core.Config
	Logger *log.Logger
}

func Open(config *core.Config) *Instance {
	return &Instance{
		Config: config,
		Logger: log.Default(),
	}
}

// Load opens an Instance from a configuration document, see ps.LoadConfig.
func Load(ctx context.Context, path string) (*Instance, error) {
	config, err := ps.LoadConfig(ctx, path)
	if err != nil {
		return nil, err
	}
	return Open(config), nil
}

// Engine returns a new, unconnected session for identity.
func (instance *Instance) Engine(identity core.Identity) *db.Engine {
	return db.NewEngine(ps.New(instance.Config), identity, instance.Logger)
}

// Connect returns a session for identity connected to zone.
func (instance *Instance) Connect(ctx context.Context, identity core.Identity, zone string) (*db.Engine, error) {
	engine := instance.Engine(identity)
	if err := engine.Connect(ctx, zone); err != nil {
		return nil, err
	}
	return engine, nil
}
