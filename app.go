package main

import (
	"context"
	"fmt"
	"log"

	"krishimitra/rotation"
	"krishimitra/soil"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type App struct {
	cfg       Config
	mongo     *mongo.Client // nil with STORE=memory
	rotations *rotation.Service
	soil      *soil.Client
}

func newApp(ctx context.Context, cfg Config) (*App, error) {
	app := &App{
		cfg:  cfg,
		soil: soil.NewClient(cfg.SoilGridsURL, cfg.UpstreamTimeout),
	}

	switch cfg.Store {
	case "memory":
		log.Println("using in-memory store; data is lost on restart")
		app.rotations = rotation.NewService(rotation.NewMemoryStore())
	case "mongo", "":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, err
		}
		if err := client.Ping(ctx, nil); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		store := rotation.NewMongoStore(client.Database(cfg.MongoDB))
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		app.mongo = client
		app.rotations = rotation.NewService(store)
	default:
		return nil, fmt.Errorf("unknown STORE %q", cfg.Store)
	}

	return app, nil
}

func (a *App) close(ctx context.Context) {
	if a.mongo != nil {
		_ = a.mongo.Disconnect(ctx)
	}
}
