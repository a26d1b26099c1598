package repository

import (
	"context"
	"fmt"
	"time"

	"main/config"
	"main/model"
	"main/utils"

	"go.mongodb.org/mongo-driver/mongo"
)

type EventRepo struct {
	MongoCollection *mongo.Collection
}

func GetEventRepo(client *mongo.Client) *EventRepo {
	cfg := config.LoadDatabaseConfig()
	return &EventRepo{
		MongoCollection: client.Database(cfg.DatabaseName).Collection(cfg.EventCollection),
	}
}

func (r *EventRepo) InsertEvent(ctx context.Context, event *model.SessionEvent) error {
	timer := utils.TrackDBOperation("insert", "session_events")
	defer timer.ObserveDuration()

	if event == nil {
		utils.TrackError("database", "nil_event")
		return fmt.Errorf("event cannot be nil")
	}

	if event.SessionID == "" || event.Type == "" {
		utils.TrackError("database", "invalid_event_data")
		return fmt.Errorf("invalid event data: missing required fields")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := r.MongoCollection.InsertOne(ctx, event); err != nil {
		utils.TrackError("database", "event_insert_failed")
		return fmt.Errorf("failed to insert event into database: %w", err)
	}

	return nil
}
