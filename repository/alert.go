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

type AlertRepo struct {
	MongoCollection *mongo.Collection
}

func GetAlertRepo(client *mongo.Client) *AlertRepo {
	cfg := config.LoadDatabaseConfig()
	return &AlertRepo{
		MongoCollection: client.Database(cfg.DatabaseName).Collection(cfg.AlertCollection),
	}
}

func (r *AlertRepo) InsertAlert(ctx context.Context, alert *model.SecurityAlert) error {
	timer := utils.TrackDBOperation("insert", "security_alerts")
	defer timer.ObserveDuration()

	if alert == nil {
		utils.TrackError("database", "nil_alert")
		return fmt.Errorf("alert cannot be nil")
	}

	if alert.SessionID == "" || alert.Type == "" {
		utils.TrackError("database", "invalid_alert_data")
		return fmt.Errorf("invalid alert data: missing required fields")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := r.MongoCollection.InsertOne(ctx, alert); err != nil {
		utils.TrackError("database", "alert_insert_failed")
		return fmt.Errorf("failed to insert alert into database: %w", err)
	}

	return nil
}
