package repository

import (
	"context"
	"log"
	"time"

	"main/config"
	"main/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoStore implements SessionStore over the session, event and alert
// collections. Event and alert inserts verify that the referenced
// session row exists first; a missing row surfaces as ErrSessionNotFound
// so the tracker can downgrade instead of erroring.
type MongoStore struct {
	Sessions *SessionRepo
	Events   *EventRepo
	Alerts   *AlertRepo

	database          *mongo.Database
	sessionCollection string
}

func GetMongoStore(client *mongo.Client) *MongoStore {
	cfg := config.LoadDatabaseConfig()
	return &MongoStore{
		Sessions:          GetSessionRepo(client),
		Events:            GetEventRepo(client),
		Alerts:            GetAlertRepo(client),
		database:          client.Database(cfg.DatabaseName),
		sessionCollection: cfg.SessionCollection,
	}
}

// Available probes for the session schema by listing collection names.
// Any probe failure reports the store as unavailable.
func (s *MongoStore) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	names, err := s.database.ListCollectionNames(ctx, bson.M{"name": s.sessionCollection})
	if err != nil {
		log.Printf("Warning: session schema probe failed: %v", err)
		return false
	}
	return len(names) > 0
}

func (s *MongoStore) CreateSession(ctx context.Context, session *model.Session) error {
	return s.Sessions.CreateSession(ctx, session)
}

func (s *MongoStore) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	return s.Sessions.GetSession(ctx, sessionID)
}

func (s *MongoStore) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	return s.Sessions.SessionExists(ctx, sessionID)
}

func (s *MongoStore) FinalizeSession(ctx context.Context, session *model.Session) (int64, error) {
	return s.Sessions.FinalizeSession(ctx, session)
}

func (s *MongoStore) MarkCleanupFailed(ctx context.Context, sessionID string) error {
	return s.Sessions.MarkCleanupFailed(ctx, sessionID)
}

func (s *MongoStore) TouchSession(ctx context.Context, sessionID string, at time.Time) error {
	return s.Sessions.TouchSession(ctx, sessionID, at)
}

func (s *MongoStore) CountActiveSessions(ctx context.Context, userID string) (int, error) {
	return s.Sessions.CountActiveSessions(ctx, userID)
}

func (s *MongoStore) InsertEvent(ctx context.Context, event *model.SessionEvent) error {
	if event == nil {
		return ErrSessionNotFound
	}
	exists, err := s.Sessions.SessionExists(ctx, event.SessionID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrSessionNotFound
	}
	return s.Events.InsertEvent(ctx, event)
}

func (s *MongoStore) InsertAlert(ctx context.Context, alert *model.SecurityAlert) error {
	if alert == nil {
		return ErrSessionNotFound
	}
	exists, err := s.Sessions.SessionExists(ctx, alert.SessionID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrSessionNotFound
	}
	return s.Alerts.InsertAlert(ctx, alert)
}
