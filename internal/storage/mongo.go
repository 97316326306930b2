package storage

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dlremindme/internal/owner"
	"dlremindme/internal/task"
)

const mongoTimeout = 10 * time.Second

// MongoStorage implements the Storage interface using MongoDB.
// Each owner is one document, so an owner's task list is replaced atomically.
type MongoStorage struct {
	client         *mongo.Client
	database       *mongo.Database
	ownerColl      *mongo.Collection
	sentCollection *mongo.Collection
	// transactions is set when the server is a replica set member or mongos.
	transactions bool
	mu           sync.Mutex
}

// ownerDocument is the stored shape of one owner's task list
type ownerDocument struct {
	ID    string        `bson:"_id"`
	Tasks []task.Record `bson:"tasks"`
}

// NewMongoStorage creates a new MongoDB storage instance
func NewMongoStorage(connectionString, databaseName string) (*MongoStorage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(connectionString))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Test the connection
	err = client.Ping(ctx, nil)
	if err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	database := client.Database(databaseName)

	var hello struct {
		SetName string `bson:"setName"`
		Msg     string `bson:"msg"`
	}
	if err := database.RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to query MongoDB topology: %w", err)
	}

	return &MongoStorage{
		client:         client,
		database:       database,
		ownerColl:      database.Collection("owners"),
		sentCollection: database.Collection("sent_notifications"),
		transactions:   hello.SetName != "" || hello.Msg == "isdbgrid",
	}, nil
}

// Close closes the MongoDB connection
func (ms *MongoStorage) Close(ctx context.Context) error {
	return ms.client.Disconnect(ctx)
}

// Task registry operations
func (ms *MongoStorage) LoadTasks() (owner.Records, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()

	cursor, err := ms.ownerColl.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to find owners: %w", err)
	}
	defer cursor.Close(ctx)

	recs := make(owner.Records)
	for cursor.Next(ctx) {
		var doc ownerDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode owner: %w", err)
		}
		recs[doc.ID] = doc.Tasks
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return recs, nil
}

// SaveTasks upserts one document per owner and removes owners that are no
// longer present. On a replica set or sharded cluster the whole save runs in
// one transaction. A standalone server cannot do that: each owner document
// is still replaced atomically, but a failure partway through leaves earlier
// owners saved and later ones untouched.
func (ms *MongoStorage) SaveTasks(recs owner.Records) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()

	if !ms.transactions {
		return ms.saveTasks(ctx, recs)
	}
	session, err := ms.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, ms.saveTasks(sc, recs)
	})
	return err
}

func (ms *MongoStorage) saveTasks(ctx context.Context, recs owner.Records) error {
	ids := make([]string, 0, len(recs))
	for ownerID, list := range recs {
		if list == nil {
			list = []task.Record{}
		}
		doc := ownerDocument{ID: ownerID, Tasks: list}
		opts := options.Replace().SetUpsert(true)
		if _, err := ms.ownerColl.ReplaceOne(ctx, bson.M{"_id": ownerID}, doc, opts); err != nil {
			return fmt.Errorf("failed to save owner %s: %w", ownerID, err)
		}
		ids = append(ids, ownerID)
	}

	if _, err := ms.ownerColl.DeleteMany(ctx, bson.M{"_id": bson.M{"$nin": ids}}); err != nil {
		return fmt.Errorf("failed to prune owners: %w", err)
	}
	return nil
}

// Sent-reminder journal operations
func (ms *MongoStorage) ListSent() ([]*task.SentRecord, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "sent_at", Value: 1}})
	cursor, err := ms.sentCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find sent notifications: %w", err)
	}
	defer cursor.Close(ctx)

	var list []*task.SentRecord
	for cursor.Next(ctx) {
		var rec task.SentRecord
		if err := cursor.Decode(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode sent notification: %w", err)
		}
		list = append(list, &rec)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return list, nil
}

func (ms *MongoStorage) CreateSent(rec *task.SentRecord) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()

	key := rec.TaskID + ":" + strconv.Itoa(int(rec.Tier))
	update := bson.M{
		"$setOnInsert": bson.M{
			"task_id": rec.TaskID,
			"tier":    int(rec.Tier),
			"sent_at": rec.SentAt,
		},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := ms.sentCollection.UpdateOne(ctx, bson.M{"_id": key}, update, opts); err != nil {
		return fmt.Errorf("failed to record sent notification: %w", err)
	}
	return nil
}
