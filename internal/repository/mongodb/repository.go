package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/factoryboard/internal/domain/models"
)

const (
	snapshotsCollection = "metric_snapshots"
	uploadsCollection   = "uploads"
)

// Repository defines the interface for the dataset archive.
type Repository interface {
	SaveSnapshot(ctx context.Context, snapshot models.MetricsSnapshot) error
	SaveUpload(ctx context.Context, upload models.UploadRecord) error
	RecentSnapshots(ctx context.Context, limit int) ([]models.MetricsSnapshot, error)
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client: client,
		dbName: dbName,
	}, nil
}

// SaveSnapshot stores one metrics snapshot.
func (r *MongoDBRepository) SaveSnapshot(ctx context.Context, snapshot models.MetricsSnapshot) error {
	collection := r.client.Database(r.dbName).Collection(snapshotsCollection)
	if _, err := collection.InsertOne(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to insert metrics snapshot: %w", err)
	}
	return nil
}

// SaveUpload stores the trace of an accepted upload, including the parsed dataset.
func (r *MongoDBRepository) SaveUpload(ctx context.Context, upload models.UploadRecord) error {
	collection := r.client.Database(r.dbName).Collection(uploadsCollection)
	if _, err := collection.InsertOne(ctx, upload); err != nil {
		return fmt.Errorf("failed to insert upload %s: %w", upload.ID, err)
	}
	return nil
}

// RecentSnapshots returns up to limit snapshots, newest first.
func (r *MongoDBRepository) RecentSnapshots(ctx context.Context, limit int) ([]models.MetricsSnapshot, error) {
	collection := r.client.Database(r.dbName).Collection(snapshotsCollection)
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics snapshots: %w", err)
	}
	defer cursor.Close(ctx)

	snapshots := []models.MetricsSnapshot{}
	if err := cursor.All(ctx, &snapshots); err != nil {
		return nil, fmt.Errorf("failed to decode metrics snapshots: %w", err)
	}
	return snapshots, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
