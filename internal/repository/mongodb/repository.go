package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/dfarm/internal/domain/models"
)

const reportsCollection = "daily_reports"

// ErrNoReports is returned when no snapshot matches a query.
var ErrNoReports = errors.New("no daily reports stored")

// Repository defines the interface for report snapshot storage.
type Repository interface {
	SaveDailyReport(ctx context.Context, report models.DailyReport) error
	RecentReports(ctx context.Context, limit int) ([]models.DailyReport, error)
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewMongoDBRepository connects and pings the server.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: reportsCollection,
	}, nil
}

func (r *MongoDBRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}

// SaveDailyReport stores the snapshot of one day, replacing an earlier run
// for the same day.
func (r *MongoDBRepository) SaveDailyReport(ctx context.Context, report models.DailyReport) error {
	day := truncateDay(report.Date)
	report.Date = day

	_, err := r.collection().ReplaceOne(ctx,
		bson.M{"date": day},
		report,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert daily report %s: %w", day.Format(models.ISODateLayout), err)
	}
	return nil
}

// RecentReports returns up to limit snapshots, most recent day first.
func (r *MongoDBRepository) RecentReports(ctx context.Context, limit int) ([]models.DailyReport, error) {
	if limit <= 0 {
		limit = 7
	}

	cursor, err := r.collection().Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "date", Value: -1}}).SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("failed to query daily reports: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var reports []models.DailyReport
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("failed to decode daily reports: %w", err)
	}
	if len(reports) == 0 {
		return nil, ErrNoReports
	}
	return reports, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
