package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/herdsman/internal/domain/models"
)

// ErrNotFound indicates the requested document does not exist.
var ErrNotFound = errors.New("not found")

// Repository defines the persistence operations used by the herd services.
// Event reads always return histories ascending by occurrence time.
type Repository interface {
	SaveEvent(ctx context.Context, e models.ReproEvent) error
	EventsForAnimal(ctx context.Context, animalID string) ([]models.ReproEvent, error)
	EventsForHerd(ctx context.Context, period models.Period) (map[string][]models.ReproEvent, error)

	SaveSnapshot(ctx context.Context, snap models.HerdKpiSnapshot) error
	SnapshotsBetween(ctx context.Context, from, to time.Time) ([]models.HerdKpiSnapshot, error)

	UpsertAlertStatus(ctx context.Context, alertID string, status models.AlertStatus) error
	AlertStatuses(ctx context.Context) (map[string]models.AlertStatus, error)

	SaveAnimal(ctx context.Context, a models.Animal) error
	GetAnimal(ctx context.Context, id string) (models.Animal, error)
	ListAnimals(ctx context.Context) ([]models.Animal, error)
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string
}

const (
	eventsCollection    = "repro_events"
	snapshotsCollection = "kpi_snapshots"
	alertsCollection    = "alert_statuses"
	animalsCollection   = "animals"
)

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

	return &MongoDBRepository{client: client, dbName: dbName}, nil
}

func (r *MongoDBRepository) collection(name string) *mongo.Collection {
	return r.client.Database(r.dbName).Collection(name)
}

// SaveEvent appends one immutable reproduction event.
func (r *MongoDBRepository) SaveEvent(ctx context.Context, e models.ReproEvent) error {
	if _, err := r.collection(eventsCollection).InsertOne(ctx, e); err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// EventsForAnimal returns the animal's full history ascending by occurrence.
func (r *MongoDBRepository) EventsForAnimal(ctx context.Context, animalID string) ([]models.ReproEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "occurred_at", Value: 1}})
	cursor, err := r.collection(eventsCollection).Find(ctx, bson.M{"animal_id": animalID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load events for animal %s: %w", animalID, err)
	}

	var events []models.ReproEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events for animal %s: %w", animalID, err)
	}
	return events, nil
}

// EventsForHerd returns, for every animal with at least one event inside the
// period, its full history up to the period end. The KPI aggregator needs
// the pre-period context (e.g. the previous calving) to classify in-period
// transitions, so histories are not clipped at the period start.
func (r *MongoDBRepository) EventsForHerd(ctx context.Context, period models.Period) (map[string][]models.ReproEvent, error) {
	inPeriod := bson.M{"occurred_at": bson.M{"$gte": period.Start, "$lt": period.End}}

	ids, err := r.collection(eventsCollection).Distinct(ctx, "animal_id", inPeriod)
	if err != nil {
		return nil, fmt.Errorf("failed to list active animals: %w", err)
	}
	if len(ids) == 0 {
		return map[string][]models.ReproEvent{}, nil
	}

	filter := bson.M{
		"animal_id":   bson.M{"$in": ids},
		"occurred_at": bson.M{"$lt": period.End},
	}
	opts := options.Find().SetSort(bson.D{{Key: "occurred_at", Value: 1}})

	cursor, err := r.collection(eventsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load herd events: %w", err)
	}

	var events []models.ReproEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode herd events: %w", err)
	}

	herd := make(map[string][]models.ReproEvent, len(ids))
	for _, e := range events {
		herd[e.AnimalID] = append(herd[e.AnimalID], e)
	}
	return herd, nil
}

// SaveSnapshot stores the snapshot, replacing any earlier computation for
// the same period start.
func (r *MongoDBRepository) SaveSnapshot(ctx context.Context, snap models.HerdKpiSnapshot) error {
	filter := bson.M{"period.start": snap.Period.Start}
	opts := options.Replace().SetUpsert(true)

	if _, err := r.collection(snapshotsCollection).ReplaceOne(ctx, filter, snap, opts); err != nil {
		return fmt.Errorf("failed to upsert kpi snapshot: %w", err)
	}
	return nil
}

// SnapshotsBetween returns stored snapshots whose period start falls in
// [from, to), ascending by period start.
func (r *MongoDBRepository) SnapshotsBetween(ctx context.Context, from, to time.Time) ([]models.HerdKpiSnapshot, error) {
	filter := bson.M{"period.start": bson.M{"$gte": from, "$lt": to}}
	opts := options.Find().SetSort(bson.D{{Key: "period.start", Value: 1}})

	cursor, err := r.collection(snapshotsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load kpi snapshots: %w", err)
	}

	var snaps []models.HerdKpiSnapshot
	if err := cursor.All(ctx, &snaps); err != nil {
		return nil, fmt.Errorf("failed to decode kpi snapshots: %w", err)
	}
	return snaps, nil
}

// UpsertAlertStatus records the human-managed lifecycle state for an alert.
func (r *MongoDBRepository) UpsertAlertStatus(ctx context.Context, alertID string, status models.AlertStatus) error {
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}}
	opts := options.Update().SetUpsert(true)

	if _, err := r.collection(alertsCollection).UpdateByID(ctx, alertID, update, opts); err != nil {
		return fmt.Errorf("failed to upsert alert status: %w", err)
	}
	return nil
}

// AlertStatuses returns the stored lifecycle state keyed by alert id.
func (r *MongoDBRepository) AlertStatuses(ctx context.Context) (map[string]models.AlertStatus, error) {
	cursor, err := r.collection(alertsCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to load alert statuses: %w", err)
	}

	var docs []struct {
		ID     string             `bson:"_id"`
		Status models.AlertStatus `bson:"status"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode alert statuses: %w", err)
	}

	statuses := make(map[string]models.AlertStatus, len(docs))
	for _, d := range docs {
		statuses[d.ID] = d.Status
	}
	return statuses, nil
}

// SaveAnimal upserts a herd registry entry.
func (r *MongoDBRepository) SaveAnimal(ctx context.Context, a models.Animal) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection(animalsCollection).ReplaceOne(ctx, bson.M{"_id": a.ID}, a, opts); err != nil {
		return fmt.Errorf("failed to upsert animal %s: %w", a.ID, err)
	}
	return nil
}

// GetAnimal fetches a registry entry by id.
func (r *MongoDBRepository) GetAnimal(ctx context.Context, id string) (models.Animal, error) {
	var a models.Animal
	err := r.collection(animalsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Animal{}, ErrNotFound
	}
	if err != nil {
		return models.Animal{}, fmt.Errorf("failed to load animal %s: %w", id, err)
	}
	return a, nil
}

// ListAnimals returns every registry entry.
func (r *MongoDBRepository) ListAnimals(ctx context.Context) ([]models.Animal, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection(animalsCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list animals: %w", err)
	}

	var animals []models.Animal
	if err := cursor.All(ctx, &animals); err != nil {
		return nil, fmt.Errorf("failed to decode animals: %w", err)
	}
	return animals, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
