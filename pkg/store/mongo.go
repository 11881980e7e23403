package store

import (
	"context"
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/mveldt/craftplan/pkg/errors"
	"github.com/mveldt/craftplan/pkg/plan"
)

// MongoConfig holds mongo connection settings.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// MongoStore persists plans in a mongo collection, for API deployments
// where several instances share one plan set.
//
// Plans are stored as JSON blobs alongside the summary fields, so listing
// never has to decode whole trees and the document schema stays decoupled
// from the plan types.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// planDoc is the mongo document shape.
type planDoc struct {
	ID         string    `bson:"_id"`
	Name       string    `bson:"name"`
	DataCenter string    `bson:"data_center"`
	World      string    `bson:"world"`
	Targets    int       `bson:"targets"`
	UpdatedAt  time.Time `bson:"updated_at"`
	Data       []byte    `bson:"data"`
}

// NewMongoStore connects to mongo and pings it to fail fast on a bad URI.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "connecting to mongo")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "pinging mongo")
	}

	database := cfg.Database
	if database == "" {
		database = "craftplan"
	}
	collection := cfg.Collection
	if collection == "" {
		collection = "plans"
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

// Get loads a plan by id.
func (s *MongoStore) Get(ctx context.Context, id string) (*plan.CraftingPlan, error) {
	var doc planDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodePlanNotFound, "plan %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "loading plan %s", id)
	}

	var p plan.CraftingPlan
	if err := json.Unmarshal(doc.Data, &p); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreCorrupt, err, "decoding plan %s", id)
	}
	restoreParents(&p)
	return &p, nil
}

// Put saves a plan, replacing any previous version.
func (s *MongoStore) Put(ctx context.Context, p *plan.CraftingPlan) error {
	if p == nil || p.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "plan must have an id")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encoding plan %s", p.ID)
	}

	doc := planDoc{
		ID:         p.ID,
		Name:       p.Name,
		DataCenter: p.DataCenter,
		World:      p.World,
		Targets:    len(p.Roots),
		UpdatedAt:  p.UpdatedAt,
		Data:       data,
	}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "saving plan %s", p.ID)
	}
	return nil
}

// Delete removes a plan.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "deleting plan %s", id)
	}
	return nil
}

// List returns plan summaries, most recently updated first. The blob field
// is projected away so listing stays cheap.
func (s *MongoStore) List(ctx context.Context) ([]Summary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetProjection(bson.M{"data": 0})
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "listing plans")
	}
	defer cursor.Close(ctx)

	var summaries []Summary
	for cursor.Next(ctx) {
		var doc planDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStoreCorrupt, err, "decoding plan summary")
		}
		summaries = append(summaries, Summary{
			ID:         doc.ID,
			Name:       doc.Name,
			DataCenter: doc.DataCenter,
			World:      doc.World,
			Targets:    doc.Targets,
			UpdatedAt:  doc.UpdatedAt,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "iterating plans")
	}
	return summaries, nil
}

// Close disconnects from mongo.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
