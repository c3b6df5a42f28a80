package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"dao-governance/internal/governance"
	"dao-governance/internal/journal"
)

const eventsCollection = "events"

type storedEvent struct {
	EventID string `bson:"_id"`
	Seq     uint64 `bson:"seq"`
	Kind    string `bson:"kind"`
	Data    []byte `bson:"data"`
}

// Journal stores CBOR-encoded engine events in a MongoDB collection.
type Journal struct {
	client *mongo.Client
	dbName string
	logger *zap.Logger
}

func NewConnection(ctx context.Context, logger *zap.Logger, uri, dbName string) (*Journal, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		logger.Error("db connection failed", zap.String("uri", uri))
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, err
	}

	return &Journal{
		client: client,
		dbName: dbName,
		logger: logger,
	}, nil
}

func (j *Journal) collection() *mongo.Collection {
	return j.client.Database(j.dbName).Collection(eventsCollection)
}

func (j *Journal) Append(ctx context.Context, event governance.Event) error {
	data, err := journal.Encode(event)
	if err != nil {
		return err
	}

	stored := storedEvent{
		EventID: event.ID,
		Seq:     event.Seq,
		Kind:    string(event.Kind),
		Data:    data,
	}

	result, err := j.collection().InsertOne(ctx, stored)
	if err != nil {
		return errors.New("failed to insert the event: " + err.Error())
	}
	if result.InsertedID != event.ID {
		return errors.New("inserted an event with unexpected ID")
	}

	return nil
}

func (j *Journal) ReadAll(ctx context.Context) ([]governance.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})
	cursor, err := j.collection().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.New("failed to find the journaled events: " + err.Error())
	}

	var stored []storedEvent
	if err := cursor.All(ctx, &stored); err != nil {
		return nil, errors.New("failed to read all events from the cursor: " + err.Error())
	}

	events := make([]governance.Event, len(stored))
	for i, doc := range stored {
		event, err := journal.Decode(doc.Data)
		if err != nil {
			return nil, err
		}
		events[i] = event
	}

	j.logger.Debug("journal read", zap.Int("events", len(events)))
	return events, nil
}

func (j *Journal) Close(ctx context.Context) error {
	if err := j.client.Disconnect(ctx); err != nil {
		return errors.New("failed to disconnect the DB: " + err.Error())
	}
	return nil
}
