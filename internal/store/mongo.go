package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/newswatcher/newswatcher/backend/news-worker/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoGateway implements Gateway on the shared newswatcher collection.
// Pool and subscriber documents are told apart by their "type" field.
type MongoGateway struct {
	col *mongo.Collection
}

func NewMongoGateway(col *mongo.Collection) *MongoGateway {
	return &MongoGateway{col: col}
}

// EnsurePool creates the global story document when it is missing.
func (g *MongoGateway) EnsurePool(ctx context.Context) error {
	filter := bson.M{"type": models.GlobalStoryType}
	upd := bson.M{"$setOnInsert": bson.M{"type": models.GlobalStoryType, "newsStories": bson.A{}}}
	if _, err := g.col.UpdateOne(ctx, filter, upd, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("ensure pool: %w", err)
	}
	return nil
}

func (g *MongoGateway) LoadPool(ctx context.Context) (*models.StoryPool, error) {
	var p models.StoryPool
	if err := g.col.FindOne(ctx, bson.M{"type": models.GlobalStoryType}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load pool: %w", err)
	}
	return &p, nil
}

func (g *MongoGateway) ReplacePoolStories(ctx context.Context, stories []models.Story) (*models.StoryPool, error) {
	if stories == nil {
		stories = []models.Story{}
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.StoryPool
	err := g.col.FindOneAndUpdate(ctx,
		bson.M{"type": models.GlobalStoryType},
		bson.M{"$set": bson.M{"newsStories": stories}},
		opts,
	).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("replace pool stories: %w", err)
	}
	return &p, nil
}

func (g *MongoGateway) LoadSubscriber(ctx context.Context, id string) (*models.Subscriber, error) {
	var s models.Subscriber
	if err := g.col.FindOne(ctx, subscriberFilter(id)).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load subscriber %s: %w", id, err)
	}
	return &s, nil
}

func (g *MongoGateway) UpdateFilters(ctx context.Context, id string, filters []models.Filter) (*models.Subscriber, error) {
	if filters == nil {
		filters = []models.Filter{}
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var s models.Subscriber
	err := g.col.FindOneAndUpdate(ctx,
		subscriberFilter(id),
		bson.M{"$set": bson.M{"newsFilters": filters}},
		opts,
	).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update filters %s: %w", id, err)
	}
	return &s, nil
}

func (g *MongoGateway) Subscribers(ctx context.Context) (SubscriberCursor, error) {
	cur, err := g.col.Find(ctx, bson.M{"type": models.UserType})
	if err != nil {
		return nil, fmt.Errorf("open subscriber cursor: %w", err)
	}
	return &mongoCursor{cur: cur}, nil
}

// subscriberFilter matches on ObjectID when the id is hex, as the web tier
// inserts users with generated ObjectIDs.
func subscriberFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": oid, "type": models.UserType}
	}
	return bson.M{"_id": id, "type": models.UserType}
}

type mongoCursor struct {
	cur *mongo.Cursor
}

func (c *mongoCursor) Next(ctx context.Context) bool { return c.cur.Next(ctx) }

func (c *mongoCursor) Decode(s *models.Subscriber) error { return c.cur.Decode(s) }

func (c *mongoCursor) Err() error { return c.cur.Err() }

func (c *mongoCursor) Close(ctx context.Context) error { return c.cur.Close(ctx) }
