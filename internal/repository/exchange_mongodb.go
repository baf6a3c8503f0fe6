package repository

import (
	"context"
	"fmt"
	"time"

	"gameswap-api/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoExchangeRepository implements ExchangeRepository using MongoDB.
// The pending->terminal transitions are conditional updates keyed on the
// current status, so two racing callers can never both win.
type MongoExchangeRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
	games  *mongo.Collection
}

// NewMongoExchangeRepository creates the repository. It keeps a handle on
// the games collection because the ownership swap and the status
// transition commit in one session.
func NewMongoExchangeRepository(m *Mongo) *MongoExchangeRepository {
	return &MongoExchangeRepository{
		client: m.client,
		coll:   m.db.Collection(exchangesCollection),
		games:  m.db.Collection(gamesCollection),
	}
}

// Create inserts a new exchange.
func (r *MongoExchangeRepository) Create(ctx context.Context, ex *model.Exchange) error {
	if _, err := r.coll.InsertOne(ctx, ex); err != nil {
		return fmt.Errorf("failed to insert exchange: %w", err)
	}
	return nil
}

// GetByID returns the exchange or ErrNotFound.
func (r *MongoExchangeRepository) GetByID(ctx context.Context, id string) (*model.Exchange, error) {
	var ex model.Exchange
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&ex)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get exchange: %w", err)
	}
	return &ex, nil
}

// List returns all exchanges ordered by creation time.
func (r *MongoExchangeRepository) List(ctx context.Context) ([]*model.Exchange, error) {
	return r.find(ctx, bson.M{})
}

// ListForUser returns exchanges where userID is initiator or target.
func (r *MongoExchangeRepository) ListForUser(ctx context.Context, userID string) ([]*model.Exchange, error) {
	filter := bson.M{"$or": []bson.M{
		{"initiating_user_id": userID},
		{"target_user_id": userID},
	}}
	return r.find(ctx, filter)
}

func (r *MongoExchangeRepository) find(ctx context.Context, filter bson.M) ([]*model.Exchange, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchanges: %w", err)
	}
	defer cursor.Close(ctx)

	exchanges := []*model.Exchange{}
	if err := cursor.All(ctx, &exchanges); err != nil {
		return nil, fmt.Errorf("failed to decode exchanges: %w", err)
	}
	return exchanges, nil
}

// CompleteSwap flips the exchange from pending to completed and reassigns
// both game owners inside a single transaction. The status flip is the
// compare-and-swap: only the caller that matches status=pending proceeds
// to the ownership writes, so the swap is observed all-or-nothing.
func (r *MongoExchangeRepository) CompleteSwap(ctx context.Context, id string, now time.Time) (*model.Exchange, error) {
	session, err := r.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		ex, err := r.transition(sc, id, bson.M{
			"status":       model.StatusCompleted,
			"completed_at": now,
			"updated_at":   now,
		})
		if err != nil {
			return nil, err
		}

		swap := []struct {
			gameID   string
			newOwner string
		}{
			{ex.GameOfferedID, ex.TargetUserID},
			{ex.GameRequestedID, ex.InitiatingUserID},
		}
		for _, s := range swap {
			_, err := r.games.UpdateOne(sc,
				bson.M{"_id": s.gameID},
				bson.M{"$set": bson.M{"owner_id": s.newOwner, "updated_at": now}},
			)
			if err != nil {
				return nil, fmt.Errorf("failed to reassign game %s: %w", s.gameID, err)
			}
		}
		return ex, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*model.Exchange), nil
}

// RejectPending flips the exchange from pending to rejected. No ownership
// change, so no transaction is needed beyond the conditional update.
func (r *MongoExchangeRepository) RejectPending(ctx context.Context, id string, now time.Time) (*model.Exchange, error) {
	return r.transition(ctx, id, bson.M{
		"status":     model.StatusRejected,
		"updated_at": now,
	})
}

// transition performs the conditional pending->X update and disambiguates
// a miss into ErrNotFound vs ErrNotPending.
func (r *MongoExchangeRepository) transition(ctx context.Context, id string, set bson.M) (*model.Exchange, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var ex model.Exchange
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": model.StatusPending},
		bson.M{"$set": set},
		opts,
	).Decode(&ex)
	if err == mongo.ErrNoDocuments {
		if cerr := r.coll.FindOne(ctx, bson.M{"_id": id}).Err(); cerr == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, ErrNotPending
	}
	if err != nil {
		return nil, fmt.Errorf("failed to transition exchange: %w", err)
	}
	return &ex, nil
}

// DeleteForUser hard-deletes every exchange referencing userID.
func (r *MongoExchangeRepository) DeleteForUser(ctx context.Context, userID string) (int64, error) {
	filter := bson.M{"$or": []bson.M{
		{"initiating_user_id": userID},
		{"target_user_id": userID},
	}}
	res, err := r.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete exchanges for user: %w", err)
	}
	return res.DeletedCount, nil
}
