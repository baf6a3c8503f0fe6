package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"gameswap-api/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoGameRepository implements GameRepository using MongoDB.
type MongoGameRepository struct {
	coll *mongo.Collection
}

// NewMongoGameRepository creates the repository and ensures the owner
// index exists (backs the items-by-user query and gameCount projection).
func NewMongoGameRepository(m *Mongo) *MongoGameRepository {
	coll := m.db.Collection(gamesCollection)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "owner_id", Value: 1}},
	}
	if _, err := coll.Indexes().CreateOne(ctx, indexModel); err != nil {
		log.Printf("[MongoDB] Warning: failed to create owner index: %v", err)
	}

	return &MongoGameRepository{coll: coll}
}

// Create inserts a new game.
func (r *MongoGameRepository) Create(ctx context.Context, game *model.Game) error {
	if _, err := r.coll.InsertOne(ctx, game); err != nil {
		return fmt.Errorf("failed to insert game: %w", err)
	}
	return nil
}

// GetByID returns the game or ErrNotFound.
func (r *MongoGameRepository) GetByID(ctx context.Context, id string) (*model.Game, error) {
	var game model.Game
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&game)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return &game, nil
}

// List returns all games ordered by creation time.
func (r *MongoGameRepository) List(ctx context.Context) ([]*model.Game, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer cursor.Close(ctx)

	games := []*model.Game{}
	if err := cursor.All(ctx, &games); err != nil {
		return nil, fmt.Errorf("failed to decode games: %w", err)
	}
	return games, nil
}

// Update applies the non-nil fields of upd and returns the updated game.
func (r *MongoGameRepository) Update(ctx context.Context, id string, upd model.GameUpdate) (*model.Game, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Publisher != nil {
		set["publisher"] = *upd.Publisher
	}
	if upd.YearPublished != nil {
		set["year_published"] = *upd.YearPublished
	}
	if upd.GamingSystem != nil {
		set["gaming_system"] = *upd.GamingSystem
	}
	if upd.Condition != nil {
		set["condition"] = *upd.Condition
	}
	if upd.NumberOfPreviousOwners != nil {
		set["number_of_previous_owners"] = *upd.NumberOfPreviousOwners
	}
	if upd.SetOwner {
		if upd.OwnerID != nil {
			set["owner_id"] = *upd.OwnerID
		} else {
			set["owner_id"] = nil
		}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var game model.Game
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&game)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}
	return &game, nil
}

// Delete removes the game.
func (r *MongoGameRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByOwner returns all games currently owned by userID.
func (r *MongoGameRepository) ListByOwner(ctx context.Context, userID string) ([]*model.Game, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"owner_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list games by owner: %w", err)
	}
	defer cursor.Close(ctx)

	games := []*model.Game{}
	if err := cursor.All(ctx, &games); err != nil {
		return nil, fmt.Errorf("failed to decode games: %w", err)
	}
	return games, nil
}

// CountByOwner returns the number of games currently owned by userID.
func (r *MongoGameRepository) CountByOwner(ctx context.Context, userID string) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"owner_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to count games: %w", err)
	}
	return count, nil
}

// DeleteByOwner removes every game owned by userID.
func (r *MongoGameRepository) DeleteByOwner(ctx context.Context, userID string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"owner_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete games by owner: %w", err)
	}
	return res.DeletedCount, nil
}
