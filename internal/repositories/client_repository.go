package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"consultancy_crm_backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const clientsCollection = "clients"

// ClientRepository defines the interface for client record persistence.
type ClientRepository interface {
	List(ctx context.Context) ([]models.Client, error)
	GetByID(ctx context.Context, id string) (*models.Client, error)
	Insert(ctx context.Context, client *models.Client) error
	Replace(ctx context.Context, id string, client *models.Client) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, criteria models.ClientSearchCriteria) ([]models.Client, error)
	// FindByNameMobile looks up a record whose name matches case-insensitively
	// (exact match, not substring) and whose mobile is string-equal, skipping
	// excludeID when non-empty. Returns ErrNotFound when no such record exists.
	FindByNameMobile(ctx context.Context, name, mobile, excludeID string) (*models.Client, error)
}

type mongoClientRepository struct {
	collection *mongo.Collection
}

// NewClientRepository creates a MongoDB-backed ClientRepository.
func NewClientRepository(db *mongo.Database) ClientRepository {
	return &mongoClientRepository{collection: db.Collection(clientsCollection)}
}

// EnsureClientIndexes creates the indexes the clients collection relies on:
// a unique index on the public id, and a unique case-insensitive index on
// (name, mobile) so two concurrent writers cannot both slip past the
// application-level duplicate check.
func EnsureClientIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(clientsCollection)
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "name", Value: 1}, {Key: "mobile", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetCollation(&options.Collation{Locale: "en", Strength: 2}),
		},
	})
	if err != nil {
		return fmt.Errorf("%w: creating client indexes: %v", ErrDatabaseError, err)
	}
	return nil
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
}

func (r *mongoClientRepository) decodeAll(ctx context.Context, cursor *mongo.Cursor) ([]models.Client, error) {
	clients := []models.Client{}
	if err := cursor.All(ctx, &clients); err != nil {
		return nil, fmt.Errorf("%w: decoding clients: %v", ErrDatabaseError, err)
	}
	return clients, nil
}

// List retrieves all clients ordered by creation time, newest first.
func (r *mongoClientRepository) List(ctx context.Context) ([]models.Client, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, newestFirst())
	if err != nil {
		return nil, fmt.Errorf("%w: listing clients: %v", ErrDatabaseError, err)
	}
	return r.decodeAll(ctx, cursor)
}

// GetByID retrieves a client by its public id.
func (r *mongoClientRepository) GetByID(ctx context.Context, id string) (*models.Client, error) {
	client := &models.Client{}
	err := r.collection.FindOne(ctx, bson.M{"id": id}).Decode(client)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting client by id %s: %v", ErrDatabaseError, id, err)
	}
	return client, nil
}

// Insert stores a new client document.
func (r *mongoClientRepository) Insert(ctx context.Context, client *models.Client) error {
	_, err := r.collection.InsertOne(ctx, client)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: inserting client: %v", ErrDuplicateKey, err)
		}
		return fmt.Errorf("%w: inserting client: %v", ErrDatabaseError, err)
	}
	return nil
}

// Replace overwrites the document identified by id with client.
func (r *mongoClientRepository) Replace(ctx context.Context, id string, client *models.Client) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"id": id}, client)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: replacing client %s: %v", ErrDuplicateKey, id, err)
		}
		return fmt.Errorf("%w: replacing client %s: %v", ErrDatabaseError, id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the document identified by id. Hard delete, no tombstone.
func (r *mongoClientRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("%w: deleting client %s: %v", ErrDatabaseError, id, err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Search composes a conjunctive filter from the present criteria and returns
// matches newest first. Empty criteria return every client.
func (r *mongoClientRepository) Search(ctx context.Context, criteria models.ClientSearchCriteria) ([]models.Client, error) {
	filter := bson.M{}
	if criteria.Name != "" {
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(criteria.Name), Options: "i"}
	}
	if criteria.Mobile != "" {
		filter["mobile"] = primitive.Regex{Pattern: regexp.QuoteMeta(criteria.Mobile), Options: "i"}
	}
	if criteria.Gender != "" {
		filter["gender"] = criteria.Gender
	}
	if criteria.Date != "" {
		filter["$or"] = bson.A{
			bson.M{"dob": criteria.Date},
			bson.M{"dot": criteria.Date},
		}
	}

	cursor, err := r.collection.Find(ctx, filter, newestFirst())
	if err != nil {
		return nil, fmt.Errorf("%w: searching clients: %v", ErrDatabaseError, err)
	}
	return r.decodeAll(ctx, cursor)
}

// FindByNameMobile probes for an existing (name, mobile) pair for the duplicate guard.
func (r *mongoClientRepository) FindByNameMobile(ctx context.Context, name, mobile, excludeID string) (*models.Client, error) {
	filter := bson.M{
		"name":   primitive.Regex{Pattern: "^" + regexp.QuoteMeta(name) + "$", Options: "i"},
		"mobile": mobile,
	}
	if excludeID != "" {
		filter["id"] = bson.M{"$ne": excludeID}
	}

	client := &models.Client{}
	err := r.collection.FindOne(ctx, filter).Decode(client)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: checking for duplicate client: %v", ErrDatabaseError, err)
	}
	return client, nil
}
