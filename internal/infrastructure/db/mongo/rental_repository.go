package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/smsrent/rental-system/internal/core/domain"
)

const collectionRentals = "rentals"

// RentalRepository reads and transitions rental documents. Creation happens
// in LedgerRepository, atomically with the funding debit.
type RentalRepository struct {
	col *mongo.Collection
}

func NewRentalRepository(db *mongo.Database) *RentalRepository {
	return &RentalRepository{col: db.Collection(collectionRentals)}
}

// ListByAccount returns the account's rentals newest first.
func (r *RentalRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]*domain.Rental, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.col.Find(ctx, bson.M{"account_id": accountID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rentals []*domain.Rental
	if err := cursor.All(ctx, &rentals); err != nil {
		return nil, err
	}
	return rentals, nil
}

// FindByProviderID retrieves a rental by its upstream activation id. The
// account filter means another account's rental is simply not found.
func (r *RentalRepository) FindByProviderID(ctx context.Context, accountID, providerID string) (*domain.Rental, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"provider_id": providerID, "account_id": accountID}

	var rental domain.Rental
	err := r.col.FindOne(ctx, filter).Decode(&rental)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRentalNotFound
		}
		return nil, err
	}
	return &rental, nil
}

// TransitionStatus moves a rental between states. The from-status in the
// filter makes the write conditional: under concurrent polls only one writer
// matches and the rest observe applied=false.
func (r *RentalRepository) TransitionStatus(ctx context.Context, providerID string, from, to domain.RentalStatus) (bool, error) {
	if !from.CanTransitionTo(to) {
		return false, domain.ErrInvalidTransition
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := r.col.UpdateOne(ctx,
		bson.M{"provider_id": providerID, "status": from},
		bson.M{"$set": bson.M{"status": to, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}

// EnsureIndexes creates necessary indexes on the rentals collection.
func (r *RentalRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "provider_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
