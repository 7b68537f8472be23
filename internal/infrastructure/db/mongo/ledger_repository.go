package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/smsrent/rental-system/internal/api/metrics"
	"github.com/smsrent/rental-system/internal/core/domain"
	"github.com/smsrent/rental-system/internal/core/ports"
)

const collectionTransactions = "transactions"

// LedgerRepository is the single writer of account balances. Every mutation
// runs as one multi-document transaction: balance write, ledger entry, and
// (for rental debits) the rental document itself commit or roll back together.
type LedgerRepository struct {
	client       *mongo.Client
	accounts     *mongo.Collection
	transactions *mongo.Collection
	rentals      *mongo.Collection
}

func NewLedgerRepository(client *mongo.Client, db *mongo.Database) *LedgerRepository {
	return &LedgerRepository{
		client:       client,
		accounts:     db.Collection(collectionAccounts),
		transactions: db.Collection(collectionTransactions),
		rentals:      db.Collection(collectionRentals),
	}
}

// ApplyDelta applies one signed balance change. The sufficient-balance check
// for debits runs inside the transaction against the freshly read balance, so
// a concurrent spend cannot overdraw the account; the guarded balance write
// turns a lost race into ErrBalanceConflict instead of a silent overwrite.
func (r *LedgerRepository) ApplyDelta(ctx context.Context, in ports.ApplyDeltaInput) (*domain.Transaction, error) {
	if !in.Kind.SignValid(in.Delta) {
		return nil, domain.ErrInvalidDelta
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	session, err := r.client.StartSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var account domain.Account
		if err := r.accounts.FindOne(sc, bson.M{"_id": in.AccountID}).Decode(&account); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, domain.ErrAccountNotFound
			}
			return nil, err
		}

		before := account.Credits
		after := before + in.Delta
		if in.Kind == domain.KindDebit && after < 0 {
			return nil, &domain.InsufficientBalanceError{
				Balance:   before,
				Required:  -in.Delta,
				Shortfall: -after,
			}
		}

		now := time.Now().UTC()
		update, err := r.accounts.UpdateOne(sc,
			bson.M{"_id": in.AccountID, "credits": before},
			bson.M{"$set": bson.M{"credits": after, "updated_at": now}},
		)
		if err != nil {
			return nil, err
		}
		if update.MatchedCount == 0 {
			return nil, domain.ErrBalanceConflict
		}

		amount := in.Delta
		if amount < 0 {
			amount = -amount
		}
		tx := &domain.Transaction{
			ID:            primitive.NewObjectID().Hex(),
			AccountID:     in.AccountID,
			Kind:          in.Kind,
			Amount:        amount,
			BalanceBefore: before,
			BalanceAfter:  after,
			Description:   in.Description,
			Meta:          in.Meta,
			CreatedAt:     now,
		}

		if in.Rental != nil {
			rental := *in.Rental
			rental.ID = primitive.NewObjectID().Hex()
			rental.TransactionID = tx.ID
			tx.RentalID = rental.ProviderID
			if _, err := r.rentals.InsertOne(sc, &rental); err != nil {
				return nil, err
			}
		}

		if _, err := r.transactions.InsertOne(sc, tx); err != nil {
			return nil, err
		}
		return tx, nil
	})
	if err != nil {
		return nil, err
	}

	tx := result.(*domain.Transaction)
	metrics.LedgerTransactionsTotal.WithLabelValues(string(tx.Kind)).Inc()
	return tx, nil
}

// ListTransactions returns ledger entries newest first, optionally filtered
// to one account.
func (r *LedgerRepository) ListTransactions(ctx context.Context, accountID string, limit int) ([]*domain.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if accountID != "" {
		filter["account_id"] = accountID
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.transactions.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var txs []*domain.Transaction
	if err := cursor.All(ctx, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// Stats aggregates the admin dashboard figures: account counts, credits in
// circulation, and ledger activity since the given time.
func (r *LedgerRepository) Stats(ctx context.Context, since time.Time) (*ports.AdminStats, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"total":   bson.M{"$sum": 1},
			"credits": bson.M{"$sum": "$credits"},
			"active": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$status", domain.AccountActive}}, 1, 0,
			}}},
		}}},
	}

	cursor, err := r.accounts.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total   int64   `bson:"total"`
		Active  int64   `bson:"active"`
		Credits float64 `bson:"credits"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	stats := &ports.AdminStats{}
	if len(rows) > 0 {
		stats.TotalAccounts = rows[0].Total
		stats.ActiveAccounts = rows[0].Active
		stats.CirculatingCredits = rows[0].Credits
	}

	recent, err := r.transactions.CountDocuments(ctx, bson.M{"created_at": bson.M{"$gt": since}})
	if err != nil {
		return nil, err
	}
	stats.RecentTransactions = recent
	return stats, nil
}

// EnsureIndexes creates necessary indexes on the transactions collection.
func (r *LedgerRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	_, err := r.transactions.Indexes().CreateMany(ctx, indexes)
	return err
}
