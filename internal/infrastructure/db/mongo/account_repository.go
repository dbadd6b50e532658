package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/keymint/storefront-system/internal/core/domain"
)

const collectionAccounts = "accounts"

// AccountRepository implements ports.AccountRepository on MongoDB. Orders
// are embedded in the account document; $push keeps the history
// append-only and chronological.
type AccountRepository struct {
	col *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{col: db.Collection(collectionAccounts)}
}

type orderDoc struct {
	OrderID      string    `bson:"order_id"`
	ProductLabel string    `bson:"product_label"`
	Tier         string    `bson:"tier"`
	Quantity     int       `bson:"quantity"`
	UnitCost     float64   `bson:"unit_cost"`
	TotalCost    float64   `bson:"total_cost"`
	Status       string    `bson:"status"`
	Key          string    `bson:"key"`
	CreatedAt    time.Time `bson:"created_at"`
}

type accountDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	PasswordHash string             `bson:"password_hash"`
	Role         string             `bson:"role"`
	Balance      float64            `bson:"balance"`
	Orders       []orderDoc         `bson:"orders"`
	CreatedAt    int64              `bson:"created_at"`
	UpdatedAt    int64              `bson:"updated_at"`
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := accountDoc{
		Username:     account.Username,
		PasswordHash: account.PasswordHash,
		Role:         account.Role,
		Balance:      account.Balance,
		Orders:       toOrderDocs(account.Orders),
		CreatedAt:    account.CreatedAt.Unix(),
		UpdatedAt:    account.UpdatedAt.Unix(),
	}

	_, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAccountExists
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	// fetch back to get ID
	return r.FindByUsername(ctx, account.Username)
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc accountDoc
	if err := r.col.FindOne(ctx, bson.M{"username": username}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return toAccount(doc), nil
}

func (r *AccountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer cursor.Close(ctx)

	var accounts []*domain.Account
	for cursor.Next(ctx) {
		var doc accountDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode account: %w", err)
		}
		accounts = append(accounts, toAccount(doc))
	}
	return accounts, cursor.Err()
}

func (r *AccountRepository) Delete(ctx context.Context, username string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"username": username})
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) SetBalance(ctx context.Context, username string, balance float64) error {
	return r.update(ctx, username, bson.M{"$set": bson.M{"balance": balance, "updated_at": time.Now().Unix()}})
}

func (r *AccountRepository) SetRole(ctx context.Context, username string, role string) error {
	return r.update(ctx, username, bson.M{"$set": bson.M{"role": role, "updated_at": time.Now().Unix()}})
}

// DebitBalance decrements the balance only while it still covers amount,
// so the stored value can never go negative even if the caller's read was
// stale.
func (r *AccountRepository) DebitBalance(ctx context.Context, username string, amount float64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"username": username, "balance": bson.M{"$gte": amount}}
	update := bson.M{"$inc": bson.M{"balance": -amount}, "$set": bson.M{"updated_at": time.Now().Unix()}}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("debit balance: %w", err)
	}
	if res.MatchedCount == 0 {
		// Distinguish a missing account from a guard failure.
		if _, findErr := r.FindByUsername(ctx, username); findErr != nil {
			return findErr
		}
		return domain.ErrInsufficientBalance
	}
	return nil
}

func (r *AccountRepository) CreditBalance(ctx context.Context, username string, amount float64) error {
	return r.update(ctx, username, bson.M{
		"$inc": bson.M{"balance": amount},
		"$set": bson.M{"updated_at": time.Now().Unix()},
	})
}

func (r *AccountRepository) AppendOrders(ctx context.Context, username string, orders []domain.Order) error {
	docs := toOrderDocs(orders)
	return r.update(ctx, username, bson.M{
		"$push": bson.M{"orders": bson.M{"$each": docs}},
		"$set":  bson.M{"updated_at": time.Now().Unix()},
	})
}

func (r *AccountRepository) update(ctx context.Context, username string, update bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"username": username}, update)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// EnsureIndexes creates the unique username index.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func toOrderDocs(orders []domain.Order) []orderDoc {
	docs := make([]orderDoc, 0, len(orders))
	for _, o := range orders {
		docs = append(docs, orderDoc{
			OrderID:      o.ID,
			ProductLabel: o.ProductLabel,
			Tier:         string(o.Tier),
			Quantity:     o.Quantity,
			UnitCost:     o.UnitCost,
			TotalCost:    o.TotalCost,
			Status:       string(o.Status),
			Key:          o.Key,
			CreatedAt:    o.CreatedAt.UTC(),
		})
	}
	return docs
}

func toAccount(doc accountDoc) *domain.Account {
	orders := make([]domain.Order, 0, len(doc.Orders))
	for _, o := range doc.Orders {
		orders = append(orders, domain.Order{
			ID:           o.OrderID,
			ProductLabel: o.ProductLabel,
			Tier:         domain.DurationTier(o.Tier),
			Quantity:     o.Quantity,
			UnitCost:     o.UnitCost,
			TotalCost:    o.TotalCost,
			Status:       domain.OrderStatus(o.Status),
			Key:          o.Key,
			CreatedAt:    o.CreatedAt,
		})
	}
	return &domain.Account{
		ID:           doc.ID.Hex(),
		Username:     doc.Username,
		PasswordHash: doc.PasswordHash,
		Role:         doc.Role,
		Balance:      doc.Balance,
		Orders:       orders,
		CreatedAt:    unixToTime(doc.CreatedAt),
		UpdatedAt:    unixToTime(doc.UpdatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
