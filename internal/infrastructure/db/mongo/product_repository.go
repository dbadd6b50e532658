package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/keymint/storefront-system/internal/core/domain"
)

const collectionProducts = "products"

// ProductRepository implements ports.ProductRepository on MongoDB.
type ProductRepository struct {
	col *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{col: db.Collection(collectionProducts)}
}

type tierOfferDoc struct {
	Endpoint string  `bson:"endpoint"`
	Price    float64 `bson:"price"`
}

type productDoc struct {
	Name        string                  `bson:"name"`
	Stock       int                     `bson:"stock"`
	BasePrice   float64                 `bson:"base_price"`
	Offers      map[string]tierOfferDoc `bson:"offers"`
	ImageURL    string                  `bson:"image_url"`
	Description string                  `bson:"description"`
	InfoLinks   []string                `bson:"info_links"`
	Detected    bool                    `bson:"detected"`
	CreatedAt   int64                   `bson:"created_at"`
	UpdatedAt   int64                   `bson:"updated_at"`
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, toProductDoc(p))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrProductExists
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *ProductRepository) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc productDoc
	if err := r.col.FindOne(ctx, bson.M{"name": name}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return toProduct(doc), nil
}

func (r *ProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []*domain.Product
	for cursor.Next(ctx) {
		var doc productDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode product: %w", err)
		}
		products = append(products, toProduct(doc))
	}
	return products, cursor.Err()
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"name": p.Name}, toProductDoc(p))
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) SetStock(ctx context.Context, name string, stock int) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"name": name}, bson.M{
		"$set": bson.M{"stock": stock, "updated_at": time.Now().Unix()},
	})
	if err != nil {
		return fmt.Errorf("set stock: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// AdjustStock applies delta to stock. Decrements are guarded so the stored
// counter cannot drop below zero.
func (r *ProductRepository) AdjustStock(ctx context.Context, name string, delta int) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"name": name}
	if delta < 0 {
		filter["stock"] = bson.M{"$gte": -delta}
	}

	res, err := r.col.UpdateOne(ctx, filter, bson.M{
		"$inc": bson.M{"stock": delta},
		"$set": bson.M{"updated_at": time.Now().Unix()},
	})
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, findErr := r.FindByName(ctx, name); findErr != nil {
			return findErr
		}
		return domain.ErrInsufficientStock
	}
	return nil
}

// EnsureIndexes creates the unique product name index.
func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func toProductDoc(p *domain.Product) productDoc {
	offers := make(map[string]tierOfferDoc, len(p.Offers))
	for tier, offer := range p.Offers {
		offers[string(tier)] = tierOfferDoc{Endpoint: offer.Endpoint, Price: offer.Price}
	}
	return productDoc{
		Name:        p.Name,
		Stock:       p.Stock,
		BasePrice:   p.BasePrice,
		Offers:      offers,
		ImageURL:    p.ImageURL,
		Description: p.Description,
		InfoLinks:   []string{p.InfoLinks[0], p.InfoLinks[1]},
		Detected:    p.Detected,
		CreatedAt:   p.CreatedAt.Unix(),
		UpdatedAt:   p.UpdatedAt.Unix(),
	}
}

func toProduct(doc productDoc) *domain.Product {
	offers := make(map[domain.DurationTier]domain.TierOffer, len(doc.Offers))
	for tier, offer := range doc.Offers {
		offers[domain.DurationTier(tier)] = domain.TierOffer{Endpoint: offer.Endpoint, Price: offer.Price}
	}
	var links [2]string
	for i := 0; i < len(doc.InfoLinks) && i < 2; i++ {
		links[i] = doc.InfoLinks[i]
	}
	return &domain.Product{
		Name:        doc.Name,
		Stock:       doc.Stock,
		BasePrice:   doc.BasePrice,
		Offers:      offers,
		ImageURL:    doc.ImageURL,
		Description: doc.Description,
		InfoLinks:   links,
		Detected:    doc.Detected,
		CreatedAt:   unixToTime(doc.CreatedAt),
		UpdatedAt:   unixToTime(doc.UpdatedAt),
	}
}
