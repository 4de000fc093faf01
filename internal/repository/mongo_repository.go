package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"catalog-api/internal/models"
)

// productDocument es la forma en que se guarda un producto en MongoDB
type productDocument struct {
	ID            int64                `bson:"_id"`
	SKU           string               `bson:"sku"`
	Name          string               `bson:"name"`
	Description   *string              `bson:"description,omitempty"`
	Category      string               `bson:"category"`
	Brand         string               `bson:"brand"`
	Price         primitive.Decimal128 `bson:"price"`
	StockQuantity int64                `bson:"stock_quantity"`
	Rating        primitive.Decimal128 `bson:"rating"`
	ReviewsCount  int64                `bson:"reviews_count"`
	CreatedAt     time.Time            `bson:"created_at"`
	UpdatedAt     time.Time            `bson:"updated_at"`
}

func (d productDocument) toModel() models.Product {
	return models.Product{
		ID:            d.ID,
		SKU:           d.SKU,
		Name:          d.Name,
		Description:   d.Description,
		Category:      d.Category,
		Brand:         d.Brand,
		Price:         fromDecimal128(d.Price),
		StockQuantity: d.StockQuantity,
		Rating:        fromDecimal128(d.Rating),
		ReviewsCount:  d.ReviewsCount,
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
	}
}

func newProductDocument(p models.Product) (productDocument, error) {
	price, err := toDecimal128(p.Price)
	if err != nil {
		return productDocument{}, fmt.Errorf("product %s price: %w", p.SKU, err)
	}
	rating, err := toDecimal128(p.Rating)
	if err != nil {
		return productDocument{}, fmt.Errorf("product %s rating: %w", p.SKU, err)
	}
	return productDocument{
		ID:            p.ID,
		SKU:           p.SKU,
		Name:          p.Name,
		Description:   p.Description,
		Category:      p.Category,
		Brand:         p.Brand,
		Price:         price,
		StockQuantity: p.StockQuantity,
		Rating:        rating,
		ReviewsCount:  p.ReviewsCount,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}, nil
}

type statsDocument struct {
	TotalProducts   int64                `bson:"total_products"`
	TotalCategories int64                `bson:"total_categories"`
	TotalBrands     int64                `bson:"total_brands"`
	PriceMin        primitive.Decimal128 `bson:"price_min"`
	PriceMax        primitive.Decimal128 `bson:"price_max"`
	AvgRating       primitive.Decimal128 `bson:"avg_rating"`
	TotalStock      int64                `bson:"total_stock"`
}

// MongoProductRepository implementa ProductRepository sobre una colección de MongoDB
type MongoProductRepository struct {
	collection *mongo.Collection
	timeout    time.Duration
}

func NewMongoProductRepository(collection *mongo.Collection, timeout time.Duration) *MongoProductRepository {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MongoProductRepository{
		collection: collection,
		timeout:    timeout,
	}
}

// FindAll lista productos con paginación y filtros; el conteo corre en paralelo
func (r *MongoProductRepository) FindAll(ctx context.Context, spec models.QuerySpec) ([]models.Product, int64, error) {
	if err := spec.Validate(); err != nil {
		return nil, 0, err
	}
	sortDoc, err := buildSort(spec)
	if err != nil {
		return nil, 0, err
	}
	filter, err := buildFilter(spec)
	if err != nil {
		return nil, 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var (
		total int64
		docs  []productDocument
	)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := r.collection.CountDocuments(gctx, filter)
		if err != nil {
			return unavailable("count products", err)
		}
		total = n
		return nil
	})

	g.Go(func() error {
		opts := options.Find().
			SetSkip(int64(spec.Offset())).
			SetLimit(int64(spec.Limit)).
			SetSort(sortDoc)

		cursor, err := r.collection.Find(gctx, filter, opts)
		if err != nil {
			return unavailable("list products", err)
		}
		defer cursor.Close(gctx)

		if err := cursor.All(gctx, &docs); err != nil {
			return unavailable("decode products", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	products := make([]models.Product, len(docs))
	for i, d := range docs {
		products[i] = d.toModel()
	}
	return products, total, nil
}

// FindByID obtiene un producto por ID
func (r *MongoProductRepository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc productDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, unavailable("find product", err)
	}

	p := doc.toModel()
	return &p, nil
}

func (r *MongoProductRepository) Stats(ctx context.Context) (*models.ProductStats, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total_products", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "categories", Value: bson.D{{Key: "$addToSet", Value: "$category"}}},
			{Key: "brands", Value: bson.D{{Key: "$addToSet", Value: "$brand"}}},
			{Key: "price_min", Value: bson.D{{Key: "$min", Value: "$price"}}},
			{Key: "price_max", Value: bson.D{{Key: "$max", Value: "$price"}}},
			{Key: "avg_rating", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
			{Key: "total_stock", Value: bson.D{{Key: "$sum", Value: "$stock_quantity"}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "total_products", Value: 1},
			{Key: "total_categories", Value: bson.D{{Key: "$size", Value: "$categories"}}},
			{Key: "total_brands", Value: bson.D{{Key: "$size", Value: "$brands"}}},
			{Key: "price_min", Value: 1},
			{Key: "price_max", Value: 1},
			{Key: "avg_rating", Value: 1},
			{Key: "total_stock", Value: 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, unavailable("product stats", err)
	}
	defer cursor.Close(ctx)

	var docs []statsDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, unavailable("decode stats", err)
	}

	stats := &models.ProductStats{}
	if len(docs) == 0 {
		return stats, nil
	}
	d := docs[0]
	stats.TotalProducts = d.TotalProducts
	stats.TotalCategories = d.TotalCategories
	stats.TotalBrands = d.TotalBrands
	stats.PriceMin = fromDecimal128(d.PriceMin)
	stats.PriceMax = fromDecimal128(d.PriceMax)
	stats.AvgRating = fromDecimal128(d.AvgRating).Round(2)
	stats.TotalStock = d.TotalStock
	return stats, nil
}

func (r *MongoProductRepository) Categories(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "category")
}

func (r *MongoProductRepository) Brands(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "brand")
}

func (r *MongoProductRepository) distinct(ctx context.Context, field string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	raw, err := r.collection.Distinct(ctx, field, bson.D{})
	if err != nil {
		return nil, unavailable("distinct "+field, err)
	}

	values := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			values = append(values, s)
		}
	}
	sort.Strings(values)
	return values, nil
}

func (r *MongoProductRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.collection.Database().Client().Ping(ctx, nil)
}

// Count devuelve el número de documentos; lo usa el seeder
func (r *MongoProductRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, unavailable("count", err)
	}
	return n, nil
}

// InsertBatch inserta documentos usando el ID ya asignado por el seeder
func (r *MongoProductRepository) InsertBatch(ctx context.Context, products []models.Product) (int64, error) {
	docs := make([]interface{}, len(products))
	for i, p := range products {
		doc, err := newProductDocument(p)
		if err != nil {
			return 0, err
		}
		docs[i] = doc
	}

	res, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil {
		var inserted int64
		if res != nil {
			inserted = int64(len(res.InsertedIDs))
		}
		return inserted, unavailable("insert products", err)
	}
	return int64(len(res.InsertedIDs)), nil
}

// --- Métodos auxiliares ---

// mongoSortFields mapea la allow-list a campos del documento
var mongoSortFields = map[string]string{
	"id":             "_id",
	"sku":            "sku",
	"name":           "name",
	"category":       "category",
	"brand":          "brand",
	"price":          "price",
	"stock_quantity": "stock_quantity",
	"rating":         "rating",
	"reviews_count":  "reviews_count",
	"created_at":     "created_at",
	"updated_at":     "updated_at",
}

// buildFilter construye el filtro de MongoDB; todos los filtros se combinan con AND.
// Un precio que no cabe en Decimal128 es un error del parámetro, nunca un 0.
func buildFilter(spec models.QuerySpec) (bson.M, error) {
	filter := bson.M{}

	if spec.Category != "" {
		filter["category"] = spec.Category
	}
	if spec.Brand != "" {
		filter["brand"] = spec.Brand
	}

	priceFilter := bson.M{}
	if spec.MinPrice != nil {
		v, err := toDecimal128(*spec.MinPrice)
		if err != nil {
			return nil, &models.QueryError{Field: "min_price", Message: "has too many significant digits"}
		}
		priceFilter["$gte"] = v
	}
	if spec.MaxPrice != nil {
		v, err := toDecimal128(*spec.MaxPrice)
		if err != nil {
			return nil, &models.QueryError{Field: "max_price", Message: "has too many significant digits"}
		}
		priceFilter["$lte"] = v
	}
	if len(priceFilter) > 0 {
		filter["price"] = priceFilter
	}

	// Búsqueda literal por substring, sin distinguir mayúsculas
	if spec.Search != "" {
		pattern := regexp.QuoteMeta(spec.Search)
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": pattern, "$options": "i"}},
			{"description": bson.M{"$regex": pattern, "$options": "i"}},
			{"sku": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}

	return filter, nil
}

// buildSort ordena por un solo campo con desempate por _id ascendente
func buildSort(spec models.QuerySpec) (bson.D, error) {
	field, ok := mongoSortFields[spec.SortBy]
	if !ok {
		return nil, &models.QueryError{Field: "sort_by", Message: "unknown sort field"}
	}

	order := 1
	if spec.Descending() {
		order = -1
	}

	sortDoc := bson.D{{Key: field, Value: order}}
	if field != "_id" {
		sortDoc = append(sortDoc, bson.E{Key: "_id", Value: 1})
	}
	return sortDoc, nil
}

// toDecimal128 falla si el valor no se representa exacto (más de 34 dígitos significativos)
func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("convert %s to decimal128: %w", d.String(), err)
	}
	back, err := decimal.NewFromString(v.String())
	if err != nil || !back.Equal(d) {
		return primitive.Decimal128{}, fmt.Errorf("convert %s to decimal128: precision lost", d.String())
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}
