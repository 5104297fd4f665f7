package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/przhevallsky/transferboss/internal/models"
)

const corridorsCollection = "corridor_configs"

// CorridorCatalog хранит правила коридоров, которые операторы меняют без релиза
type CorridorCatalog struct {
	client     *mongo.Client
	collection *mongo.Collection
	timeout    time.Duration
}

type corridorDocument struct {
	SourceCountry   string         `bson:"source_country"`
	DestCountry     string         `bson:"dest_country"`
	DeliveryMethods []string       `bson:"delivery_methods"`
	Limits          corridorLimits `bson:"limits"`
	Active          bool           `bson:"is_active"`
	UpdatedAt       time.Time      `bson:"updated_at"`
}

type corridorLimits struct {
	// Stored by hand, so it arrives as int, double, decimal128 or string.
	MinAmount bson.RawValue `bson:"min_amount_usd,omitempty"`
}

func NewCorridorCatalog(ctx context.Context, uri, database string, timeout time.Duration) (*CorridorCatalog, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	ctxPing, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(ctxPing, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	coll := client.Database(database).Collection(corridorsCollection)

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "source_country", Value: 1}, {Key: "dest_country", Value: 1}},
		Options: options.Index().SetUnique(true),
	}

	ctxIndex, cancelIndex := context.WithTimeout(ctx, timeout)
	defer cancelIndex()

	if _, err := coll.Indexes().CreateOne(ctxIndex, indexModel); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &CorridorCatalog{
		client:     client,
		collection: coll,
		timeout:    timeout,
	}, nil
}

// LoadRules returns every active corridor.
func (c *CorridorCatalog) LoadRules(ctx context.Context) ([]models.CorridorRule, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cur, err := c.collection.Find(ctx, bson.M{"is_active": true})
	if err != nil {
		return nil, fmt.Errorf("failed to query corridors: %w", err)
	}
	defer cur.Close(ctx)

	var rules []models.CorridorRule
	for cur.Next(ctx) {
		var doc corridorDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode corridor: %w", err)
		}
		rule, err := doc.toRule()
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("failed to read corridors: %w", err)
	}
	return rules, nil
}

// SeedIfEmpty writes rules when the collection has no documents yet.
// It returns the number of documents written.
func (c *CorridorCatalog) SeedIfEmpty(ctx context.Context, rules []models.CorridorRule) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	n, err := c.collection.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count corridors: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	docs := make([]any, 0, len(rules))
	for _, r := range rules {
		docs = append(docs, fromRule(r, now))
	}

	res, err := c.collection.InsertMany(ctx, docs)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// another instance seeded first
			return 0, nil
		}
		return 0, fmt.Errorf("failed to seed corridors: %w", err)
	}
	return len(res.InsertedIDs), nil
}

func (c *CorridorCatalog) Close() error {
	if c.client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return c.client.Disconnect(ctx)
}

func (d corridorDocument) toRule() (models.CorridorRule, error) {
	corridor, err := models.NewCorridor(d.SourceCountry, d.DestCountry)
	if err != nil {
		return models.CorridorRule{}, fmt.Errorf("corridor %s_%s: %w", d.SourceCountry, d.DestCountry, err)
	}

	methods := make([]models.DeliveryMethod, 0, len(d.DeliveryMethods))
	for _, m := range d.DeliveryMethods {
		method, err := models.ParseDeliveryMethod(m)
		if err != nil {
			return models.CorridorRule{}, fmt.Errorf("corridor %s: %w", corridor.ID(), err)
		}
		methods = append(methods, method)
	}

	minimum, err := decodeAmount(d.Limits.MinAmount)
	if err != nil {
		return models.CorridorRule{}, fmt.Errorf("corridor %s: min_amount_usd: %w", corridor.ID(), err)
	}

	return models.CorridorRule{
		Corridor:        corridor,
		DeliveryMethods: methods,
		MinimumAmount:   minimum,
	}, nil
}

func fromRule(r models.CorridorRule, now time.Time) corridorDocument {
	_, raw, _ := bson.MarshalValue(r.MinimumAmount.StringFixed(models.AmountScale))
	return corridorDocument{
		SourceCountry:   r.Corridor.SourceCountry,
		DestCountry:     r.Corridor.DestCountry,
		DeliveryMethods: r.MethodNames(),
		Limits:          corridorLimits{MinAmount: bson.RawValue{Type: bson.TypeString, Value: raw}},
		Active:          true,
		UpdatedAt:       now,
	}
}

// decodeAmount returns zero for a missing value, which means "use the default minimum".
func decodeAmount(v bson.RawValue) (decimal.Decimal, error) {
	switch v.Type {
	case 0, bson.TypeNull, bson.TypeUndefined:
		return decimal.Zero, nil
	case bson.TypeInt32:
		return decimal.NewFromInt32(v.Int32()), nil
	case bson.TypeInt64:
		return decimal.NewFromInt(v.Int64()), nil
	case bson.TypeDouble:
		return decimal.NewFromFloat(v.Double()), nil
	case bson.TypeDecimal128:
		return decimal.NewFromString(v.Decimal128().String())
	case bson.TypeString:
		return decimal.NewFromString(v.StringValue())
	default:
		return decimal.Zero, fmt.Errorf("unsupported bson type %s", v.Type)
	}
}
