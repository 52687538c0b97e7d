// internal/output/mongodb.go
package output

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vitrinio/shelfscraper/internal/scraper"
)

const mongoConnectTimeout = 10 * time.Second

// MongoSink writes records into MongoDB. Products and failures land in
// separate collections of the configured database.
type MongoSink struct {
	client  *mongo.Client
	records *mongo.Collection
	errors  *mongo.Collection
	site    string
}

// NewMongoSink connects to MongoDB and prepares the collections.
func NewMongoSink(connectionString, database, collection, site string) (*MongoSink, error) {
	if connectionString == "" {
		return nil, fmt.Errorf("mongodb sink requires a connection string")
	}
	if database == "" {
		database = "shelfscraper"
	}
	if collection == "" {
		collection = "products"
	}

	ctx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(connectionString))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(database)
	return &MongoSink{
		client:  client,
		records: db.Collection(collection),
		errors:  db.Collection(collection + "_errors"),
		site:    site,
	}, nil
}

// AppendRecord implements RecordSink.
func (s *MongoSink) AppendRecord(ctx context.Context, record scraper.ValidatedProductRecord) error {
	price, currency := firstPrice(record)
	doc := bson.M{
		"site":           s.site,
		"title":          record.Title,
		"link":           record.Link,
		"primary_image":  record.PrimaryImage,
		"images":         record.Images,
		"price":          price,
		"currency":       currency,
		"prices":         record.Prices,
		"videos":         record.Videos,
		"media_type":     record.MediaType,
		"not_in_stock":   record.ProductNotInStock,
		"title_valid":    record.TitleValid,
		"link_valid":     record.LinkValid,
		"img_valid":      record.ImgValid,
		"price_valid":    record.PriceValid,
		"video_valid":    record.VideoValid,
		"page_url":       record.PageURL,
		"page_title":     record.PageTitle,
		"collected_at":   record.Timestamp,
	}
	if _, err := s.records.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

// AppendError implements RecordSink.
func (s *MongoSink) AppendError(ctx context.Context, failure scraper.ErrorRecord) error {
	doc := bson.M{
		"site":       s.site,
		"message":    failure.Message,
		"content":    failure.Content,
		"url":        failure.URL,
		"page_title": failure.PageTitle,
	}
	if _, err := s.errors.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert error record: %w", err)
	}
	return nil
}

// Flush implements RecordSink. Inserts are unbuffered.
func (s *MongoSink) Flush() error {
	return nil
}

// Close implements RecordSink.
func (s *MongoSink) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}
