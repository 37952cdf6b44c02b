// Package mongostore keeps payment records in a MongoDB collection.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rcarvalho-pb/storefront-payments/internal/domain/payment"
)

const CollectionName = "payments"

// Connect dials uri and pings the primary.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

type PaymentRepository struct {
	coll *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{coll: db.Collection(CollectionName)}
}

// Migrate creates the unique indexes the duplicate checks rely on.
func (r *PaymentRepository) Migrate(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "order_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("ux_payments_order_id"),
		},
		{
			Keys: bson.D{{Key: "provider_order_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("ux_payments_provider_order_id").
				SetPartialFilterExpression(bson.M{"provider_order_id": bson.M{"$type": "string"}}),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("ix_payments_created_at"),
		},
	})
	return err
}

func (r *PaymentRepository) Create(ctx context.Context, p *payment.Record) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}

	if _, err := r.coll.InsertOne(ctx, toDocument(p)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return payment.ErrDuplicateOrder
		}
		return err
	}
	return nil
}

func (r *PaymentRepository) findOne(ctx context.Context, filter bson.M) (*payment.Record, error) {
	var doc paymentDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, payment.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toRecord()
}

func (r *PaymentRepository) FindByOrderID(ctx context.Context, orderID string) (*payment.Record, error) {
	return r.findOne(ctx, bson.M{"order_id": orderID})
}

func (r *PaymentRepository) FindByProviderOrderID(ctx context.Context, providerOrderID string) (*payment.Record, error) {
	return r.findOne(ctx, bson.M{"provider_order_id": providerOrderID})
}

func (r *PaymentRepository) Update(ctx context.Context, orderID string, changes payment.Changes) (*payment.Record, error) {
	filter := updateFilter(orderID, changes)

	var doc paymentDocument
	err := r.coll.FindOneAndUpdate(ctx, filter,
		bson.M{"$set": updateSet(changes, time.Now().UTC())},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)

	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, findErr := r.FindByOrderID(ctx, orderID); findErr != nil {
			return nil, findErr
		}
		return nil, payment.ErrStatusConflict
	}
	if err != nil {
		return nil, err
	}

	return doc.toRecord()
}

func (r *PaymentRepository) List(ctx context.Context) ([]*payment.Record, error) {
	cur, err := r.coll.Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "order_id", Value: 1}}))
	if err != nil {
		return nil, err
	}

	var docs []paymentDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]*payment.Record, 0, len(docs))
	for _, d := range docs {
		rec, err := d.toRecord()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func updateFilter(orderID string, changes payment.Changes) bson.M {
	filter := bson.M{"order_id": orderID}
	if changes.ExpectStatus != nil {
		filter["status"] = string(*changes.ExpectStatus)
	}
	return filter
}

func updateSet(changes payment.Changes, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	if changes.Status != nil {
		set["status"] = string(*changes.Status)
	}
	if changes.CaptureID != nil {
		set["capture_id"] = *changes.CaptureID
	}
	if changes.PayerID != nil {
		set["payer_id"] = *changes.PayerID
	}
	return set
}
