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
)

// recordMapping describes how one collection maps between domain records of
// type T, list filters of type F and stored documents of type D.
type recordMapping[T any, F any, D any] struct {
	collection string
	notFound   error
	idOf       func(*T) string
	toDoc      func(primitive.ObjectID, *T) D
	fromDoc    func(*D) *T
	filter     func(F) bson.M
	sort       bson.D
	indexes    []mongo.IndexModel
}

// RecordRepository is the shared CRUD implementation behind the flat record
// collections (farms, alerts, compliance, feedback, assessments).
type RecordRepository[T any, F any, D any] struct {
	col *mongo.Collection
	m   recordMapping[T, F, D]
}

func newRecordRepository[T any, F any, D any](db *mongo.Database, m recordMapping[T, F, D]) *RecordRepository[T, F, D] {
	return &RecordRepository[T, F, D]{col: db.Collection(m.collection), m: m}
}

// Create assigns a fresh ObjectID and inserts rec.
func (r *RecordRepository[T, F, D]) Create(ctx context.Context, rec *T) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := r.m.toDoc(primitive.NewObjectID(), rec)
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert into %s: %w", r.m.collection, err)
	}
	return r.m.fromDoc(&doc), nil
}

// FindByID returns the not-found error of the collection for unknown and
// malformed ids alike.
func (r *RecordRepository[T, F, D]) FindByID(ctx context.Context, id string) (*T, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, r.m.notFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc D
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, r.m.notFound
		}
		return nil, fmt.Errorf("find in %s: %w", r.m.collection, err)
	}
	return r.m.fromDoc(&doc), nil
}

func (r *RecordRepository[T, F, D]) List(ctx context.Context, filter F) ([]*T, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find()
	if len(r.m.sort) > 0 {
		opts.SetSort(r.m.sort)
	}

	cur, err := r.col.Find(ctx, r.m.filter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.m.collection, err)
	}
	defer cur.Close(ctx)

	var docs []D
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.m.collection, err)
	}

	out := make([]*T, 0, len(docs))
	for i := range docs {
		out = append(out, r.m.fromDoc(&docs[i]))
	}
	return out, nil
}

// Update replaces the stored document with rec and returns the new version.
func (r *RecordRepository[T, F, D]) Update(ctx context.Context, rec *T) (*T, error) {
	oid, ok := objectID(r.m.idOf(rec))
	if !ok {
		return nil, r.m.notFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndReplace().SetReturnDocument(options.After)
	var doc D
	err := r.col.FindOneAndReplace(ctx, bson.M{"_id": oid}, r.m.toDoc(oid, rec), opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, r.m.notFound
		}
		return nil, fmt.Errorf("update in %s: %w", r.m.collection, err)
	}
	return r.m.fromDoc(&doc), nil
}

func (r *RecordRepository[T, F, D]) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return r.m.notFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete from %s: %w", r.m.collection, err)
	}
	if res.DeletedCount == 0 {
		return r.m.notFound
	}
	return nil
}

// EnsureIndexes creates the lookup indexes of the collection.
func (r *RecordRepository[T, F, D]) EnsureIndexes(ctx context.Context) error {
	if len(r.m.indexes) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, r.m.indexes)
	return err
}

// matchRef adds an ObjectID equality on key when id is set. A malformed id
// matches nothing.
func matchRef(filter bson.M, key, id string) {
	if id == "" {
		return
	}
	oid, ok := objectID(id)
	if !ok {
		oid = primitive.NilObjectID
	}
	filter[key] = oid
}

func matchString(filter bson.M, key, value string) {
	if value != "" {
		filter[key] = value
	}
}

func ascending(keys ...string) mongo.IndexModel {
	d := bson.D{}
	for _, k := range keys {
		d = append(d, bson.E{Key: k, Value: 1})
	}
	return mongo.IndexModel{Keys: d}
}
