package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig configures a [MongoStore].
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`   // default "vfxgraph"
	Collection string `toml:"collection"` // default "assets"
}

// MongoStore keeps each asset as one document whose _id is the asset name.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoAsset struct {
	Name    string    `bson:"_id"`
	ID      string    `bson:"revision"`
	Size    int       `bson:"size"`
	Hash    string    `bson:"hash"`
	SavedAt time.Time `bson:"saved_at"`
	Data    []byte    `bson:"data,omitempty"`
}

func (a mongoAsset) revision() Revision {
	return Revision{ID: a.ID, Name: a.Name, Size: a.Size, Hash: a.Hash, SavedAt: a.SavedAt.UTC()}
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, storageErr(err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, storageErr(err, "ping mongodb")
	}
	db, coll := cfg.Database, cfg.Collection
	if db == "" {
		db = "vfxgraph"
	}
	if coll == "" {
		coll = "assets"
	}
	return &MongoStore{client: client, coll: client.Database(db).Collection(coll)}, nil
}

func (s *MongoStore) Get(ctx context.Context, name string) (doc *Document, err error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	start, size := time.Now(), 0
	defer observeLoad(ctx, "mongo", name, start, &size, &err)

	var a mongoAsset
	if err := s.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound(name)
		}
		return nil, storageErr(err, "get %q", name)
	}
	size = len(a.Data)
	return &Document{Revision: a.revision(), Data: a.Data}, nil
}

func (s *MongoStore) Put(ctx context.Context, name string, data []byte) (rev Revision, err error) {
	if err := ValidateName(name); err != nil {
		return Revision{}, err
	}
	defer observeSave(ctx, "mongo", name, time.Now(), len(data), &err)

	rev = NewRevision(name, data)
	a := mongoAsset{Name: name, ID: rev.ID, Size: rev.Size, Hash: rev.Hash, SavedAt: rev.SavedAt, Data: data}
	if a.Data == nil {
		a.Data = []byte{}
	}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": name}, a, options.Replace().SetUpsert(true))
	if err != nil {
		return Revision{}, storageErr(err, "put %q", name)
	}
	return rev, nil
}

func (s *MongoStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": name})
	if err != nil {
		return storageErr(err, "delete %q", name)
	}
	if res.DeletedCount == 0 {
		return notFound(name)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]Revision, error) {
	opts := options.Find().
		SetProjection(bson.M{"data": 0}).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, storageErr(err, "list assets")
	}
	var assets []mongoAsset
	if err := cur.All(ctx, &assets); err != nil {
		return nil, storageErr(err, "list assets")
	}
	out := make([]Revision, len(assets))
	for i, a := range assets {
		out[i] = a.revision()
	}
	return out, nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
