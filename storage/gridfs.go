package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GridFS guarda los blobs en un bucket GridFS de MongoDB. El id es el ObjectID en hex.
type GridFS struct {
	client *mongo.Client
	db     *mongo.Database
}

// ConnectGridFS abre la conexión a Mongo y valida que responda
func ConnectGridFS(ctx context.Context, uri, database string) (*GridFS, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}
	return &GridFS{client: client, db: client.Database(database)}, nil
}

func (g *GridFS) Close(ctx context.Context) error {
	return g.client.Disconnect(ctx)
}

// bucket crea un bucket por operación: los deadlines del bucket son estado
// compartido y no admiten uso concurrente.
func (g *GridFS) bucket(ctx context.Context) (*gridfs.Bucket, error) {
	b, err := gridfs.NewBucket(g.db)
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := b.SetReadDeadline(deadline); err != nil {
			return nil, err
		}
		if err := b.SetWriteDeadline(deadline); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (g *GridFS) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = DetectContentType(data)
	}
	b, err := g.bucket(ctx)
	if err != nil {
		return "", fmt.Errorf("opening bucket: %w", err)
	}
	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: "contentType", Value: contentType}})
	id, err := b.UploadFromStream(name, bytes.NewReader(data), opts)
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", name, err)
	}
	return id.Hex(), nil
}

func (g *GridFS) Get(ctx context.Context, id string) (*Object, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	b, err := g.bucket(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening bucket: %w", err)
	}
	ds, err := b.OpenDownloadStream(oid)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, ErrNoObject
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", id, err)
	}
	defer ds.Close()

	data, err := io.ReadAll(ds)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", id, err)
	}

	obj := &Object{ID: id, Data: data}
	if f := ds.GetFile(); f != nil && len(f.Metadata) > 0 {
		if ct, ok := f.Metadata.Lookup("contentType").StringValueOK(); ok {
			obj.ContentType = ct
		}
	}
	if obj.ContentType == "" {
		obj.ContentType = DetectContentType(data)
	}
	return obj, nil
}

func (g *GridFS) Delete(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}
	b, err := g.bucket(ctx)
	if err != nil {
		return fmt.Errorf("opening bucket: %w", err)
	}
	if err := b.Delete(oid); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return ErrNoObject
		}
		return fmt.Errorf("deleting %s: %w", id, err)
	}
	return nil
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	if err := CheckID(id); err != nil {
		return primitive.NilObjectID, err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}
