package repository

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/blake2b"
)

// ImagePath is the route prefix that serves stored blobs.
const ImagePath = "/api/images/"

// Blob is a stored image read back from GridFS.
type Blob struct {
	ID          string
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// BlobRepository stores uploaded images in a GridFS bucket. Public URLs point
// back at this service's image route.
type BlobRepository struct {
	db         *mongo.Database
	bucketName string
	baseURL    string
}

func NewBlobRepository(db *mongo.Database, bucketName, baseURL string) *BlobRepository {
	return &BlobRepository{
		db:         db,
		bucketName: bucketName,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// bucket is built per call: deadlines are set on the bucket itself.
func (r *BlobRepository) bucket(ctx context.Context) (*gridfs.Bucket, error) {
	b, err := gridfs.NewBucket(r.db, options.GridFSBucket().SetName(r.bucketName))
	if err != nil {
		return nil, err
	}
	if dl, ok := ctx.Deadline(); ok {
		if err := b.SetWriteDeadline(dl); err != nil {
			return nil, err
		}
		if err := b.SetReadDeadline(dl); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Save writes data under name and returns the new file id.
func (r *BlobRepository) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	b, err := r.bucket(ctx)
	if err != nil {
		return "", fmt.Errorf("gridfs bucket: %w", err)
	}

	sum := blake2b.Sum256(data)
	opts := options.GridFSUpload().SetMetadata(bson.D{
		{Key: "contentType", Value: contentType},
		{Key: "size", Value: int64(len(data))},
		{Key: "blake2b", Value: hex.EncodeToString(sum[:])},
	})

	id, err := b.UploadFromStream(name, bytes.NewReader(data), opts)
	if err != nil {
		return "", fmt.Errorf("gridfs upload %s: %w", name, err)
	}
	return id.Hex(), nil
}

// Open reads a whole blob. Images are bounded by the upload limit.
func (r *BlobRepository) Open(ctx context.Context, id string) (*Blob, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	b, err := r.bucket(ctx)
	if err != nil {
		return nil, fmt.Errorf("gridfs bucket: %w", err)
	}

	stream, err := b.OpenDownloadStream(oid)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("gridfs open %s: %w", id, err)
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("gridfs read %s: %w", id, err)
	}

	file := stream.GetFile()
	blob := &Blob{
		ID:          id,
		Name:        file.Name,
		Size:        file.Length,
		Data:        data,
		ContentType: "image/jpeg",
	}
	if v, err := file.Metadata.LookupErr("contentType"); err == nil {
		if ct, ok := v.StringValueOK(); ok && ct != "" {
			blob.ContentType = ct
		}
	}
	return blob, nil
}

// PublicURL is the fetchable address of a stored blob.
func (r *BlobRepository) PublicURL(id string) string {
	return r.baseURL + ImagePath + id
}
