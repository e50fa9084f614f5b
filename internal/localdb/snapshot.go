package localdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	appcrypto "github.com/brandlens/brandlens-api/internal/crypto"
)

// ErrNoSnapshot is returned by SnapshotStore.Load when no snapshot has been
// persisted yet. Initialize treats it as "start from an empty database".
var ErrNoSnapshot = errors.New("localdb: no snapshot")

// SnapshotStore persists the embedded database as one opaque blob under a
// fixed key. Implementations must make Save atomic enough that a reader
// never observes a half-written snapshot.
type SnapshotStore interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// FileSnapshotStore keeps the snapshot in a single local file.
// When an Encryptor is provided the blob is sealed at rest.
type FileSnapshotStore struct {
	path      string
	encryptor *appcrypto.Encryptor
}

// NewFileSnapshotStore creates a file-backed snapshot store.
// encryptor may be nil for plaintext snapshots.
func NewFileSnapshotStore(path string, encryptor *appcrypto.Encryptor) *FileSnapshotStore {
	return &FileSnapshotStore{path: path, encryptor: encryptor}
}

// Load reads and (if configured) decrypts the snapshot blob.
func (f *FileSnapshotStore) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", f.path, err)
	}
	return f.open(data)
}

// Save writes the blob via a temp file + rename so a concurrent Load never
// sees a partial write.
func (f *FileSnapshotStore) Save(_ context.Context, data []byte) error {
	sealed, err := f.seal(data)
	if err != nil {
		return err
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, sealed, 0o600); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

func (f *FileSnapshotStore) seal(data []byte) ([]byte, error) {
	if f.encryptor == nil {
		return data, nil
	}
	sealed, err := f.encryptor.Encrypt(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt snapshot: %w", err)
	}
	return sealed, nil
}

func (f *FileSnapshotStore) open(data []byte) ([]byte, error) {
	if f.encryptor == nil {
		return data, nil
	}
	plain, err := f.encryptor.Decrypt(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt snapshot: %w", err)
	}
	return plain, nil
}

// S3SnapshotStore keeps the snapshot as a single object in an S3-compatible
// bucket (Tigris, MinIO, AWS).
type S3SnapshotStore struct {
	client    *s3.Client
	bucket    string
	key       string
	encryptor *appcrypto.Encryptor
}

// S3Config holds the settings for an S3-compatible snapshot backend.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	Bucket    string
	Key       string
}

// NewS3SnapshotStore creates an S3-backed snapshot store.
// encryptor may be nil for plaintext snapshots.
func NewS3SnapshotStore(ctx context.Context, cfg S3Config, encryptor *appcrypto.Encryptor) (*S3SnapshotStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true // Required for some S3-compatible services
	})

	return &S3SnapshotStore{
		client:    client,
		bucket:    cfg.Bucket,
		key:       cfg.Key,
		encryptor: encryptor,
	}, nil
}

// Load fetches the snapshot object.
func (s *S3SnapshotStore) Load(ctx context.Context) ([]byte, error) {
	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("failed to get snapshot object: %w", err)
	}
	defer func() { _ = output.Body.Close() }()

	data, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot object: %w", err)
	}

	if s.encryptor != nil {
		plain, err := s.encryptor.Decrypt(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt snapshot: %w", err)
		}
		return plain, nil
	}
	return data, nil
}

// Save uploads the snapshot object, replacing the previous one.
func (s *S3SnapshotStore) Save(ctx context.Context, data []byte) error {
	if s.encryptor != nil {
		sealed, err := s.encryptor.Encrypt(data)
		if err != nil {
			return fmt.Errorf("failed to encrypt snapshot: %w", err)
		}
		data = sealed
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/octet-stream"),
	})
	if err != nil {
		return fmt.Errorf("failed to put snapshot object: %w", err)
	}
	return nil
}
