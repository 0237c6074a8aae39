package task

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	domain "github.com/example/taskboard/domain/task"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// DocumentStore defines the interface for document blob storage.
type DocumentStore interface {
	Put(ctx context.Context, path string, data []byte, contentType string) error
	Get(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, path string) error
}

// JetStreamDocumentStore implements DocumentStore using NATS JetStream
// Object Store.
type JetStreamDocumentStore struct {
	conn       *nats.Conn
	js         jetstream.JetStream
	store      jetstream.ObjectStore
	bucketName string
}

// NewJetStreamDocumentStore creates a new JetStream Object Store client.
func NewJetStreamDocumentStore(natsURL, bucketName string) (*JetStreamDocumentStore, error) {
	conn, err := nats.Connect(natsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &JetStreamDocumentStore{
		conn:       conn,
		js:         js,
		bucketName: bucketName,
	}, nil
}

// Init initializes the object store bucket.
func (s *JetStreamDocumentStore) Init(ctx context.Context) error {
	store, err := s.js.ObjectStore(ctx, s.bucketName)
	if err == nil {
		s.store = store
		return nil
	}

	store, err = s.js.CreateObjectStore(ctx, jetstream.ObjectStoreConfig{
		Bucket:      s.bucketName,
		Description: "Task document storage bucket",
	})
	if err != nil {
		return fmt.Errorf("failed to create object store bucket: %w", err)
	}

	s.store = store
	return nil
}

// Put stores a document blob under the given path.
func (s *JetStreamDocumentStore) Put(ctx context.Context, path string, data []byte, contentType string) error {
	meta := jetstream.ObjectMeta{
		Name: path,
		Headers: nats.Header{
			"Content-Type": []string{contentType},
		},
	}

	if _, err := s.store.Put(ctx, meta, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to store object: %w", err)
	}
	return nil
}

// Get retrieves a document blob. A missing blob maps to ErrContentMissing
// so callers can distinguish it from unknown document records.
func (s *JetStreamDocumentStore) Get(ctx context.Context, path string) ([]byte, error) {
	result, err := s.store.Get(ctx, path)
	if err != nil {
		if errors.Is(err, jetstream.ErrObjectNotFound) {
			return nil, domain.ErrContentMissing
		}
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer result.Close()

	data, err := io.ReadAll(result)
	if err != nil {
		return nil, fmt.Errorf("failed to read object data: %w", err)
	}
	return data, nil
}

// Delete removes a document blob.
func (s *JetStreamDocumentStore) Delete(ctx context.Context, path string) error {
	if err := s.store.Delete(ctx, path); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// IsConnected returns whether the NATS connection is active.
func (s *JetStreamDocumentStore) IsConnected() bool {
	return s.conn != nil && s.conn.IsConnected()
}

// Close closes the NATS connection.
func (s *JetStreamDocumentStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	return nil
}
