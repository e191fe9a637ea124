// Package firestore stores intake data in Cloud Firestore using the collection layout of the
// web client: dailyData/{uid}_{date}, dailyTemplates/{uid}, supplementLibraries/{uid}, users/{uid}.
package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	colDays      = "dailyData"
	colTemplates = "dailyTemplates"
	colLibraries = "supplementLibraries"
	colUsers     = "users"
)

// DB wraps a Firestore client shared by the repositories.
type DB struct{ Client *firestore.Client }

// New connects to the project; FIRESTORE_EMULATOR_HOST is honoured by the client library.
func New(ctx context.Context, projectID string) (*DB, error) {
	c, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &DB{Client: c}, nil
}

// Ping issues a minimal read.
func (db *DB) Ping(ctx context.Context) error {
	_, err := db.Client.Collection(colUsers).Limit(1).Documents(ctx).GetAll()
	return err
}

// Close releases the client.
func (db *DB) Close() error { return db.Client.Close() }

func isNotFound(err error) bool { return status.Code(err) == codes.NotFound }
