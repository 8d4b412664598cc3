// Package firebase initializes the Firebase app and the clients this
// backend talks to: Firestore (document store), Auth (ID-token
// verification) and the Cloud Storage bucket for uploaded images.
package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Config holds the Firebase project settings.
type Config struct {
	ProjectID       string
	CredentialsFile string // optional; default credential chain when empty
	StorageBucket   string // optional; uploads are disabled when empty
}

// Clients bundles the initialized Firebase service clients.
type Clients struct {
	App       *firebase.App
	Firestore *firestore.Client
	Auth      *auth.Client
	Bucket    *gcs.BucketHandle // nil when no bucket is configured
}

// New initializes the Firebase app and its service clients.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Clients, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.ProjectID,
		StorageBucket: cfg.StorageBucket,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth client: %w", err)
	}

	clients := &Clients{App: app, Firestore: fs, Auth: authClient}

	if cfg.StorageBucket != "" {
		storageClient, err := app.Storage(ctx)
		if err != nil {
			return nil, fmt.Errorf("storage client: %w", err)
		}
		bucket, err := storageClient.DefaultBucket()
		if err != nil {
			return nil, fmt.Errorf("storage bucket: %w", err)
		}
		clients.Bucket = bucket
	} else {
		logger.Warn("no storage bucket configured, image uploads disabled")
	}

	logger.Info("Firebase clients initialized", zap.String("project_id", cfg.ProjectID))
	return clients, nil
}

// Close releases the Firestore client connection.
func (c *Clients) Close() error {
	return c.Firestore.Close()
}
