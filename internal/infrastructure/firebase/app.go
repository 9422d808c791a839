// Package firebase bootstraps the Firebase app and serves the table contract
// from Cloud Firestore.
package firebase

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"nearbasket/pkg/logger"
)

// NewFirestore initializes the Firebase app for projectID and returns its
// Firestore client. Credentials come from FIREBASE_SERVICE_ACCOUNT_JSON when
// set, then credentialsPath, then application default credentials.
func NewFirestore(ctx context.Context, projectID, credentialsPath string) (*firestore.Client, error) {
	var opts []option.ClientOption
	if serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); serviceAccountJSON != "" {
		logger.Info("Using Firebase service account from environment variable")
		opts = append(opts, option.WithCredentialsJSON([]byte(serviceAccountJSON)))
	} else if credentialsPath != "" {
		if _, err := os.Stat(credentialsPath); err != nil {
			return nil, fmt.Errorf("service account file %s: %w", credentialsPath, err)
		}
		logger.Info("Using Firebase service account from file: %s", credentialsPath)
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	app, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	return client, nil
}
