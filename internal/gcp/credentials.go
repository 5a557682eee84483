// Package gcp resolves Google credentials shared by the Drive and Sheets
// clients.
package gcp

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Scopes are the OAuth scopes needed to read resumes and write rows.
var Scopes = []string{drive.DriveScope, sheets.SpreadsheetsScope}

// Credentials loads a service account key from credentialsFile when one is
// given, and falls back to Application Default Credentials otherwise.
func Credentials(ctx context.Context, credentialsFile string) (*google.Credentials, error) {
	if credentialsFile == "" {
		creds, err := google.FindDefaultCredentials(ctx, Scopes...)
		if err != nil {
			return nil, fmt.Errorf("failed to find default credentials: %w", err)
		}
		return creds, nil
	}

	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file %s: %w", credentialsFile, err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials file %s: %w", credentialsFile, err)
	}
	return creds, nil
}

// ClientOptions returns the options used to build every Google API service
// in the process, so Drive and Sheets share one credential source.
func ClientOptions(ctx context.Context, credentialsFile string) ([]option.ClientOption, error) {
	creds, err := Credentials(ctx, credentialsFile)
	if err != nil {
		return nil, err
	}
	return []option.ClientOption{option.WithCredentials(creds)}, nil
}
