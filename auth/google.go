package auth

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

var ErrInvalidIDToken = errors.New("invalid or revoked Google ID token")

// ExternalIdentity is what a verified Google ID token tells us.
type ExternalIdentity struct {
	UID      string
	Email    string
	FullName string
}

type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (*ExternalIdentity, error)
}

// GoogleVerifier checks Firebase-issued Google sign-in tokens.
type GoogleVerifier struct {
	client    *fbauth.Client
	projectID string
}

func NewGoogleVerifier(ctx context.Context, credentialsJSON, projectID string) (*GoogleVerifier, error) {
	if credentialsJSON == "" || projectID == "" {
		return nil, errors.New("firebase credentials and project id are required")
	}
	app, err := firebase.NewApp(ctx,
		&firebase.Config{ProjectID: projectID},
		option.WithCredentialsJSON([]byte(credentialsJSON)),
	)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}
	return &GoogleVerifier{client: client, projectID: projectID}, nil
}

func (v *GoogleVerifier) Verify(ctx context.Context, idToken string) (*ExternalIdentity, error) {
	if idToken == "" {
		return nil, ErrInvalidIDToken
	}
	token, err := v.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
	}
	if token.Audience != v.projectID {
		return nil, fmt.Errorf("%w: audience %q", ErrInvalidIDToken, token.Audience)
	}
	email, _ := token.Claims["email"].(string)
	if email == "" {
		return nil, fmt.Errorf("%w: no email claim", ErrInvalidIDToken)
	}
	if verified, ok := token.Claims["email_verified"].(bool); ok && !verified {
		return nil, fmt.Errorf("%w: email not verified", ErrInvalidIDToken)
	}
	name, _ := token.Claims["name"].(string)
	return &ExternalIdentity{UID: token.UID, Email: email, FullName: name}, nil
}
