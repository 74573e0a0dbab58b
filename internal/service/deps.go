package service

import (
	"context"

	"github.com/stemsi/srms/internal/model"
)

// StatsInvalidator drops cached dashboard figures.
type StatsInvalidator interface {
	Invalidate(ctx context.Context)
}

// ResultPublisher broadcasts result mutations.
type ResultPublisher interface {
	Publish(ctx context.Context, evt model.ResultEvent)
}

// PasswordHasher hashes plaintext passwords.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}
