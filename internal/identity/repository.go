// Package identity resolves the posting credential for a material owner.
package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

//go:generate mockgen -source=repository.go -destination=../mocks/identity/mock_resolver.go -package=mock_identity

// ErrNotFound is returned when no credential is stored for an owner.
var ErrNotFound = errors.New("credential not found")

// Credential is the stored posting identity for one owner. The access token
// is written by the external OAuth callback and only read here.
type Credential struct {
	OwnerID     string    `db:"owner_id"`
	Username    string    `db:"username"`
	AccessToken string    `db:"access_token"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Resolver looks up the posting credential for an owner.
type Resolver interface {
	Resolve(ctx context.Context, ownerID string) (Credential, error)
}

// DBResolver implements Resolver over the credentials table.
type DBResolver struct {
	db *sqlx.DB
}

// NewDBResolver creates a new DBResolver.
func NewDBResolver(db *sqlx.DB) *DBResolver {
	return &DBResolver{db: db}
}

// Resolve returns the credential for an owner, or ErrNotFound.
func (r *DBResolver) Resolve(ctx context.Context, ownerID string) (Credential, error) {
	var cred Credential
	err := r.db.GetContext(ctx, &cred,
		"SELECT * FROM credentials WHERE owner_id = ?", ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return Credential{}, ErrNotFound
	}
	if err != nil {
		return Credential{}, fmt.Errorf("db.GetContext(credential) > %w", err)
	}
	return cred, nil
}

// Upsert stores or refreshes a credential. The OAuth layer calls this after
// a token exchange.
func (r *DBResolver) Upsert(ctx context.Context, cred Credential) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO credentials (owner_id, username, access_token)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE username = VALUES(username), access_token = VALUES(access_token)`,
		cred.OwnerID, cred.Username, cred.AccessToken); err != nil {
		return fmt.Errorf("db.ExecContext(upsert credential) > %w", err)
	}
	return nil
}
