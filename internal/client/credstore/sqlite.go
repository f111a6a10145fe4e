package credstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/juizlab/internal/client/migrations"
	"github.com/dmitrijs2005/juizlab/internal/client/models"
	"github.com/dmitrijs2005/juizlab/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/juizlab/internal/common"
	"github.com/dmitrijs2005/juizlab/internal/cryptox"
	"github.com/dmitrijs2005/juizlab/internal/dbx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

const sealSaltKey = "seal_salt"

// Sealer protects token values at rest.
type Sealer interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

// SQLiteStore keeps the credential in the local SQLite metadata table.
type SQLiteStore struct {
	db     *sql.DB
	sealer Sealer
}

type Option func(*SQLiteStore)

// WithSealer seals token values before they are written.
func WithSealer(s Sealer) Option {
	return func(st *SQLiteStore) { st.sealer = s }
}

// NewSQLiteStore wraps an already migrated database.
func NewSQLiteStore(db *sql.DB, opts ...Option) *SQLiteStore {
	s := &SQLiteStore{db: db}
	for _, o := range opts {
		o(s)
	}
	return s
}

// RunMigrations applies the embedded schema migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.Migrations)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Open opens (creating if needed) the session database at path and applies
// migrations. When keyFile is not empty, token values are sealed with a key
// derived from the file contents and a per-database salt.
func Open(ctx context.Context, path string, keyFile string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := NewSQLiteStore(db)
	if keyFile == "" {
		return s, nil
	}

	salt, err := s.sealSalt(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	sealer, err := cryptox.NewSealerFromKeyFile(keyFile, salt)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.sealer = sealer
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) sealSalt(ctx context.Context) ([]byte, error) {
	var salt []byte
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		v, found, err := repo.Get(ctx, sealSaltKey)
		if err != nil {
			return err
		}
		if found && len(v) > 0 {
			salt = v
			return nil
		}
		salt = common.GenerateRandByteArray(16)
		return repo.Set(ctx, sealSaltKey, salt)
	})
	if err != nil {
		return nil, fmt.Errorf("seal salt: %w", err)
	}
	return salt, nil
}

func (s *SQLiteStore) encode(v string) ([]byte, error) {
	if s.sealer == nil {
		return []byte(v), nil
	}
	return s.sealer.Seal([]byte(v))
}

func (s *SQLiteStore) decode(v []byte) (string, error) {
	if s.sealer == nil {
		return string(v), nil
	}
	plain, err := s.sealer.Open(v)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func (s *SQLiteStore) Save(ctx context.Context, cred models.Credential) error {
	if !cred.Complete() {
		return ErrIncompleteCredential
	}
	access, err := s.encode(cred.AccessToken)
	if err != nil {
		return fmt.Errorf("seal access token: %w", err)
	}
	refresh, err := s.encode(cred.RefreshToken)
	if err != nil {
		return fmt.Errorf("seal refresh token: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.AccessTokenKey, access); err != nil {
			return err
		}
		return repo.Set(ctx, common.RefreshTokenKey, refresh)
	})
	if err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) (models.Credential, bool, error) {
	var cred models.Credential
	var ok bool

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		cred, ok, err = s.load(ctx, metadata.NewSQLiteRepository(tx))
		return err
	})
	if err != nil {
		return models.Credential{}, false, fmt.Errorf("load credential: %w", err)
	}
	return cred, ok, nil
}

func (s *SQLiteStore) load(ctx context.Context, repo metadata.Repository) (models.Credential, bool, error) {
	access, haveAccess, err := repo.Get(ctx, common.AccessTokenKey)
	if err != nil {
		return models.Credential{}, false, err
	}
	refresh, haveRefresh, err := repo.Get(ctx, common.RefreshTokenKey)
	if err != nil {
		return models.Credential{}, false, err
	}
	if !haveAccess || !haveRefresh {
		return models.Credential{}, false, nil
	}

	var cred models.Credential
	if cred.AccessToken, err = s.decode(access); err != nil {
		return models.Credential{}, false, fmt.Errorf("open access token: %w", err)
	}
	if cred.RefreshToken, err = s.decode(refresh); err != nil {
		return models.Credential{}, false, fmt.Errorf("open refresh token: %w", err)
	}
	if !cred.Complete() {
		return models.Credential{}, false, nil
	}
	return cred, true, nil
}

func (s *SQLiteStore) Replace(ctx context.Context, old, cred models.Credential) (bool, error) {
	if !cred.Complete() {
		return false, ErrIncompleteCredential
	}
	access, err := s.encode(cred.AccessToken)
	if err != nil {
		return false, fmt.Errorf("seal access token: %w", err)
	}
	refresh, err := s.encode(cred.RefreshToken)
	if err != nil {
		return false, fmt.Errorf("seal refresh token: %w", err)
	}

	var swapped bool
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		cur, ok, err := s.load(ctx, repo)
		if err != nil || !ok || cur != old {
			return err
		}
		if err := repo.Set(ctx, common.AccessTokenKey, access); err != nil {
			return err
		}
		if err := repo.Set(ctx, common.RefreshTokenKey, refresh); err != nil {
			return err
		}
		swapped = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("replace credential: %w", err)
	}
	return swapped, nil
}

func (s *SQLiteStore) ClearIf(ctx context.Context, old models.Credential) (bool, error) {
	var cleared bool
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		cur, ok, err := s.load(ctx, repo)
		if err != nil || !ok || cur != old {
			return err
		}
		if err := repo.Delete(ctx, common.AccessTokenKey, common.RefreshTokenKey, common.CachedIdentityKey); err != nil {
			return err
		}
		cleared = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("clear credential: %w", err)
	}
	return cleared, nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).Delete(ctx,
			common.AccessTokenKey, common.RefreshTokenKey, common.CachedIdentityKey)
	})
	if err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

func (s *SQLiteStore) CacheIdentity(ctx context.Context, id models.Identity) error {
	b, err := json.Marshal(id)
	if err != nil {
		return err
	}
	if err := metadata.NewSQLiteRepository(s.db).Set(ctx, common.CachedIdentityKey, b); err != nil {
		return fmt.Errorf("cache identity: %w", err)
	}
	return nil
}

func (s *SQLiteStore) CacheIdentityFor(ctx context.Context, cred models.Credential, id models.Identity) (bool, error) {
	b, err := json.Marshal(id)
	if err != nil {
		return false, err
	}

	var cached bool
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		cur, ok, err := s.load(ctx, repo)
		if err != nil || !ok || cur != cred {
			return err
		}
		if err := repo.Set(ctx, common.CachedIdentityKey, b); err != nil {
			return err
		}
		cached = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("cache identity: %w", err)
	}
	return cached, nil
}

func (s *SQLiteStore) LoadCachedIdentity(ctx context.Context) (models.Identity, bool, error) {
	b, found, err := metadata.NewSQLiteRepository(s.db).Get(ctx, common.CachedIdentityKey)
	if err != nil || !found {
		return models.Identity{}, false, err
	}
	var id models.Identity
	if err := json.Unmarshal(b, &id); err != nil {
		return models.Identity{}, false, fmt.Errorf("decode cached identity: %w", err)
	}
	return id, true, nil
}
