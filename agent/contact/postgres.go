package contact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	contractx "github.com/tanpawarit/contact-assistant/agent/contract"
)

const (
	uniqueViolationCode = "23505"
	defaultDBTimeout    = 10 * time.Second
)

var _ Store = (*BunStore)(nil)

type PostgresConfig struct {
	DSN         string        `envconfig:"DSN" split_words:"true" required:"true"`
	Timeout     time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
	AutoMigrate bool          `envconfig:"AUTO_MIGRATE" split_words:"true" default:"true"`
}

// Validate checks the DSN up front since pgdriver panics on a malformed one.
func (c PostgresConfig) Validate() error {
	dsn := strings.TrimSpace(c.DSN)
	if dsn == "" {
		return fmt.Errorf("%w: database dsn is required", contractx.ErrConfiguration)
	}
	parsed, err := url.Parse(dsn)
	if err != nil {
		return fmt.Errorf("%w: invalid database dsn: %v", contractx.ErrConfiguration, err)
	}
	if parsed.Scheme != "postgres" && parsed.Scheme != "postgresql" {
		return fmt.Errorf("%w: unsupported database scheme %q", contractx.ErrConfiguration, parsed.Scheme)
	}
	return nil
}

// OpenPostgres builds a bun.DB over pgdriver. The connection is established lazily.
func OpenPostgres(cfg PostgresConfig) (*bun.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dsn := strings.TrimSpace(cfg.DSN)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultDBTimeout
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithTimeout(timeout),
	))
	db := bun.NewDB(sqldb, pgdialect.New())
	db.AddQueryHook(queryLogHook{})
	return db, nil
}

// Migrate creates the contacts table when it does not exist yet.
func Migrate(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().Model((*Contact)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create contacts table: %w", err)
	}
	return nil
}

// BunStore persists contacts in PostgreSQL through bun.
type BunStore struct {
	db *bun.DB
}

func NewBunStore(db *bun.DB) (*BunStore, error) {
	if db == nil {
		return nil, errors.New("bun db is required")
	}
	return &BunStore{db: db}, nil
}

func (s *BunStore) FindByEmail(ctx context.Context, email string) (*Contact, error) {
	c := new(Contact)
	err := s.db.NewSelect().
		Model(c).
		Where("c.email = ?", email).
		OrderExpr("c.id ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("contact with email %q", email))
	}
	return c, nil
}

func (s *BunStore) FindByName(ctx context.Context, name string) (*Contact, error) {
	c := new(Contact)
	err := s.db.NewSelect().
		Model(c).
		Where("c.name = ?", name).
		OrderExpr("c.id ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("contact with name %q", name))
	}
	return c, nil
}

func (s *BunStore) Insert(ctx context.Context, in NewContact) (*Contact, error) {
	c := &Contact{
		Name:            in.Name,
		Email:           in.Email,
		Phone:           in.Phone,
		Notes:           in.Notes,
		LastContactedAt: in.LastContactedAt,
	}
	if _, err := s.db.NewInsert().Model(c).Returning("*").Exec(ctx); err != nil {
		return nil, mapError(err, "insert contact")
	}
	return c, nil
}

func (s *BunStore) Update(ctx context.Context, id int64, patch Patch) (*Contact, error) {
	if patch.IsEmpty() {
		return s.Get(ctx, id)
	}

	c := &Contact{ID: id}
	patch.Apply(c)
	err := s.db.NewUpdate().
		Model(c).
		Column(patch.Columns()...).
		WherePK().
		Returning("*").
		Scan(ctx)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("contact id=%d", id))
	}
	return c, nil
}

func (s *BunStore) Search(ctx context.Context, query string) ([]Contact, error) {
	pattern := likePattern(query)
	out := make([]Contact, 0)
	err := s.db.NewSelect().
		Model(&out).
		Where("c.name ILIKE ? OR c.email ILIKE ? OR c.notes ILIKE ?", pattern, pattern, pattern).
		OrderExpr("c.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, mapError(err, "search contacts")
	}
	return out, nil
}

func (s *BunStore) Get(ctx context.Context, id int64) (*Contact, error) {
	c := new(Contact)
	if err := s.db.NewSelect().Model(c).Where("c.id = ?", id).Scan(ctx); err != nil {
		return nil, mapError(err, fmt.Sprintf("contact id=%d", id))
	}
	return c, nil
}

func (s *BunStore) List(ctx context.Context, filter ListFilter) ([]Contact, error) {
	out := make([]Contact, 0)
	q := s.db.NewSelect().Model(&out).OrderExpr("c.id ASC")
	if filter.Query != "" {
		pattern := likePattern(filter.Query)
		q = q.Where("c.name ILIKE ? OR c.email ILIKE ?", pattern, pattern)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, mapError(err, "list contacts")
	}
	return out, nil
}

func (s *BunStore) Delete(ctx context.Context, id int64) (*Contact, error) {
	c := &Contact{ID: id}
	if err := s.db.NewDelete().Model(c).WherePK().Returning("*").Scan(ctx); err != nil {
		return nil, mapError(err, fmt.Sprintf("contact id=%d", id))
	}
	return c, nil
}

func mapError(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", contractx.ErrNotFound, what)
	}
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) && pgErr.Field('C') == uniqueViolationCode {
		return fmt.Errorf("%w: a contact with this email already exists", contractx.ErrConflict)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// likePattern wraps query in wildcards and escapes LIKE metacharacters so they
// match literally.
func likePattern(query string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(query)
	return "%" + escaped + "%"
}

type queryLogHook struct{}

func (queryLogHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (queryLogHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	logger := log.Debug()
	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		logger = log.Warn().Err(event.Err)
	}
	logger.
		Str("operation", event.Operation()).
		Dur("duration", time.Since(event.StartTime)).
		Str("query", event.Query).
		Msg("contact store query")
}
