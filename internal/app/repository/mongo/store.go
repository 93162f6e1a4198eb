package mongo

import (
	"context"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mgo "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	apperrors "lexscribe/internal/app/errors"
	"lexscribe/internal/app/repository"
)

const (
	jobsTable          = "transcription_jobs"
	subscriptionsTable = "subscriptions"
	usersTable         = "users"

	opTimeout = 15 * time.Second
)

type indexData struct {
	table  string
	keys   bson.D
	unique bool
}

var indexes = []indexData{
	{table: jobsTable, keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
	{table: jobsTable, keys: bson.D{{Key: "status", Value: 1}, {Key: "updatedAt", Value: 1}}},
	{table: jobsTable, keys: bson.D{{Key: "expiresAt", Value: 1}}},
	{table: subscriptionsTable, keys: bson.D{{Key: "userId", Value: 1}, {Key: "status", Value: 1}}},
	{table: usersTable, keys: bson.D{{Key: "email", Value: 1}}},
}

// Store implements repository.Store on MongoDB. Billing history is embedded
// in the subscription document.
type Store struct {
	client *mgo.Client
	db     *mgo.Database
	logger *zap.Logger
}

var _ repository.Store = (*Store)(nil)

// NewStore connects to MongoDB and ensures indexes
func NewStore(ctx context.Context, uri, database string, logger *zap.Logger) (*Store, error) {
	logger.Info("Dial mongo", zap.String("url", hidePass(uri)), zap.String("database", database))

	connectCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	client, err := mgo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, apperrors.Mark(err, apperrors.ErrDatabaseConnection)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, apperrors.Mark(err, apperrors.ErrDatabaseConnection)
	}

	s := &Store{client: client, db: client.Database(database), logger: logger}
	if err := s.checkIndexes(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) checkIndexes(ctx context.Context) error {
	for _, index := range indexes {
		model := mgo.IndexModel{
			Keys:    index.keys,
			Options: options.Index().SetUnique(index.unique).SetBackground(true),
		}
		if _, err := s.db.Collection(index.table).Indexes().CreateOne(ctx, model); err != nil {
			return apperrors.Wrapf(err, "can't create index on %s", index.table)
		}
	}
	return nil
}

func (s *Store) coll(ctx context.Context, table string) (*mgo.Collection, context.Context, context.CancelFunc) {
	c, cancel := context.WithTimeout(ctx, opTimeout)
	return s.db.Collection(table), c, cancel
}

// Ping verifies the connection is alive
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func hidePass(s string) string {
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "----")
	}
	return u.String()
}
