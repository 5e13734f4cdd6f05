package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/authcore/account-service/internal/core/domain"
	"github.com/authcore/account-service/internal/core/ports"
)

const accountCollection = "accounts"

// AccountStore implements ports.AccountStore on a MongoDB collection. The
// unique index on username (see EnsureIndexes) makes Create atomic under
// concurrent registration.
type AccountStore struct {
	coll *mongo.Collection
}

var _ ports.AccountStore = (*AccountStore)(nil)

func NewAccountStore(db *mongo.Database) *AccountStore {
	return &AccountStore{coll: db.Collection(accountCollection)}
}

// EnsureIndexes creates the unique username index. Call once at startup.
func (s *AccountStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create username index: %w", err)
	}
	return nil
}

type accountDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Username      string             `bson:"username"`
	Email         string             `bson:"email"`
	PasswordHash  string             `bson:"password_hash"`
	EmailVerified bool               `bson:"email_verified"`
	VerifyToken   string             `bson:"verify_token"`
	ResetToken    string             `bson:"reset_token"`
	CreatedAt     int64              `bson:"created_at"`
	UpdatedAt     int64              `bson:"updated_at"`
}

func (s *AccountStore) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	doc := accountDoc{
		Username:      account.Username,
		Email:         account.Email,
		PasswordHash:  account.PasswordHash,
		EmailVerified: account.EmailVerified,
		VerifyToken:   account.VerifyToken,
		ResetToken:    account.ResetToken,
		CreatedAt:     account.CreatedAt.Unix(),
		UpdatedAt:     account.UpdatedAt.Unix(),
	}

	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, &domain.UserExistsError{Username: account.Username}
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	created := *account
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (s *AccountStore) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	var doc accountDoc
	if err := s.coll.FindOne(ctx, bson.M{"username": username}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	return &domain.Account{
		ID:            doc.ID.Hex(),
		Username:      doc.Username,
		Email:         doc.Email,
		PasswordHash:  doc.PasswordHash,
		EmailVerified: doc.EmailVerified,
		VerifyToken:   doc.VerifyToken,
		ResetToken:    doc.ResetToken,
		CreatedAt:     unixToTime(doc.CreatedAt),
		UpdatedAt:     unixToTime(doc.UpdatedAt),
	}, nil
}

// MarkVerified flips the verified flag and clears the verification token in
// a single document update.
func (s *AccountStore) MarkVerified(ctx context.Context, username string) error {
	return s.update(ctx, username, bson.M{
		"email_verified": true,
		"verify_token":   "",
	})
}

func (s *AccountStore) SetVerifyToken(ctx context.Context, username, token string) error {
	return s.update(ctx, username, bson.M{"verify_token": token})
}

func (s *AccountStore) SetResetToken(ctx context.Context, username, token string) error {
	return s.update(ctx, username, bson.M{"reset_token": token})
}

// SetPassword swaps the hash and clears the reset token in a single document
// update, keeping the token single-use.
func (s *AccountStore) SetPassword(ctx context.Context, username, passwordHash string) error {
	return s.update(ctx, username, bson.M{
		"password_hash": passwordHash,
		"reset_token":   "",
	})
}

func (s *AccountStore) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}

func (s *AccountStore) update(ctx context.Context, username string, fields bson.M) error {
	fields["updated_at"] = time.Now().UTC().Unix()
	res, err := s.coll.UpdateOne(ctx, bson.M{"username": username}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
