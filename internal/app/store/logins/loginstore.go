// internal/app/store/logins/loginstore.go
package loginstore

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/visitdesk/internal/app/system/auditlog"
	"github.com/dalemusser/visitdesk/internal/app/system/ratelimit"
	"github.com/dalemusser/visitdesk/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProviderOTP is the only sign in method: phone plus one-time code.
const ProviderOTP = "otp"

type Store struct {
	c      *mongo.Collection
	phones *auditlog.PhoneHasher
}

// New returns a Store over the login_records collection. phones
// pseudonymizes the phone number of each record.
func New(db *mongo.Database, phones *auditlog.PhoneHasher) *Store {
	return &Store{c: db.Collection("login_records"), phones: phones}
}

// EnsureIndexes creates the indexes used by recent-activity queries.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}

// Create inserts a LoginRecord. If CreatedAt is zero, it's set to time.Now().UTC().
func (s *Store) Create(ctx context.Context, rec models.LoginRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, rec)
	return err
}

// CreateFrom builds a LoginRecord from the HTTP request and inserts it.
func (s *Store) CreateFrom(ctx context.Context, r *http.Request, userID string, role models.Role, phone string) error {
	return s.Create(ctx, models.LoginRecord{
		UserID:    userID,
		Role:      string(role),
		PhoneHash: s.phones.Hash(phone),
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Provider:  ProviderOTP,
	})
}

// Recent returns up to limit records for userID, newest first.
func (s *Store) Recent(ctx context.Context, userID string, limit int64) ([]models.LoginRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.LoginRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
