package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	domain "user-crud-service/internal/domain/user"
	pkgerrors "user-crud-service/pkg/errors"
	"user-crud-service/pkg/security"
)

const msgUserNotFound = "User not found"

// userDocument is the stored shape of a user.
type userDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Age       *int               `bson:"age,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Email:     d.Email,
		Age:       d.Age,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// UserRepoMongo implements the user Repository on a MongoDB collection.
type UserRepoMongo struct {
	coll *mongo.Collection
	log  *zap.Logger
	now  func() time.Time
}

// NewUserRepoMongo creates a repository over coll.
func NewUserRepoMongo(coll *mongo.Collection, log *zap.Logger) *UserRepoMongo {
	return &UserRepoMongo{
		coll: coll,
		log:  log,
		now:  func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// EnsureIndexes creates the unique index on email.
func (r *UserRepoMongo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return pkgerrors.NewInternalError("failed to create email index", err)
	}
	return nil
}

// Ping checks connectivity to the primary.
func (r *UserRepoMongo) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}

// List returns users in natural order, optionally filtered by a
// case-insensitive substring of name or email.
func (r *UserRepoMongo) List(ctx context.Context, query string) ([]domain.User, error) {
	cur, err := r.coll.Find(ctx, searchFilter(query))
	if err != nil {
		r.log.Error("failed to list users from mongo", zap.Error(err), zap.String("query", query))
		return nil, pkgerrors.NewInternalError("failed to list users", err)
	}

	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, pkgerrors.NewInternalError("failed to decode users", err)
	}

	users := make([]domain.User, len(docs))
	for i := range docs {
		users[i] = *docs[i].toDomain()
	}
	return users, nil
}

func searchFilter(query string) bson.M {
	if query == "" {
		return bson.M{}
	}
	pattern := primitive.Regex{Pattern: security.EscapeRegex(query), Options: "i"}
	return bson.M{"$or": bson.A{
		bson.M{"name": pattern},
		bson.M{"email": pattern},
	}}
}

// GetByID returns the user with the given hex ObjectID. Malformed ids resolve to not found.
func (r *UserRepoMongo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, pkgerrors.NewNotFoundError("user", msgUserNotFound)
	}

	var doc userDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, pkgerrors.NewNotFoundError("user", msgUserNotFound)
		}
		r.log.Error("failed to get user from mongo", zap.Error(err), zap.String("id", id))
		return nil, pkgerrors.NewInternalError("failed to get user", err)
	}
	return doc.toDomain(), nil
}

// GetByEmail returns nil, nil when no user has the email.
func (r *UserRepoMongo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var doc userDocument
	err := r.coll.FindOne(ctx, bson.M{"email": domain.NormalizeEmail(email)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.log.Error("failed to get user by email from mongo", zap.Error(err), zap.String("email", email))
		return nil, pkgerrors.NewInternalError("failed to get user by email", err)
	}
	return doc.toDomain(), nil
}

// Create validates and inserts a new user document.
func (r *UserRepoMongo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}

	candidate := *u
	candidate.Normalize()
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	now := r.now()
	doc := userDocument{
		ID:        primitive.NewObjectID(),
		Name:      candidate.Name,
		Email:     candidate.Email,
		Age:       candidate.Age,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, pkgerrors.NewAlreadyExistsError("user", "email already exists")
		}
		r.log.Error("failed to insert user into mongo", zap.Error(err), zap.String("email", doc.Email))
		return nil, pkgerrors.NewInternalError("failed to create user", err)
	}

	r.log.Debug("user inserted into mongo", zap.String("id", doc.ID.Hex()))
	return doc.toDomain(), nil
}

// Update sets only the supplied fields and returns the post-update document.
func (r *UserRepoMongo) Update(ctx context.Context, id string, p domain.UserPatch) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, pkgerrors.NewNotFoundError("user", msgUserNotFound)
	}

	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": r.now()}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Email != nil {
		set["email"] = *p.Email
	}
	if p.Age != nil {
		set["age"] = *p.Age
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, pkgerrors.NewNotFoundError("user", msgUserNotFound)
		case mongo.IsDuplicateKeyError(err):
			return nil, pkgerrors.NewAlreadyExistsError("user", "email already exists")
		}
		r.log.Error("failed to update user in mongo", zap.Error(err), zap.String("id", id))
		return nil, pkgerrors.NewInternalError("failed to update user", err)
	}

	return doc.toDomain(), nil
}

// Delete removes the document and returns it.
func (r *UserRepoMongo) Delete(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, pkgerrors.NewNotFoundError("user", msgUserNotFound)
	}

	var doc userDocument
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, pkgerrors.NewNotFoundError("user", msgUserNotFound)
		}
		r.log.Error("failed to delete user from mongo", zap.Error(err), zap.String("id", id))
		return nil, pkgerrors.NewInternalError("failed to delete user", err)
	}

	return doc.toDomain(), nil
}
