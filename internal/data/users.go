// Package data provides DB models and stores.
package data

import (
	"context"
	"errors"
	"time"

	"github.com/linguachat/linguachat/internal/normalize"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// ErrUserExists is returned when a signup collides with an existing email.
var ErrUserExists = errors.New("user already exists")

// ErrUserNotFound is returned when a user lookup matches no document.
var ErrUserNotFound = errors.New("user not found")

// UsersStore performs user DB operations.
type UsersStore struct {
	coll *mongo.Collection
}

// NewUsersStore returns a UsersStore using the provided collection.
func NewUsersStore(coll *mongo.Collection) *UsersStore {
	return &UsersStore{coll: coll}
}

// CreateUser inserts a new user document. The password must already be
// hashed; the email is stored in normalized form.
func (u *UsersStore) CreateUser(ctx context.Context, email, hashedPassword, name, lang, phone string) (*User, error) {
	now := time.Now()
	user := &User{
		Email:     normalize.Email(email),
		Password:  hashedPassword,
		Name:      name,
		Lang:      normalize.Lang(lang),
		Phone:     phone,
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := u.coll.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	user.ID = result.InsertedID.(bson.ObjectID)
	return user, nil
}

// GetUserByEmail finds a user by normalized email.
func (u *UsersStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := u.coll.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByID finds a user by its hex document id.
func (u *UsersStore) GetUserByID(ctx context.Context, id string) (*User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}

	var user User
	err = u.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers returns every user document. Search filters the result
// in-process, which keeps the store at a single full scan the way the
// rest of the queries stay simple; an index-backed search would be the
// first change if the user count grows.
func (u *UsersStore) ListUsers(ctx context.Context) ([]*User, error) {
	cursor, err := u.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []*User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
