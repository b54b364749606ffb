package user

import (
	"context"
	"sync"

	"github.com/Ksaikiran28/NexChat/module/user/model"
	"github.com/Ksaikiran28/NexChat/tools/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store persists accounts. The message module only needs ListOthers to
// build the sidebar; the rest serves signup/login/profile.
type Store interface {
	Insert(ctx context.Context, u *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, id string, fullName, bio, profilePic string) (*model.User, error)
	ListOthers(ctx context.Context, excludeID string) ([]*model.User, error)
}

const collUsers = "users"

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(collUsers)}
}

func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return errs.WrapMsg(err, "ensure user indexes")
}

func (s *MongoStore) Insert(ctx context.Context, u *model.User) error {
	if _, err := s.coll.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errs.ErrDuplicate.WithDetail("email " + u.Email)
		}
		return errs.ErrDatabase.WrapMsg("insert user", "err", err)
	}
	return nil
}

func (s *MongoStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, errs.ErrRecordNotFound.WithDetail("user " + email)
	}
	if err != nil {
		return nil, errs.ErrDatabase.WrapMsg("find user by email", "err", err)
	}
	return &u, nil
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, errs.ErrRecordNotFound.WithDetail("user " + id)
	}
	if err != nil {
		return nil, errs.ErrDatabase.WrapMsg("find user by id", "err", err)
	}
	return &u, nil
}

func (s *MongoStore) UpdateProfile(ctx context.Context, id, fullName, bio, profilePic string) (*model.User, error) {
	set := bson.M{}
	if fullName != "" {
		set["full_name"] = fullName
	}
	if bio != "" {
		set["bio"] = bio
	}
	if profilePic != "" {
		set["profile_pic"] = profilePic
	}
	if len(set) == 0 {
		return s.FindByID(ctx, id)
	}

	res := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var u model.User
	if err := res.Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errs.ErrRecordNotFound.WithDetail("user " + id)
		}
		return nil, errs.ErrDatabase.WrapMsg("update profile", "err", err)
	}
	return &u, nil
}

func (s *MongoStore) ListOthers(ctx context.Context, excludeID string) ([]*model.User, error) {
	cur, err := s.coll.Find(ctx,
		bson.M{"_id": bson.M{"$ne": excludeID}},
		options.Find().SetSort(bson.D{{Key: "full_name", Value: 1}}),
	)
	if err != nil {
		return nil, errs.ErrDatabase.WrapMsg("list users", "err", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	var out []*model.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.ErrDatabase.WrapMsg("decode users", "err", err)
	}
	return out, nil
}

// MemoryStore backs tests and store-less dev runs.
type MemoryStore struct {
	mu   sync.Mutex
	byID map[string]*model.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]*model.User)}
}

func (s *MemoryStore) Insert(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.byID {
		if e.Email == u.Email {
			return errs.ErrDuplicate.WithDetail("email " + u.Email)
		}
	}
	cp := *u
	s.byID[u.ID] = &cp
	return nil
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, errs.ErrRecordNotFound.WithDetail("user " + email)
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, errs.ErrRecordNotFound.WithDetail("user " + id)
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) UpdateProfile(_ context.Context, id, fullName, bio, profilePic string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, errs.ErrRecordNotFound.WithDetail("user " + id)
	}
	if fullName != "" {
		u.FullName = fullName
	}
	if bio != "" {
		u.Bio = bio
	}
	if profilePic != "" {
		u.ProfilePic = profilePic
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) ListOthers(_ context.Context, excludeID string) ([]*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.User
	for _, u := range s.byID {
		if u.ID != excludeID {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}
