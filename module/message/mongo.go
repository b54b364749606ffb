package message

import (
	"context"

	"github.com/Ksaikiran28/NexChat/module/message/model"
	"github.com/Ksaikiran28/NexChat/tools/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collMessages = "messages"

// MongoStore is the production Store, one document per message.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(collMessages)}
}

// EnsureIndexes backs the two hot queries: conversation history between a
// pair and unseen lookups per receiver.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "sender_id", Value: 1}, {Key: "receiver_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "receiver_id", Value: 1}, {Key: "seen", Value: 1}}},
	})
	return errs.WrapMsg(err, "ensure message indexes")
}

func (s *MongoStore) Insert(ctx context.Context, m *model.Message) error {
	if _, err := s.coll.InsertOne(ctx, m); err != nil {
		return errs.ErrDatabase.WrapMsg("insert message", "id", m.ID, "err", err)
	}
	return nil
}

func (s *MongoStore) PairMessages(ctx context.Context, userA, userB string) ([]*model.Message, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"sender_id": userA, "receiver_id": userB},
		bson.M{"sender_id": userB, "receiver_id": userA},
	}}
	// oldest first; _id is a snowflake so it breaks created_at ties in
	// insertion order
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errs.ErrDatabase.WrapMsg("find pair messages", "err", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	var out []*model.Message
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.ErrDatabase.WrapMsg("decode pair messages", "err", err)
	}
	return out, nil
}

func (s *MongoStore) GetByID(ctx context.Context, id string) (*model.Message, error) {
	var m model.Message
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, errs.ErrRecordNotFound.WithDetail("message " + id)
	}
	if err != nil {
		return nil, errs.ErrDatabase.WrapMsg("get message", "id", id, "err", err)
	}
	return &m, nil
}

func (s *MongoStore) MarkSeenByID(ctx context.Context, id string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"seen": true}},
	)
	if err != nil {
		return errs.ErrDatabase.WrapMsg("mark seen", "id", id, "err", err)
	}
	if res.MatchedCount == 0 {
		return errs.ErrRecordNotFound.WithDetail("message " + id)
	}
	return nil
}

func (s *MongoStore) MarkSeenByPair(ctx context.Context, receiver, sender string) (int64, error) {
	res, err := s.coll.UpdateMany(ctx,
		bson.M{"sender_id": sender, "receiver_id": receiver, "seen": false},
		bson.M{"$set": bson.M{"seen": true}},
	)
	if err != nil {
		return 0, errs.ErrDatabase.WrapMsg("bulk mark seen", "receiver", receiver, "sender", sender, "err", err)
	}
	return res.ModifiedCount, nil
}

func (s *MongoStore) CountUnseen(ctx context.Context, receiver, sender string) (int64, error) {
	n, err := s.coll.CountDocuments(ctx,
		bson.M{"sender_id": sender, "receiver_id": receiver, "seen": false})
	if err != nil {
		return 0, errs.ErrDatabase.WrapMsg("count unseen", "receiver", receiver, "sender", sender, "err", err)
	}
	return n, nil
}

func (s *MongoStore) UnseenBySender(ctx context.Context, receiver string) (map[string]int64, error) {
	cur, err := s.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"receiver_id": receiver, "seen": false}}},
		{{Key: "$group", Value: bson.M{"_id": "$sender_id", "n": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, errs.ErrDatabase.WrapMsg("aggregate unseen", "receiver", receiver, "err", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	out := make(map[string]int64)
	for cur.Next(ctx) {
		var row struct {
			SenderID string `bson:"_id"`
			N        int64  `bson:"n"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, errs.ErrDatabase.WrapMsg("decode unseen row", "err", err)
		}
		out[row.SenderID] = row.N
	}
	if err := cur.Err(); err != nil {
		return nil, errs.ErrDatabase.WrapMsg("iterate unseen rows", "err", err)
	}
	return out, nil
}

func (s *MongoStore) DeleteByID(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errs.ErrDatabase.WrapMsg("delete message", "id", id, "err", err)
	}
	if res.DeletedCount == 0 {
		return errs.ErrRecordNotFound.WithDetail("message " + id)
	}
	return nil
}
