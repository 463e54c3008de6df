package repository

import (
	"context"
	"errors"
	"fmt"

	"kanban/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const tasksCollection = "tasks"

type taskDoc struct {
	ID     primitive.ObjectID   `bson:"_id,omitempty"`
	Text   string               `bson:"text"`
	Status string               `bson:"status"`
	Owners []primitive.ObjectID `bson:"owners"`
}

func (d *taskDoc) toDomain() domain.Task {
	owners := make([]string, 0, len(d.Owners))
	for _, o := range d.Owners {
		owners = append(owners, o.Hex())
	}
	return domain.Task{
		ID:     d.ID.Hex(),
		Text:   d.Text,
		Status: domain.Status(d.Status),
		Owners: owners,
	}
}

// MongoTaskRepository stores tasks in the "tasks" collection. Owners are
// user ObjectIDs.
type MongoTaskRepository struct {
	coll *mongo.Collection
}

func NewMongoTaskRepository(db *mongo.Database) *MongoTaskRepository {
	return &MongoTaskRepository{coll: db.Collection(tasksCollection)}
}

func (r *MongoTaskRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owners", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create task indexes: %w", err)
	}
	return nil
}

func (r *MongoTaskRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Task, error) {
	res := []domain.Task{}

	oid, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return res, nil
	}

	cur, err := r.coll.Find(ctx, bson.M{"owners": oid}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc taskDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode task: %w", err)
		}
		res = append(res, doc.toDomain())
	}
	return res, cur.Err()
}

func (r *MongoTaskRepository) Create(ctx context.Context, t *domain.Task) error {
	owners, err := toObjectIDs(t.Owners)
	if err != nil {
		return domain.ErrUserNotFound
	}

	doc := taskDoc{
		ID:     primitive.NewObjectID(),
		Text:   t.Text,
		Status: string(t.Status),
		Owners: owners,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	t.ID = doc.ID.Hex()
	return nil
}

func (r *MongoTaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrTaskNotFound
	}

	var doc taskDoc
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find task: %w", err)
	}
	t := doc.toDomain()
	return &t, nil
}

func (r *MongoTaskRepository) Update(ctx context.Context, id string, patch domain.TaskPatch) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrTaskNotFound
	}

	set := bson.M{}
	if patch.Text != nil {
		set["text"] = *patch.Text
	}
	if patch.Status != nil {
		set["status"] = string(*patch.Status)
	}

	var res *mongo.UpdateResult
	if len(set) == 0 {
		// nothing to write, but still report a missing task
		n, err := r.coll.CountDocuments(ctx, bson.M{"_id": oid})
		if err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		res = &mongo.UpdateResult{MatchedCount: n}
	} else {
		res, err = r.coll.UpdateByID(ctx, oid, bson.M{"$set": set})
		if err != nil {
			return fmt.Errorf("update task: %w", err)
		}
	}
	if res.MatchedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *MongoTaskRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrTaskNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// AddOwner pushes ownerID onto the owners array only when it is not there yet.
func (r *MongoTaskRepository) AddOwner(ctx context.Context, id, ownerID string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrTaskNotFound
	}
	uid, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return domain.ErrUserNotFound
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "owners": bson.M{"$ne": uid}},
		bson.M{"$push": bson.M{"owners": uid}},
	)
	if err != nil {
		return fmt.Errorf("share task: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("share task: %w", err)
	}
	if n == 0 {
		return domain.ErrTaskNotFound
	}
	return domain.ErrAlreadyShared
}

func toObjectIDs(ids []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, err
		}
		out = append(out, oid)
	}
	return out, nil
}
