package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps tasks as documents in a MongoDB collection.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore creates a MongoStore over the given collection.
func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

type mongoTask struct {
	ID          string     `bson:"_id"`
	Title       string     `bson:"title"`
	Description string     `bson:"description"`
	Priority    string     `bson:"priority"`
	Completed   bool       `bson:"completed"`
	DueDate     *time.Time `bson:"dueDate,omitempty"`
	CreatedAt   time.Time  `bson:"createdAt"`
}

func (d mongoTask) task() *Task {
	t := &Task{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Priority:    Priority(d.Priority),
		Completed:   d.Completed,
		CreatedAt:   d.CreatedAt.UTC(),
	}
	if d.DueDate != nil {
		due := d.DueDate.UTC()
		t.DueDate = &due
	}
	return t
}

// EnsureTable creates the createdAt index used for listing.
func (s *MongoStore) EnsureTable(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("ensure tasks index: %w", err)
	}
	return nil
}

// Create inserts a new task document.
func (s *MongoStore) Create(ctx context.Context, d Draft) (*Task, error) {
	t := newTask(d)
	// BSON dates carry millisecond precision
	t.CreatedAt = t.CreatedAt.Truncate(time.Millisecond)
	doc := mongoTask{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Completed:   t.Completed,
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

// Get retrieves a single task by ID.
func (s *MongoStore) Get(ctx context.Context, id string) (*Task, error) {
	t, err := decodeMongoTask(s.coll.FindOne(ctx, bson.M{"_id": id}))
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return t, nil
}

// List returns all tasks, newest first.
func (s *MongoStore) List(ctx context.Context) ([]Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	var docs []mongoTask
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	tasks := make([]Task, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, *d.task())
	}
	return tasks, nil
}

// Update applies a partial update with $set / $unset.
func (s *MongoStore) Update(ctx context.Context, id string, p Patch) (*Task, error) {
	if p.Empty() {
		return s.Get(ctx, id)
	}
	set := bson.M{}
	unset := bson.M{}
	if p.Title != nil {
		set["title"] = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Priority != nil {
		set["priority"] = string(*p.Priority)
	}
	if p.Completed != nil {
		set["completed"] = *p.Completed
	}
	if p.DueDate.Set {
		if p.DueDate.Time == nil {
			unset["dueDate"] = ""
		} else {
			set["dueDate"] = p.DueDate.Time.UTC()
		}
	}
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	t, err := decodeMongoTask(s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts))
	if err != nil {
		return nil, fmt.Errorf("update task %s: %w", id, err)
	}
	return t, nil
}

// Delete removes a task document.
func (s *MongoStore) Delete(ctx context.Context, id string) (*Task, error) {
	t, err := decodeMongoTask(s.coll.FindOneAndDelete(ctx, bson.M{"_id": id}))
	if err != nil {
		return nil, fmt.Errorf("delete task %s: %w", id, err)
	}
	return t, nil
}

// Toggle flips completion atomically with an aggregation-pipeline update.
func (s *MongoStore) Toggle(ctx context.Context, id string) (*Task, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{"completed": bson.M{"$not": bson.A{"$completed"}}}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	t, err := decodeMongoTask(s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, pipeline, opts))
	if err != nil {
		return nil, fmt.Errorf("toggle task %s: %w", id, err)
	}
	return t, nil
}

func decodeMongoTask(res *mongo.SingleResult) (*Task, error) {
	var d mongoTask
	if err := res.Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return d.task(), nil
}
