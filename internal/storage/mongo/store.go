// Package mongo stores projects and goals in MongoDB. A project document
// embeds its three task buckets, so every write replaces the aggregate.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"insighthub/internal/models"
)

const (
	projectsCollection = "projects"
	goalsCollection    = "goals"
)

type Store struct {
	client   *mongo.Client
	projects *mongo.Collection
	goals    *mongo.Collection
	logger   *slog.Logger
}

// Open connects to uri and pings the server before returning.
func Open(ctx context.Context, uri, database string, logger *slog.Logger) (*Store, error) {
	if uri == "" {
		return nil, fmt.Errorf("empty mongo uri")
	}
	if database == "" {
		database = "insighthub"
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	s := &Store{
		client:   client,
		projects: db.Collection(projectsCollection),
		goals:    db.Collection(goalsCollection),
		logger:   logger,
	}

	_, err = s.goals.Indexes().CreateOne(connectCtx, mongo.IndexModel{Keys: bson.D{{Key: "createdAt", Value: -1}}})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create goal index: %w", err)
	}

	logger.Info("connected to mongo", slog.String("database", database))
	return s, nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// NewID returns a fresh ObjectID in hex form.
func (s *Store) NewID() string { return primitive.NewObjectID().Hex() }

func normalizeProject(p *models.Project) {
	if p.People == nil {
		p.People = []string{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	p.TaskDetails.Normalize()
}

func (s *Store) ListProjects(ctx context.Context) ([]models.Project, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.projects.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve projects: %w", err)
	}
	defer cursor.Close(ctx)

	projects := []models.Project{}
	for cursor.Next(ctx) {
		var p models.Project
		if err := cursor.Decode(&p); err != nil {
			return nil, fmt.Errorf("failed to decode project: %w", err)
		}
		normalizeProject(&p)
		projects = append(projects, p)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return projects, nil
}

func (s *Store) GetProject(ctx context.Context, id string) (models.Project, error) {
	var p models.Project
	err := s.projects.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Project{}, models.NotFound("project", id)
	}
	if err != nil {
		return models.Project{}, fmt.Errorf("get project: %w", err)
	}
	normalizeProject(&p)
	return p, nil
}

func (s *Store) CreateProject(ctx context.Context, p models.Project) (models.Project, error) {
	if p.ID == "" {
		p.ID = s.NewID()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	normalizeProject(&p)

	if _, err := s.projects.InsertOne(ctx, p); err != nil {
		return models.Project{}, fmt.Errorf("failed to create project: %w", err)
	}
	return s.GetProject(ctx, p.ID)
}

// SaveProject replaces the whole document. Concurrent writers are not
// detected: whichever replace lands last wins.
func (s *Store) SaveProject(ctx context.Context, p models.Project) (models.Project, error) {
	p.UpdatedAt = time.Now().UTC()
	normalizeProject(&p)

	res, err := s.projects.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return models.Project{}, fmt.Errorf("failed to save project: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.Project{}, models.NotFound("project", p.ID)
	}
	return s.GetProject(ctx, p.ID)
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	res, err := s.projects.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if res.DeletedCount == 0 {
		return models.NotFound("project", id)
	}
	return nil
}

// ListGoals returns goals newest first.
func (s *Store) ListGoals(ctx context.Context) ([]models.Goal, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := s.goals.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve goals: %w", err)
	}
	defer cursor.Close(ctx)

	goals := []models.Goal{}
	if err := cursor.All(ctx, &goals); err != nil {
		return nil, fmt.Errorf("failed to decode goals: %w", err)
	}
	return goals, nil
}

func (s *Store) GetGoal(ctx context.Context, id string) (models.Goal, error) {
	var g models.Goal
	err := s.goals.FindOne(ctx, bson.M{"_id": id}).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Goal{}, models.NotFound("goal", id)
	}
	if err != nil {
		return models.Goal{}, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

func (s *Store) CreateGoal(ctx context.Context, g models.Goal) (models.Goal, error) {
	if g.ID == "" {
		g.ID = s.NewID()
	}
	now := time.Now().UTC()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	g.UpdatedAt = now

	if _, err := s.goals.InsertOne(ctx, g); err != nil {
		return models.Goal{}, fmt.Errorf("failed to create goal: %w", err)
	}
	return s.GetGoal(ctx, g.ID)
}

func (s *Store) SaveGoal(ctx context.Context, g models.Goal) (models.Goal, error) {
	update := bson.M{"$set": bson.M{
		"title":     g.Title,
		"priority":  g.Priority,
		"completed": g.Completed,
		"updatedAt": time.Now().UTC(),
	}}
	res, err := s.goals.UpdateOne(ctx, bson.M{"_id": g.ID}, update)
	if err != nil {
		return models.Goal{}, fmt.Errorf("failed to update goal: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.Goal{}, models.NotFound("goal", g.ID)
	}
	return s.GetGoal(ctx, g.ID)
}

func (s *Store) DeleteGoal(ctx context.Context, id string) (models.Goal, error) {
	var g models.Goal
	err := s.goals.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Goal{}, models.NotFound("goal", id)
	}
	if err != nil {
		return models.Goal{}, fmt.Errorf("failed to delete goal: %w", err)
	}
	return g, nil
}

func (s *Store) DeleteCompletedGoals(ctx context.Context) (int64, error) {
	res, err := s.goals.DeleteMany(ctx, bson.M{"completed": true})
	if err != nil {
		return 0, fmt.Errorf("failed to delete completed goals: %w", err)
	}
	return res.DeletedCount, nil
}
