// Package mongodb implements the repository interfaces on MongoDB.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/t3labs/time-tracker-api/internal/repository"
)

const (
	// ColEmployees is the employees collection.
	ColEmployees = "employees"
	// ColProjects is the projects collection.
	ColProjects = "projects"
	// ColTasks is the tasks collection.
	ColTasks = "tasks"
	// ColTimeWindows is the time windows ledger collection.
	ColTimeWindows = "time_windows"
)

type collectionInfo struct {
	name    string
	indexes []mongo.IndexModel
}

var collectionInfos = []collectionInfo{
	{
		name: ColEmployees,
		indexes: []mongo.IndexModel{{
			Keys:    bson.D{{Key: "email", Value: int32(1)}},
			Options: options.Index().SetUnique(true),
		}, {
			Keys: bson.D{{Key: "activation_token", Value: int32(1)}},
			Options: options.Index().SetPartialFilterExpression(
				bson.D{{Key: "activation_token", Value: bson.D{{Key: "$type", Value: "string"}}}},
			),
		}, {
			Keys: bson.D{{Key: "status", Value: int32(1)}},
		}},
	},
	{
		name: ColProjects,
		indexes: []mongo.IndexModel{{
			Keys: bson.D{{Key: "employees", Value: int32(1)}},
		}, {
			Keys: bson.D{{Key: "archived", Value: int32(1)}},
		}},
	},
	{
		name: ColTasks,
		indexes: []mongo.IndexModel{{
			Keys: bson.D{{Key: "project_id", Value: int32(1)}},
		}, {
			Keys: bson.D{{Key: "employees", Value: int32(1)}},
		}},
	},
	{
		name: ColTimeWindows,
		indexes: []mongo.IndexModel{{
			Keys: bson.D{
				{Key: "employee_id", Value: int32(1)},
				{Key: "start", Value: int32(1)},
				{Key: "end", Value: int32(1)},
			},
		}, {
			Keys: bson.D{{Key: "project_id", Value: int32(1)}},
		}, {
			Keys: bson.D{{Key: "task_id", Value: int32(1)}},
		}},
	},
}

// Store holds the Mongo client and database handle.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Dial connects to MongoDB, pings it and ensures the indexes exist.
func Dial(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	if err := ensureIndexes(ctx, db); err != nil {
		return nil, err
	}

	return &Store{client: client, db: db}, nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect mongo: %w", err)
	}
	return nil
}

// Repositories returns the repository set backed by this store.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Employees:   &EmployeeRepository{coll: s.db.Collection(ColEmployees)},
		Projects:    &ProjectRepository{coll: s.db.Collection(ColProjects)},
		Tasks:       &TaskRepository{coll: s.db.Collection(ColTasks)},
		TimeWindows: &TimeWindowRepository{client: s.client, coll: s.db.Collection(ColTimeWindows)},
	}
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, info := range collectionInfos {
		if _, err := db.Collection(info.name).Indexes().CreateMany(ctx, info.indexes); err != nil {
			return fmt.Errorf("create indexes of %s: %w", info.name, err)
		}
	}
	return nil
}
