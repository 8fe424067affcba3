// Package database provides the MongoDB connection and the saved-playlist
// store.
package database

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/SonataStudios/SonataLink/pkg/logger"
)

// Database manages the MongoDB connection.
type Database struct {
	client      *mongo.Client
	db          *mongo.Database
	IsConnected bool
	mu          sync.RWMutex
}

var (
	database *Database
	dbOnce   sync.Once
)

// Init initializes the global database instance.
func Init(mongoURL, dbName string) (*Database, error) {
	var err error
	dbOnce.Do(func() {
		database = &Database{}
		err = database.Connect(mongoURL, dbName)
	})
	return database, err
}

// Get returns the global database instance.
func Get() *Database {
	return database
}

// Connect establishes a connection to MongoDB.
func (d *Database) Connect(mongoURL, dbName string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.IsConnected {
		return nil
	}

	logger.System("Connecting to the database...", "DB")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(mongoURL).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		logger.Critical("Failed to connect to the database.", "DB")
		return err
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		logger.Critical("Failed to verify the database connection.", "DB")
		return err
	}

	d.client = client
	d.db = client.Database(dbName)
	d.IsConnected = true

	logger.Success("Connected to the database.", "DB")
	return nil
}

// Disconnect closes the database connection.
func (d *Database) Disconnect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.IsConnected {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := d.client.Disconnect(ctx); err != nil {
		return err
	}
	d.IsConnected = false

	logger.System("Database connection closed.", "DB")
	return nil
}

// Collection returns a collection handle, nil when disconnected.
func (d *Database) Collection(name string) *mongo.Collection {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.db == nil {
		return nil
	}
	return d.db.Collection(name)
}
