// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	reportstore "github.com/dalemusser/runtracker/internal/app/store/reports"
	userstore "github.com/dalemusser/runtracker/internal/app/store/users"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll, logger); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if err := setValidator(ctx, db, coll, schema, logger); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				logger.Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure(userstore.Collection, usersSchema())
	ensure(reportstore.Collection, reportsSchema())

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers ---------------------- */

func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string, logger *zap.Logger) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		logger.Debug("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			return false, nil
		}
		logger.Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	logger.Info("created collection", zap.String("collection", name))
	return true, nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M, logger *zap.Logger) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	logger.Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 59 {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 115 {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var (
	intType      = bson.A{"int", "long"}
	nonNegInt    = bson.M{"bsonType": intType, "minimum": 0}
	nonBlankText = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}
)

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"streak_data", "created_at"},
			"properties": bson.M{
				"name":       bson.M{"bsonType": "string"},
				"email":      bson.M{"bsonType": "string"},
				"goal":       bson.M{"bsonType": "string", "maxLength": 500},
				"created_at": bson.M{"bsonType": "date"},
				"streak_data": bson.M{
					"bsonType": "object",
					"properties": bson.M{
						"current_streak":  nonNegInt,
						"longest_streak":  nonNegInt,
						"total_reports":   nonNegInt,
						"completion_rate": bson.M{"bsonType": intType, "minimum": 0, "maximum": 100},
						"active_calendar_days": bson.M{
							"bsonType": bson.A{"array", "null"},
							"items":    bson.M{"bsonType": intType, "minimum": 1, "maximum": 31},
						},
						"last_active_date": bson.M{
							"bsonType": bson.A{"string", "null"},
							"pattern":  "^\\d{4}-\\d{2}-\\d{2}$",
						},
						"active_month": bson.M{
							"bsonType": "string",
							"pattern":  "^\\d{4}-\\d{2}$",
						},
						"active_dates": bson.M{
							"bsonType": bson.A{"array", "null"},
							"items":    bson.M{"bsonType": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$"},
						},
					},
				},
			},
		},
	}
}

func reportsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "book_title", "created_at"},
			"properties": bson.M{
				"user_id":    nonBlankText,
				"book_title": nonBlankText,
				"created_at": bson.M{"bsonType": "date"},
				"action_items": bson.M{
					"bsonType": bson.A{"array", "null"},
					"items": bson.M{
						"bsonType": "object",
						"required": bson.A{"text"},
						"properties": bson.M{
							"text":      bson.M{"bsonType": "string"},
							"completed": bson.M{"bsonType": "bool"},
						},
					},
				},
			},
		},
	}
}
