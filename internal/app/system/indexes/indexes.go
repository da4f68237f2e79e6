// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	reportstore "github.com/dalemusser/runtracker/internal/app/store/reports"
	userstore "github.com/dalemusser/runtracker/internal/app/store/users"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup when the Mongo backend is selected. Each
ensure* function is idempotent. Errors are aggregated so every problem
is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string

	if err := ensureReports(ctx, db, logger); err != nil {
		problems = append(problems, reportstore.Collection+": "+err.Error())
	}
	if err := ensureUsers(ctx, db, logger); err != nil {
		problems = append(problems, userstore.Collection+": "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func isUnique(b *bool) bool { return b != nil && *b }

func listIndexes(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var all []existingIndex
	if err := cur.All(ctx, &all); err != nil {
		return nil, err
	}
	bySig := make(map[string]existingIndex, len(all))
	for _, idx := range all {
		// keys are compared as int32 by the server; normalise before signing
		bySig[keySig(normalizeKeys(idx.Key))] = idx
	}
	return bySig, nil
}

func normalizeKeys(keys bson.D) bson.D {
	out := make(bson.D, len(keys))
	for i, kv := range keys {
		switch v := kv.Value.(type) {
		case int32:
			out[i] = bson.E{Key: kv.Key, Value: int(v)}
		case int64:
			out[i] = bson.E{Key: kv.Key, Value: int(v)}
		case float64:
			out[i] = bson.E{Key: kv.Key, Value: int(v)}
		default:
			out[i] = kv
		}
	}
	return out
}

// ensureIndexSet reconciles the desired indexes of one collection: an
// index with the same keys and uniqueness is reused (renamed if the name
// differs), one with different options is dropped and recreated, and a
// missing one is created.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, logger *zap.Logger, models []mongo.IndexModel) error {
	existing, err := listIndexes(ctx, coll)
	if err != nil {
		// collection may not exist yet; CreateOne creates it
		existing = map[string]existingIndex{}
	}

	var errs []string
	for _, m := range models {
		name := ""
		var unique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			unique = m.Options.Unique
		}
		sig := keySig(normalizeKeys(m.Keys.(bson.D)))
		log := logger.With(
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", isUnique(unique)))
		start := time.Now()

		if ex, ok := existing[sig]; ok {
			if isUnique(unique) == isUnique(ex.Unique) && (name == "" || ex.Name == name) {
				log.Debug("reusing existing index")
				continue
			}
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				log.Warn("drop existing index failed", zap.String("existing", ex.Name), zap.Error(err))
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), name, err))
				continue
			}
			log.Info("dropped index for recreate", zap.String("existing", ex.Name))
		}

		created, err := coll.Indexes().CreateOne(ctx, m)
		if err != nil {
			log.Warn("index ensure failed", zap.Duration("took", time.Since(start)), zap.Error(err))
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			continue
		}
		log.Info("index ensured", zap.String("created_name", created), zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Reports are listed per user, newest first, on every dashboard load.
func ensureReports(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection(reportstore.Collection), logger, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_reports_user_created"),
		},
	})
}

// Profiles are keyed by _id; email is only looked up by operators.
func ensureUsers(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection(userstore.Collection), logger, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_users_email"),
		},
	})
}
