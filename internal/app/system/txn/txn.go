// Package txn runs related writes inside a MongoDB multi-document
// transaction when the server supports one, falling back to plain
// sequential writes on standalone servers.
//
// Multi-document transactions require a replica set or sharded cluster.
// Local development and small deployments often run a standalone mongod,
// where starting a session transaction fails with a server error. Callers
// that need two related writes to be atomic (household + admin membership,
// membership + invitation acceptance) use Run and get atomicity whenever
// the deployment can provide it; on a standalone server the writes happen
// in the caller's stated order and the gap between them is a documented
// crash window, not a silent one.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Run executes fn transactionally when possible.
//
// The sequential fallback is only taken when transaction support itself is
// missing, which the server reports before any write in fn is applied, so
// re-running fn is safe. Domain errors returned by fn (duplicate-key
// translations and the like) abort the transaction and are returned as-is.
func Run(ctx context.Context, client *mongo.Client, log *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			log.Debug("transactions unavailable, running writes sequentially", zap.Error(err))
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		log.Debug("transactions unavailable, running writes sequentially", zap.Error(err))
		return fn(ctx)
	}
	return err
}

// IsNotSupported reports whether err indicates the server cannot run
// multi-document transactions (standalone mongod, old wire version).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 20, 51, 263: // IllegalOperation variants reported for transactions
			return true
		}
	}

	// Driver and server wrap the condition in several message shapes.
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "transaction") &&
		(strings.Contains(msg, "replica set") ||
			strings.Contains(msg, "session") ||
			strings.Contains(msg, "illegal operation")) {
		return true
	}
	if strings.Contains(msg, "session") && strings.Contains(msg, "not supported") {
		return true
	}
	return false
}
