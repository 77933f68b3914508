package ledgerRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	txnMaxAttempts = 3
	txnBackoffBase = 50 * time.Millisecond
)

// WithTransaction runs fn inside a MongoDB multi-document transaction.
// Transient failures (write conflicts, unknown commit results) are retried a
// bounded number of times with backoff; the whole fn re-runs each attempt.
func (repo *MongoLedgerRepo) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= txnMaxAttempts; attempt++ {
		err = repo.runTransaction(ctx, fn)
		if err == nil || !isTransient(err) {
			return err
		}
		select {
		case <-time.After(time.Duration(attempt) * txnBackoffBase):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("transaction failed after %d attempts: %w", txnMaxAttempts, err)
}

func (repo *MongoLedgerRepo) runTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	client := repo.holdColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	return mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := fn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	})
}

// isTransient reports whether the error carries a driver label that marks the
// transaction as safe to retry from the top.
func isTransient(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.HasErrorLabel("TransientTransactionError") ||
			cmdErr.HasErrorLabel("UnknownTransactionCommitResult")
	}
	return false
}
