package service

import (
	"context"
	"time"

	id "claimledger/pkg/domain"
	dErrors "claimledger/pkg/domain-errors"
)

// ClaimTx serializes every mutation of one claim slot. Implementations may
// wrap a database transaction or, in-memory, a lock per key.
type ClaimTx interface {
	RunInTx(ctx context.Context, key id.ClaimKey, fn func(ctx context.Context) error) error
}

// shardedClaimTx spreads claim keys over a fixed set of locks so unrelated
// claims rarely contend. Two keys in one shard still serialize, which is safe
// because no operation holds more than one claim lock at a time.
const numClaimShards = 128

// defaultClaimTxTimeout bounds the wait for a claim lock when the context has
// no deadline of its own.
const defaultClaimTxTimeout = 5 * time.Second

type shardedClaimTx struct {
	shards  [numClaimShards]chan struct{}
	timeout time.Duration
}

func newShardedClaimTx(timeout time.Duration) *shardedClaimTx {
	t := &shardedClaimTx{timeout: timeout}
	for i := range t.shards {
		t.shards[i] = make(chan struct{}, 1)
	}
	return t
}

// RunInTx waits for the key's lock and runs fn while holding it. The timeout
// bounds only the wait; fn runs with the caller's context unchanged.
func (t *shardedClaimTx) RunInTx(ctx context.Context, key id.ClaimKey, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	waitCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		timeout := t.timeout
		if timeout <= 0 {
			timeout = defaultClaimTxTimeout
		}
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	lock := t.shards[shardFor(key)]
	select {
	case lock <- struct{}{}:
	case <-waitCtx.Done():
		return dErrors.Wrap(waitCtx.Err(), dErrors.CodeTimeout, "transaction aborted: lock wait exceeded")
	}
	defer func() { <-lock }()

	// Check again after acquiring lock
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(ctx)
}

func shardFor(key id.ClaimKey) int {
	return int(hashClaimKey(key) % numClaimShards)
}

// hashClaimKey is FNV-1a over both halves of the key, little-endian.
func hashClaimKey(key id.ClaimKey) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for _, v := range [2]uint64{uint64(key.PolicyID), uint64(key.IncidentID)} {
		for i := 0; i < 8; i++ {
			h ^= uint32(byte(v >> (8 * i)))
			h *= fnvPrime
		}
	}
	return h
}
