package reporter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ClipFinance/relay-cycler/common/types"
	"github.com/ClipFinance/relay-cycler/dbconfig"
	"github.com/gomodule/redigo/redis"
	"github.com/pkg/errors"
)

const (
	// HopStatusSetPrefix prefixes the per-status sets of hop record keys.
	HopStatusSetPrefix = "cycler:hops:"
	// WalletTxListPrefix prefixes the per-wallet lists of transaction records.
	WalletTxListPrefix = "cycler:txs:"
)

// ConnGetter hands out redis connections. *redis.Pool satisfies it.
type ConnGetter interface {
	Get() redis.Conn
}

// NewRedisPool creates a connection pool for addr with bounded dial and I/O timeouts.
func NewRedisPool(addr, password string, db int) *redis.Pool {
	options := []redis.DialOption{
		redis.DialConnectTimeout(5 * time.Second),
		redis.DialReadTimeout(5 * time.Second),
		redis.DialWriteTimeout(5 * time.Second),
		redis.DialDatabase(db),
	}
	if password != "" {
		options = append(options, redis.DialPassword(password))
	}

	return &redis.Pool{
		MaxIdle:     5,
		IdleTimeout: 5 * time.Minute,
		Dial:        func() (redis.Conn, error) { return redis.Dial("tcp", addr, options...) },
	}
}

// RedisReporter keeps a JSON record per hop and indexes it in a set per status.
type RedisReporter struct {
	pool ConnGetter
}

// NewRedisReporter creates a new RedisReporter.
func NewRedisReporter(pool ConnGetter) *RedisReporter {
	return &RedisReporter{pool: pool}
}

// HopRecordKey returns the key of a hop's JSON record.
func HopRecordKey(result *types.HopResult) string {
	return fmt.Sprintf("hop:%s:%s:%s:%d:%d",
		strings.ToLower(string(result.Status)), result.RunID, strings.ToLower(result.Wallet), result.Cycle, result.Index)
}

// HopStatusSet returns the set indexing hop records with status.
func HopStatusSet(status types.HopStatus) string {
	return HopStatusSetPrefix + strings.ToLower(string(status))
}

func (r *RedisReporter) ReportHop(_ context.Context, result *types.HopResult) error {
	recordJSON, err := json.Marshal(dbconfig.NewHopRecord(result))
	if err != nil {
		return errors.Wrap(err, "cannot marshal hop record")
	}

	conn := r.pool.Get()
	defer conn.Close()

	key := HopRecordKey(result)
	if err := conn.Send("MULTI"); err != nil {
		return errors.Wrap(err, "redis MULTI")
	}
	if err := conn.Send("SET", key, recordJSON); err != nil {
		return errors.Wrap(err, "redis SET")
	}
	if err := conn.Send("SADD", HopStatusSet(result.Status), key); err != nil {
		return errors.Wrap(err, "redis SADD")
	}
	if _, err := conn.Do("EXEC"); err != nil {
		return errors.Wrap(err, "redis EXEC")
	}

	return nil
}

type txRecord struct {
	Kind   TxKind `json:"kind"`
	Chain  string `json:"chain"`
	Hop    string `json:"hop"`
	Hash   string `json:"hash"`
	URL    string `json:"url"`
	Nonce  uint64 `json:"nonce"`
	Wallet string `json:"wallet"`
}

func (r *RedisReporter) ReportTx(_ context.Context, event TxEvent) error {
	recordJSON, err := json.Marshal(txRecord{
		Kind:   event.Kind,
		Chain:  event.Tx.Chain,
		Hop:    event.Hop.String(),
		Hash:   event.Tx.Hash,
		URL:    event.Tx.URL,
		Nonce:  event.Tx.Nonce,
		Wallet: event.Wallet,
	})
	if err != nil {
		return errors.Wrap(err, "cannot marshal transaction record")
	}

	conn := r.pool.Get()
	defer conn.Close()

	if _, err := conn.Do("RPUSH", WalletTxListPrefix+strings.ToLower(event.Wallet), recordJSON); err != nil {
		return errors.Wrap(err, "redis RPUSH")
	}
	return nil
}

// CountByStatus returns the number of hop records indexed under status.
func (r *RedisReporter) CountByStatus(status types.HopStatus) (int, error) {
	conn := r.pool.Get()
	defer conn.Close()

	n, err := redis.Int(conn.Do("SCARD", HopStatusSet(status)))
	if err != nil && !errors.Is(err, redis.ErrNil) {
		return 0, errors.Wrap(err, "redis SCARD")
	}
	return n, nil
}
