package main

import (
	"bytes"
	"context"
	"math/big"
	"strings"
	"testing"

	"github.com/ClipFinance/relay-cycler/common/types"
	"github.com/ClipFinance/relay-cycler/config"
	"github.com/ClipFinance/relay-cycler/internal/memchain"
	"github.com/ClipFinance/relay-cycler/metrics"
	"github.com/gomodule/redigo/redis"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	logger, err := newLogger(config.LogConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	logger, err = newLogger(config.LogConfig{Level: "warn", Format: "text"})
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)

	_, err = newLogger(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestWriteChainBalances(t *testing.T) {
	const (
		usdc   = "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"
		wallet = "0x1111111111111111111111111111111111111111"
	)

	ledger := memchain.NewLedger()
	chain := ledger.AddChain(&types.ChainConfig{
		Name:          "polygon",
		BridgeChainID: 109,
		RouterAddress: "0x45A01E4e04F14f7A4a6702c74187c5F6222033cd",
		Tokens:        map[types.TokenKind]string{types.USDC: usdc},
	})
	ledger.SetBalance("polygon", usdc, wallet, big.NewInt(12_500_000))
	ledger.SetBalance("polygon", "", wallet, new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))

	var out bytes.Buffer
	require.NoError(t, writeChainBalances(context.Background(), &out, chain, wallet))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, wallet+"\tpolygon\tNATIVE\t1\t-", lines[0])
	assert.Equal(t, wallet+"\tpolygon\tUSDC\t12.5\t0", lines[1])
}

func TestNewReporterClosesRedisPool(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cfg := &config.Config{Redis: config.RedisConfig{Addr: "127.0.0.1:6379"}}

	rep, err := newReporter(context.Background(), cfg, metrics.New(prometheus.NewRegistry()), logger)
	require.NoError(t, err)
	require.Len(t, rep.closers, 1)
	pool, ok := rep.closers[0].(*redis.Pool)
	require.True(t, ok)

	rep.Close()
	assert.EqualError(t, pool.Get().Err(), "redigo: get on closed pool")
}

func TestNewReporterWithoutStores(t *testing.T) {
	logger, _ := test.NewNullLogger()

	rep, err := newReporter(context.Background(), &config.Config{}, metrics.New(prometheus.NewRegistry()), logger)
	require.NoError(t, err)
	assert.Empty(t, rep.closers)
	rep.Close()
}
