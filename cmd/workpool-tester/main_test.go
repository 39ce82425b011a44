package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ygrebnov/workpool"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestLoad(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, load(&out, slog.New(slog.NewTextHandler(io.Discard, nil)), 3, 2, 25))
	require.Equal(t, "start destroying pool\npool was destroyed\njobs executed: 25/25\n", out.String())
}

func TestLoad_InvalidPool(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.ErrorIs(t, load(&out, logger, 0, 5, 1), workpool.ErrInvalidConfig)
	require.ErrorIs(t, load(&out, logger, 5, 0, 1), workpool.ErrInvalidConfig)
	require.Error(t, load(&out, logger, 1, 1, -1))
	require.Empty(t, out.String())
}

func TestApp(t *testing.T) {
	var out, errOut bytes.Buffer
	err := newApp(&out, &errOut).Run(context.Background(),
		[]string{"workpool-tester", "--threads", "2", "--queue", "1", "--jobs", "4", "--verbose"})
	require.NoError(t, err)
	require.Contains(t, out.String(), "jobs executed: 4/4")
	require.Contains(t, errOut.String(), "job finished")
}
