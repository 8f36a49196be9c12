package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPoolRunReturnsOrderedResults(t *testing.T) {
	p := New(2)
	jobs := []Job{{Path: "a", Index: 0}, {Path: "b", Index: 1}, {Path: "c", Index: 2}}

	results := p.Run(context.Background(), jobs, func(ctx context.Context, j Job) (any, error) {
		return j.Path + "-done", nil
	})

	require.Len(t, results, 3)
	for i, r := range results {
		require.Equal(t, i, r.Index)
		require.NoError(t, r.Err)
		require.Equal(t, jobs[i].Path+"-done", r.Value)
	}
}

func TestPoolRunIsolatesFailures(t *testing.T) {
	p := New(4)
	jobs := []Job{{Path: "ok-0", Index: 0}, {Path: "bad-1", Index: 1}, {Path: "ok-2", Index: 2}}

	results := p.Run(context.Background(), jobs, func(ctx context.Context, j Job) (any, error) {
		if j.Index == 1 {
			return nil, errors.New("boom")
		}
		return "fine", nil
	})

	require.NoError(t, results[0].Err)
	require.Error(t, results[1].Err)
	require.NoError(t, results[2].Err)
}

func TestPoolRunRespectsConcurrencyLimit(t *testing.T) {
	p := New(1)
	n := 20
	jobs := make([]Job, n)
	for i := range jobs {
		jobs[i] = Job{Path: fmt.Sprintf("f%d", i), Index: i}
	}

	active := 0
	maxActive := 0
	var mu = make(chan struct{}, 1)
	mu <- struct{}{}

	results := p.Run(context.Background(), jobs, func(ctx context.Context, j Job) (any, error) {
		<-mu
		active++
		if active > maxActive {
			maxActive = active
		}
		mu <- struct{}{}

		<-mu
		active--
		mu <- struct{}{}
		return nil, nil
	})

	require.Len(t, results, n)
	require.LessOrEqual(t, maxActive, 1)
}
