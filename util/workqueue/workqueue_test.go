package workqueue

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func TestBasic(t *testing.T) {
	t.Run("1", func(t *testing.T) {
		q := New[string]()
		require.EqualValues(t, 0, q.Len())
		q.Write("one")
		require.EqualValues(t, 1, q.Len())
		q.Write("two")
		require.EqualValues(t, 2, q.Len())
		e, ok := q.read()
		require.True(t, ok)
		require.EqualValues(t, "one", e)
		require.EqualValues(t, 1, q.Len())
		e, ok = q.read()
		require.True(t, ok)
		require.EqualValues(t, "two", e)
		require.EqualValues(t, 0, q.Len())
	})
	t.Run("2", func(t *testing.T) {
		q := New[string]()
		q.Write("one")
		require.EqualValues(t, 1, q.Len())

		q.CloseNow()
		_, ok := q.read()
		require.False(t, ok)
		require.EqualValues(t, 1, q.Len())
	})
	t.Run("3", func(t *testing.T) {
		q := New[string]()
		q.Write("one")
		q.Close()
		e, ok := q.read()
		require.True(t, ok)
		require.EqualValues(t, "one", e)
		_, ok = q.read()
		require.False(t, ok)
	})
	t.Run("4", func(t *testing.T) {
		q := New[int]()
		for i := 0; i < 10000; i++ {
			q.Write(i)
			require.EqualValues(t, i+1, q.Len())
		}
		for i := 0; i < 10000; i++ {
			ib, ok := q.read()
			require.True(t, ok)
			require.EqualValues(t, i, ib)
		}
		require.EqualValues(t, 0, q.Len())
	})
	t.Run("5", func(t *testing.T) {
		q := New[int]()
		q.Close()
		require.Panics(t, func() {
			q.Write(1)
		})
	})
}

func TestMultiThread1(t *testing.T) {
	q := New[int]()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		for i := 0; i < 100; i++ {
			q.Write(i)
		}
		q.Close()
	}()
	count := 0
	inOrder := true
	go func() {
		for i := 0; i < 10000; i++ {
			ib, ok := q.read()
			if !ok {
				t.Logf("stop at count %d", count)
				break
			}
			if ib != i {
				inOrder = false
			}
			count++
			time.Sleep(1 * time.Millisecond)
		}
		wg.Done()
	}()
	wg.Wait()
	require.True(t, inOrder)
	require.EqualValues(t, 100, count)
	require.EqualValues(t, 0, q.Len())
}

func TestMultiThread2(t *testing.T) {
	q := New[int]()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		for i := 0; i < 100; i++ {
			q.Write(i)
		}
		q.Close()
	}()
	count := 0
	go func() {
		q.Consume(func(e int) {
			count++
			time.Sleep(1 * time.Millisecond)
		})
		wg.Done()
	}()
	wg.Wait()
	require.EqualValues(t, 100, count)
	require.EqualValues(t, 0, q.Len())
}

func TestConsumeParallel(t *testing.T) {
	q := New[int]()
	go func() {
		for i := 0; i < 1000; i++ {
			q.Write(i)
		}
		q.Close()
	}()
	var count, sum atomic.Int64
	q.ConsumeParallel(8, func(e int) {
		count.Inc()
		sum.Add(int64(e))
	})
	require.EqualValues(t, 1000, count.Load())
	require.EqualValues(t, 999*1000/2, sum.Load())
	require.EqualValues(t, 0, q.Len())
}

func BenchmarkRW(b *testing.B) {
	q := New[int]()
	for i := 0; i < b.N; i++ {
		q.Write(i)
	}
	for i := 0; i < b.N; i++ {
		_, _ = q.read()
	}
}
