package lazy

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/failure"
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/framework"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var countKey = NewKey[int]("count")

func countingFactory(calls *int, value int) func(*Context) (int, error) {
	return func(*Context) (int, error) {
		*calls++
		return value, nil
	}
}

func TestFactoryRunsOnceAndIsMemoized(t *testing.T) {
	c := New()
	calls := 0
	for i := 0; i < 5; i++ {
		v, err := GetOrCompute(c, countKey, countingFactory(&calls, 42))
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	}
	assert.Equal(t, 1, calls)
	assert.True(t, c.IsComputed("count"))
}

func TestConcurrentReadsWaitForRunningFactory(t *testing.T) {
	c := New()
	var calls int32
	started, release := make(chan struct{}), make(chan struct{})
	Register(c, countKey, func(*Context) (int, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
		}
		<-release
		return 42, nil
	})

	var wg sync.WaitGroup
	values := make([]int, 5)
	read := func(i int) {
		defer wg.Done()
		values[i], _ = Get(c, countKey)
	}
	wg.Add(1)
	go read(0)
	<-started
	for i := 1; i < len(values); i++ {
		wg.Add(1)
		go read(i)
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, []int{42, 42, 42, 42, 42}, values)
}

func TestReaderWaitingOnFailedFactoryRetries(t *testing.T) {
	c := New()
	var calls int32
	started, release := make(chan struct{}), make(chan struct{})
	Register(c, countKey, func(*Context) (int, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
			<-release
			return 0, errors.New("not yet")
		}
		return 7, nil
	})

	firstErr := make(chan error, 1)
	go func() {
		_, err := Get(c, countKey)
		firstErr <- err
	}()
	<-started
	second := make(chan int, 1)
	go func() {
		v, _ := Get(c, countKey)
		second <- v
	}()
	close(release)

	assert.Error(t, <-firstErr)
	assert.Equal(t, 7, <-second)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSetBeforeReadShortCircuitsFactory(t *testing.T) {
	c := New()
	calls := 0
	Register(c, countKey, countingFactory(&calls, 1))
	Set(c, countKey, 7)

	v, err := GetOrCompute(c, countKey, countingFactory(&calls, 2))
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	v, err = Get(c, countKey)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, 0, calls)
}

func TestSetAfterComputeOverwrites(t *testing.T) {
	c := New()
	calls := 0
	_, _ = GetOrCompute(c, countKey, countingFactory(&calls, 1))
	Set(c, countKey, 9)
	v, _ := Get(c, countKey)
	assert.Equal(t, 9, v)
}

func TestFailedFactoryIsRetried(t *testing.T) {
	c := New()
	attempts := 0
	factory := func(*Context) (int, error) {
		attempts++
		if attempts == 1 {
			return 0, errors.New("not yet")
		}
		return 5, nil
	}

	_, err := GetOrCompute(c, countKey, factory)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `computing "count": not yet`)
	assert.False(t, c.IsComputed("count"))

	v, err := GetOrCompute(c, countKey, factory)
	require.NoError(t, err)
	assert.Equal(t, 5, v)
	assert.Equal(t, 2, attempts)
}

func TestMissingFactoryRaisesMissingContextValue(t *testing.T) {
	c := New()
	_, err := Get(c, NewKey[string]("route"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, failure.ErrMissingContextValue))
	assert.Contains(t, err.Error(), `"route"`)
}

func TestRegisteredFactoryIsUsedWhenNoExplicitOne(t *testing.T) {
	c := New()
	calls := 0
	Register(c, countKey, countingFactory(&calls, 3))
	v, err := Get(c, countKey)
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	assert.Equal(t, 1, calls)
}

func TestResetRunsFactoryAgain(t *testing.T) {
	c := New()
	calls := 0
	Register(c, countKey, countingFactory(&calls, 3))
	_, _ = Get(c, countKey)
	Reset(c, countKey)
	assert.False(t, c.IsComputed("count"))
	_, _ = Get(c, countKey)
	assert.Equal(t, 2, calls)
}

func TestTypeMismatchIsReported(t *testing.T) {
	c := New()
	Set(c, NewKey[string]("count"), "seven")
	_, err := Get(c, countKey)
	require.Error(t, err)
	kind, ok := failure.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, failure.MissingContextValue, kind)
	assert.Contains(t, err.Error(), "string, not int")
}

func TestNilValueOfInterfaceType(t *testing.T) {
	c := New()
	key := NewKey[error]("err")
	Set[error](c, key, nil)
	v, err := Get(c, key)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestChildContextsAreIndependentAndNamed(t *testing.T) {
	c := New()
	req := c.Child("request")
	assert.Same(t, req, c.Child("request"))
	assert.Same(t, c, req.Parent())
	assert.Equal(t, "request", req.Path())
	assert.Equal(t, "request.headers", req.Child("headers").Path())

	Set(req, countKey, 1)
	Set(c, countKey, 2)
	v, _ := Get(req, countKey)
	assert.Equal(t, 1, v)

	_, err := Get(req.Child("headers"), countKey)
	assert.Contains(t, err.Error(), `"request.headers.count"`)
}

func TestFactoryCanReadOtherSlots(t *testing.T) {
	c := New()
	pathKey := NewKey[string]("path")
	Set(c.Child("request"), pathKey, "/home")
	subjectKey := NewKey[string]("subject")
	Register(c, subjectKey, func(c *Context) (string, error) {
		p, err := Get(c.Child("request"), pathKey)
		return "subject for " + p, err
	})
	v, err := Get(c, subjectKey)
	require.NoError(t, err)
	assert.Equal(t, "subject for /home", v)
}

func TestKeysAndLogging(t *testing.T) {
	var logger framework.CapturingLogger
	c := New(WithLogger(&logger))
	Set(c, NewKey[int]("b"), 1)
	_, _ = GetOrCompute(c, NewKey[int]("a"), func(*Context) (int, error) { return 1, nil })
	assert.Equal(t, []string{"a", "b"}, c.Keys())

	output := logger.Output()
	require.Len(t, output, 2)
	assert.Equal(t, "context: b overridden", output[0].Message)
	assert.Equal(t, "context: a computed", output[1].Message)
}
