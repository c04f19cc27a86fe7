package outcome

import (
	"errors"
	"sync"
	"testing"

	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/failure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroValueIsUnresolved(t *testing.T) {
	var o Outcome
	assert.False(t, o.IsResolved())
	assert.Nil(t, o.Value())
	assert.NoError(t, o.Err())

	f := o.RequireNoError()
	require.NotNil(t, f)
	assert.Equal(t, failure.MissingContextValue, f.Kind)
}

func TestFirstCallWins(t *testing.T) {
	sequences := []struct {
		name      string
		calls     func(o *Outcome)
		wantValue interface{}
		wantErr   bool
	}{
		{"complete then fail", func(o *Outcome) { o.Complete(1); o.Fail(errors.New("x")) }, 1, false},
		{"fail then complete", func(o *Outcome) { o.Fail(errors.New("x")); o.Complete(1) }, nil, true},
		{"complete twice", func(o *Outcome) { o.Complete(1); o.Complete(2) }, 1, false},
		{"fail twice", func(o *Outcome) { o.Fail(errors.New("x")); o.Fail(errors.New("y")) }, nil, true},
		{"fail nil", func(o *Outcome) { o.Fail(nil); o.Fail(errors.New("y")) }, nil, false},
	}
	for _, s := range sequences {
		t.Run(s.name, func(t *testing.T) {
			var o Outcome
			s.calls(&o)
			assert.True(t, o.IsResolved())
			assert.Equal(t, s.wantValue, o.Value())
			if s.wantErr {
				assert.Equal(t, "x", o.Err().Error())
				_, f := o.RequireError()
				assert.Nil(t, f)
			} else {
				assert.Nil(t, o.RequireNoError())
				_, f := o.RequireError()
				require.NotNil(t, f)
				assert.Equal(t, failure.ExpectedErrorMissing, f.Kind)
			}
		})
	}
}

func TestCompleteReportsWhetherItTookEffect(t *testing.T) {
	var o Outcome
	assert.True(t, o.Complete("a"))
	assert.False(t, o.Complete("b"))
	assert.False(t, o.Fail(errors.New("c")))
}

func TestRequireNoErrorDescribesError(t *testing.T) {
	var o Outcome
	o.Fail(errors.New("boom"))
	f := o.RequireNoError()
	require.NotNil(t, f)
	assert.Equal(t, failure.UnexpectedError, f.Kind)
	assert.Equal(t, `expected no error, but *errors.errorString with "boom" message was returned`, f.Message)
}

func TestConcurrentResolutionKeepsOneWinner(t *testing.T) {
	var o Outcome
	var wg sync.WaitGroup
	wins := make(chan int, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if o.Complete(i) {
				wins <- i
			}
		}(i)
	}
	wg.Wait()
	close(wins)
	var winners []int
	for w := range wins {
		winners = append(winners, w)
	}
	require.Len(t, winners, 1)
	assert.Equal(t, winners[0], o.Value())
}
