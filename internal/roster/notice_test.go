package roster

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChanNotifierDropsWhenFull(t *testing.T) {
	n := NewChanNotifier(1)

	n.Notify(Notice{Kind: Success, Message: "first"})
	n.Notify(Notice{Kind: Failure, Message: "second", Err: errors.New("boom")})

	require.Len(t, n.C, 1)
	assert.Equal(t, "first", (<-n.C).Message)
}

func TestNotifierFunc(t *testing.T) {
	var got []Notice
	var n Notifier = NotifierFunc(func(notice Notice) { got = append(got, notice) })

	n.Notify(Notice{Kind: Failure})

	require.Len(t, got, 1)
	assert.Equal(t, "failure", got[0].Kind.String())
}
