package assignmentlist

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestToastsSanitizeAndDrain(t *testing.T) {
	toasts := NewToasts(zerolog.Nop())

	toasts.Notify(Toast{Kind: ToastSuccess, Message: "Assignment unsubmitted successfully"})
	toasts.Notify(Toast{Kind: ToastError, Message: `<script>alert(1)</script><b>Denied</b>`})

	drained := toasts.Drain()
	require.Equal(t, []Toast{
		{Kind: ToastSuccess, Message: "Assignment unsubmitted successfully"},
		{Kind: ToastError, Message: "Denied"},
	}, drained)
	require.Empty(t, toasts.Drain())
}

func TestToastsDropOldestWhenFull(t *testing.T) {
	toasts := NewToasts(zerolog.Nop())
	for i := 0; i < maxQueuedToasts+3; i++ {
		toasts.Notify(Toast{Kind: ToastError, Message: fmt.Sprintf("m%d", i)})
	}

	drained := toasts.Drain()
	require.Len(t, drained, maxQueuedToasts)
	require.Equal(t, "m3", drained[0].Message)
}
