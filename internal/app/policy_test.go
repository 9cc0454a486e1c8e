package app_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/liveroom/internal/app"
	"github.com/dkeye/liveroom/internal/domain"
)

func TestSimplePolicyClassify(t *testing.T) {
	cause := errors.New("boom")
	cases := []struct {
		err  error
		want app.Notice
	}{
		{nil, app.NoticeNone},
		{&domain.ConfigError{Missing: []string{"room id"}}, app.NoticeMisconfigured},
		{&domain.DeviceError{Source: domain.SourceCamera, Err: cause}, app.NoticePermission},
		{fmt.Errorf("open: %w", &domain.TransportError{Op: "join", Err: cause}), app.NoticeNetwork},
		{domain.ErrBusy, app.NoticeBusy},
		{domain.ErrCancelled, app.NoticeNone},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, app.SimplePolicy{}.Classify(tc.err), "%v", tc.err)
	}
	require.Equal(t, "permission", app.NoticePermission.String())
}
