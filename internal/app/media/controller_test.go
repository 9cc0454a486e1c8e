package media_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/liveroom/internal/app/media"
	"github.com/dkeye/liveroom/internal/core/coretest"
	"github.com/dkeye/liveroom/internal/domain"
)

func TestAcquireCameraAndMicEnablesBoth(t *testing.T) {
	devices := &coretest.Devices{}
	c := media.NewController(devices)

	audio, video, err := c.AcquireCameraAndMic(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.SourceMicrophone, audio.Source())
	require.Equal(t, domain.SourceCamera, video.Source())

	st := c.State()
	require.True(t, st.AudioEnabled)
	require.True(t, st.VideoEnabled)
	require.True(t, st.HasAudioTrack)
	require.True(t, st.HasVideoTrack)
	require.False(t, st.ScreenSharing)
}

func TestAcquireCameraAndMicPartialFailureReleasesSurvivor(t *testing.T) {
	devices := &coretest.Devices{MicErr: errors.New("permission denied")}
	c := media.NewController(devices)

	_, _, err := c.AcquireCameraAndMic(context.Background())
	require.Error(t, err)
	require.True(t, domain.IsDeviceError(err))

	var de *domain.DeviceError
	require.ErrorAs(t, err, &de)
	require.Equal(t, domain.SourceMicrophone, de.Source)

	require.Empty(t, devices.Live())
	require.Equal(t, domain.LocalMediaState{}, c.State())
}

func TestTogglesWithoutTracksAreNoops(t *testing.T) {
	c := media.NewController(&coretest.Devices{})

	require.False(t, c.SetAudioEnabled(true))
	require.False(t, c.SetVideoEnabled(true))
	_, ok := c.ToggleAudio()
	require.False(t, ok)
	_, ok = c.ToggleVideo()
	require.False(t, ok)
	require.Equal(t, domain.LocalMediaState{}, c.State())
}

func TestToggleAudioParity(t *testing.T) {
	c := media.NewController(&coretest.Devices{})
	audio, _, err := c.AcquireCameraAndMic(context.Background())
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		enabled, ok := c.ToggleAudio()
		require.True(t, ok)
		require.Equal(t, i%2 == 0, enabled)
		require.Equal(t, enabled, audio.Enabled())
	}
	require.False(t, c.State().AudioEnabled)
	require.True(t, c.State().VideoEnabled)
}

func TestSetVideoEnabledMirrorsTrack(t *testing.T) {
	c := media.NewController(&coretest.Devices{})
	_, video, err := c.AcquireCameraAndMic(context.Background())
	require.NoError(t, err)

	require.True(t, c.SetVideoEnabled(false))
	require.False(t, video.Enabled())
	require.False(t, c.State().VideoEnabled)

	require.True(t, c.SetVideoEnabled(true))
	require.True(t, video.Enabled())
}

func TestScreenLifecycle(t *testing.T) {
	devices := &coretest.Devices{}
	c := media.NewController(devices)

	screen, err := c.AcquireScreen(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.SourceScreen, screen.Source())
	require.True(t, c.State().HasScreenTrack)
	require.False(t, c.State().ScreenSharing)

	again, err := c.AcquireScreen(context.Background())
	require.NoError(t, err)
	require.Same(t, screen, again)

	c.SetScreenSharing(true)
	require.True(t, c.State().ScreenSharing)

	c.ReleaseScreen()
	require.False(t, c.State().ScreenSharing)
	require.False(t, c.State().HasScreenTrack)
	require.Empty(t, devices.Live())
}

func TestAcquireScreenFailureLeavesStateUntouched(t *testing.T) {
	devices := &coretest.Devices{ScreenErr: errors.New("picker cancelled")}
	c := media.NewController(devices)
	_, _, err := c.AcquireCameraAndMic(context.Background())
	require.NoError(t, err)
	before := c.State()

	_, err = c.AcquireScreen(context.Background())
	require.True(t, domain.IsDeviceError(err))
	require.Equal(t, before, c.State())
}

func TestSetScreenSharingNeedsTrack(t *testing.T) {
	c := media.NewController(&coretest.Devices{})
	c.SetScreenSharing(true)
	require.False(t, c.State().ScreenSharing)
}

func TestReleaseAllStopsEverythingOnce(t *testing.T) {
	devices := &coretest.Devices{}
	c := media.NewController(devices)
	_, _, err := c.AcquireCameraAndMic(context.Background())
	require.NoError(t, err)
	_, err = c.AcquireScreen(context.Background())
	require.NoError(t, err)

	c.ReleaseAll()
	c.ReleaseAll()

	_, err = c.AcquireScreen(context.Background())
	require.ErrorIs(t, err, domain.ErrReleased)
	require.Equal(t, domain.LocalMediaState{}, c.State())
	require.Len(t, devices.Created(), 3)
	for _, tr := range devices.Created() {
		require.Equal(t, 1, tr.Stops(), tr.ID())
	}
}

func TestAcquireAfterReleaseRefused(t *testing.T) {
	devices := &coretest.Devices{}
	c := media.NewController(devices)
	c.ReleaseAll()

	_, _, err := c.AcquireCameraAndMic(context.Background())
	require.ErrorIs(t, err, domain.ErrReleased)
	_, err = c.AcquireScreen(context.Background())
	require.ErrorIs(t, err, domain.ErrReleased)
	require.Empty(t, devices.Created())
}

func TestLateAcquisitionIsStopped(t *testing.T) {
	gate := coretest.NewGate()
	devices := &coretest.Devices{CameraGate: gate}
	c := media.NewController(devices)

	errc := make(chan error, 1)
	go func() {
		_, _, err := c.AcquireCameraAndMic(context.Background())
		errc <- err
	}()

	<-gate.Entered()
	c.ReleaseAll()
	gate.Release()

	require.ErrorIs(t, <-errc, domain.ErrReleased)
	require.Len(t, devices.Created(), 2)
	require.Empty(t, devices.Live())
}
