package probe

import "time"

// MediaInfo is the now-playing snapshot shown on the home screen.
type MediaInfo struct {
	Title  string
	Artist string
}

// MediaProbe reports the currently playing media, if any. The second
// return is false when nothing is playing or the probe cannot tell.
type MediaProbe interface {
	NowPlaying() (MediaInfo, bool)
}

// IdleProbe reports how long the user has been inactive. The second
// return is false when the probe cannot tell.
type IdleProbe interface {
	IdleTime() (time.Duration, bool)
}

// NoMedia is the MediaProbe used where no system integration exists.
type NoMedia struct{}

func (NoMedia) NowPlaying() (MediaInfo, bool) {
	return MediaInfo{}, false
}

// NoIdle is the IdleProbe used where no system integration exists.
type NoIdle struct{}

func (NoIdle) IdleTime() (time.Duration, bool) {
	return 0, false
}
