package device

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

const (
	androidWebViewUA = "Mozilla/5.0 (Linux; Android 14; Pixel 8 Build/UQ1A.240205.002; wv) AppleWebKit/537.36 (KHTML, like Gecko) Version/4.0 Chrome/121.0.6167.101 Mobile Safari/537.36"
	androidChromeUA  = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.6167.101 Mobile Safari/537.36"
	iosWKWebViewUA   = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_3 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Mobile/21D50"
	iosSafariUA      = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_3 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Mobile/15E148 Safari/604.1"
	desktopChromeUA  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"
)

type DeviceSuite struct {
	suite.Suite
}

func TestDeviceSuite(t *testing.T) {
	suite.Run(t, new(DeviceSuite))
}

func (s *DeviceSuite) TestIsNative() {
	s.Run("explicit source=app wins over everything", func() {
		s.True(IsNative(Signals{SourceParam: "app"}))
		s.True(IsNative(Signals{SourceParam: "app", UserAgent: desktopChromeUA}))
	})

	s.Run("any other explicit source means web even with native hints", func() {
		s.False(IsNative(Signals{SourceParam: "web", SessionMarker: true, UserAgent: androidWebViewUA}))
		s.False(IsNative(Signals{SourceParam: "browser"}))
	})

	s.Run("session marker decides when no param is present", func() {
		s.True(IsNative(Signals{SessionMarker: true}))
		s.True(IsNative(Signals{SessionMarker: true, UserAgent: desktopChromeUA}))
	})

	s.Run("user agent heuristic is the fallback", func() {
		s.True(IsNative(Signals{UserAgent: androidWebViewUA}))
		s.False(IsNative(Signals{UserAgent: desktopChromeUA}))
	})

	s.Run("no signals means web", func() {
		s.False(IsNative(Signals{}))
	})
}

func (s *DeviceSuite) TestIsWebViewUA() {
	s.Run("android webview carries the wv token", func() {
		s.True(IsWebViewUA(androidWebViewUA))
	})

	s.Run("android chrome is not a webview", func() {
		s.False(IsWebViewUA(androidChromeUA))
	})

	s.Run("ios wkwebview lacks the safari product", func() {
		s.True(IsWebViewUA(iosWKWebViewUA))
	})

	s.Run("mobile safari is not a webview", func() {
		s.False(IsWebViewUA(iosSafariUA))
	})

	s.Run("desktop browsers are never webviews", func() {
		s.False(IsWebViewUA(desktopChromeUA))
	})

	s.Run("empty user agent is not a webview", func() {
		s.False(IsWebViewUA(""))
	})
}
