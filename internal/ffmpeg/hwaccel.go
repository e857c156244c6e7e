package ffmpeg

import (
	"os"
	"os/exec"
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	selectedEncoder string
	encoderOnce     sync.Once
)

// SelectEncoder picks the H.264 encoder for burn-in encodes: VAAPI when a
// render device exists and the encoder passes a smoke test, libx264
// otherwise. Detection runs once per process.
func SelectEncoder() string {
	encoderOnce.Do(func() {
		selectedEncoder = "libx264"
		device := findRenderDevice()
		if device == "" {
			log.Info().Msg("no VAAPI render device, using libx264")
			return
		}
		if !testVAAPIEncode(device) {
			log.Info().Str("device", device).Msg("h264_vaapi smoke test failed, using libx264")
			return
		}
		selectedEncoder = "h264_vaapi"
		log.Info().Str("device", device).Msg("h264_vaapi encoder available")
	})
	return selectedEncoder
}

func findRenderDevice() string {
	for _, dev := range []string{"/dev/dri/renderD128", "/dev/dri/renderD129"} {
		if _, err := os.Stat(dev); err == nil {
			return dev
		}
	}
	return ""
}

func testVAAPIEncode(device string) bool {
	cmd := exec.Command("ffmpeg",
		"-hide_banner", "-loglevel", "error",
		"-vaapi_device", device,
		"-f", "lavfi", "-i", "color=black:s=64x64:d=0.1",
		"-vf", "format=nv12,hwupload",
		"-c:v", "h264_vaapi",
		"-f", "null", "-",
	)
	return cmd.Run() == nil
}
