package images

import (
	"bytes"
	_ "embed"
	"image"
	_ "image/png"

	"github.com/sirupsen/logrus"
)

//go:embed headset_connected.png
var HeadsetConnectedImgFile []byte

var HeadsetConnectedImage image.Image

//go:embed headset_disconnected.png
var HeadsetDisconnectedImgFile []byte

var HeadsetDisconnectedImage image.Image

func init() {
	// Load images
	var err error

	HeadsetConnectedImage, _, err = image.Decode(bytes.NewReader(HeadsetConnectedImgFile))
	if err != nil {
		logrus.Panicf("Can't load headset connected image: %v", err)
	}

	HeadsetDisconnectedImage, _, err = image.Decode(bytes.NewReader(HeadsetDisconnectedImgFile))
	if err != nil {
		logrus.Fatalf("Can't load headset disconnected image: %v", err)
	}
}
