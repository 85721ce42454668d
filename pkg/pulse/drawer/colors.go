package drawer

import (
	"github.com/pkg/errors"
	colors "gopkg.in/go-playground/colors.v1"

	"github.com/cjliu20152/qiskit/pkg/pulse"
)

// kindRGB holds the base palette per channel kind.
var kindRGB = map[pulse.ChannelKind][3]uint8{
	pulse.KindDrive:    {30, 100, 200},
	pulse.KindControl:  {130, 80, 200},
	pulse.KindMeasure:  {210, 60, 60},
	pulse.KindAcquire:  {235, 150, 40},
	pulse.KindMemory:   {120, 120, 120},
	pulse.KindRegister: {160, 160, 160},
}

// channelColor maps a channel to a hex color. Indexes within a kind fade
// towards white so parallel drive lanes stay distinguishable.
func channelColor(ch pulse.Channel) (string, error) {
	base, ok := kindRGB[ch.Kind()]
	if !ok {
		base = [3]uint8{0, 0, 0}
	}
	fade := uint8(0)
	if idx := ch.Index(); idx > 0 {
		if idx > 5 {
			idx = 5
		}
		fade = uint8(idx * 18)
	}
	rgb, err := colors.RGB(lighten(base[0], fade), lighten(base[1], fade), lighten(base[2], fade))
	if err != nil {
		return "", errors.Wrapf(err, "unable to build color for channel %s", ch)
	}
	return rgb.ToHEX().String(), nil
}

func lighten(c, by uint8) uint8 {
	if int(c)+int(by) > 255 {
		return 255
	}
	return c + by
}
