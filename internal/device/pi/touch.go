package pi

import (
	"periph.io/x/conn/v3/i2c"
)

// FT6236 registers.
const (
	regTDStatus = 0x02 // low nibble holds the active touch count
)

// ft6236 reads the capacitive touch controller. The dashboard only needs a
// pressed/not-pressed sample per tick, not coordinates.
type ft6236 struct {
	dev *i2c.Dev
}

func newFT6236(bus i2c.Bus, addr uint16) *ft6236 {
	return &ft6236{dev: &i2c.Dev{Bus: bus, Addr: addr}}
}

func (t *ft6236) pressed() (bool, error) {
	var status [1]byte
	if err := t.dev.Tx([]byte{regTDStatus}, status[:]); err != nil {
		return false, err
	}
	// The controller reports up to 2 points; anything else is noise.
	count := int(status[0] & 0x0F)
	return count >= 1 && count <= 2, nil
}
