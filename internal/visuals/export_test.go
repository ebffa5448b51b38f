package visuals

import "image"

// SetEncoder replaces the branded still encoder.
func (c *Composer) SetEncoder(fn func(path string, img image.Image) error) {
	c.encode = fn
}
