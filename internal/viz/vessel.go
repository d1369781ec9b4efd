package viz

import "math"

// Vessel is what the reactor drawing needs from the process state.
type Vessel struct {
	Volume  float64
	Phase   float64
	Feeding bool
}

// LiquidLevel maps culture volume to the filled fraction of the vessel body.
// The initial 1 L charge sits at 0.65 and the level rises towards 0.95 as
// feed accumulates.
func LiquidLevel(volume float64) float64 {
	if math.IsNaN(volume) || volume <= 0 {
		return 0.05
	}
	level := 0.95 - 0.3/volume
	if level < 0.05 {
		return 0.05
	}
	return level
}

// DrawVessel draws the reactor: body, lid, liquid, shaft, a three-blade
// impeller turned by v.Phase and, while feeding, the inlet arrow.
func DrawVessel(c *Canvas, v Vessel) {
	w, h := c.Size()

	left, right := w*15/100, w*85/100
	top, bottom := h*22/100, h-2
	cx := (left + right) / 2

	c.Rect(left, top, right, bottom)
	c.Rect(left+4, top-4, right-4, top)

	liquidTop := bottom - int(LiquidLevel(v.Volume)*float64(bottom-top))
	c.FillRect(left+2, liquidTop, right-2, bottom-2)
	c.DrawLine(left, liquidTop, right, liquidTop)

	iy := top + (bottom-top)*2/3
	c.DrawLine(cx, top-4, cx, iy)

	r := float64(right-left) * 0.3
	for k := 0; k < 3; k++ {
		a := v.Phase + float64(k)*math.Pi/3
		dx := int(r * math.Cos(a))
		dy := int(r * math.Sin(a) * 0.5)
		c.DrawLine(cx-dx, iy-dy, cx+dx, iy+dy)
	}

	if v.Feeding {
		tip := top - 6
		c.DrawLine(cx+10, 0, cx+10, tip)
		c.DrawLine(cx+10, tip, cx+7, tip-3)
		c.DrawLine(cx+10, tip, cx+13, tip-3)
	}
}
