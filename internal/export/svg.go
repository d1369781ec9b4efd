package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/fedbatch/internal/history"
)

// Curve colours: biomass green, substrate red, product blue.
const (
	BiomassColor   = "#00a000"
	SubstrateColor = "#c82828"
	ProductColor   = "#2828c8"
)

// CurvesToSVG plots biomass, substrate and product against time on a shared
// concentration axis starting at zero.
func CurvesToSVG(s history.Series, width, height int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#ffffff"/>
<line x1="0" y1="%d" x2="%d" y2="%d" stroke="#000000"/>
<line x1="0" y1="0" x2="0" y2="%d" stroke="#000000"/>
`, width, height, width, height, height, width, height, height))

	if s.Len() < 2 {
		sb.WriteString("</svg>")
		return sb.String()
	}

	minT, maxT := s.Times[0], s.Times[len(s.Times)-1]
	rangeT := maxT - minT
	if rangeT == 0 {
		rangeT = 1
	}

	maxY := 0.0
	for _, series := range [][]float64{s.Biomass, s.Substrate, s.Product} {
		for _, v := range series {
			if v > maxY {
				maxY = v
			}
		}
	}
	if maxY == 0 {
		maxY = 1
	}
	maxY *= 1.1

	curves := []struct {
		name   string
		color  string
		values []float64
	}{
		{"biomass", BiomassColor, s.Biomass},
		{"substrate", SubstrateColor, s.Substrate},
		{"product", ProductColor, s.Product},
	}

	for _, c := range curves {
		sb.WriteString(fmt.Sprintf(`<path id="%s" fill="none" stroke="%s" stroke-width="1.5" d="M`, c.name, c.color))
		for i, v := range c.values {
			x := (s.Times[i] - minT) / rangeT * float64(width)
			y := float64(height) - v/maxY*float64(height)
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func WriteSVG(w io.Writer, s history.Series, width, height int) error {
	_, err := io.WriteString(w, CurvesToSVG(s, width, height))
	return err
}
