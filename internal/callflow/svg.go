package callflow

import (
	"fmt"
	"html"
	"strings"
)

// Hex values behind the semantic color tags.
var colorHex = map[ColorTag]string{
	ColorGreen:  "#16a34a",
	ColorRed:    "#dc2626",
	ColorBlue:   "#2563eb",
	ColorGray:   "#6b7280",
	ColorPurple: "#9333ea",
	ColorOrange: "#ea580c",
	ColorCyan:   "#0891b2",
}

func hexFor(c ColorTag) string {
	if hex, ok := colorHex[c]; ok {
		return hex
	}
	return colorHex[ColorGray]
}

// RenderSVG serializes a computed diagram as a standalone SVG document.
// Geometry comes entirely from Layout; this function only draws.
func RenderSVG(geo DiagramGeometry) string {
	var b strings.Builder

	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f" font-family="monospace" font-size="12">`,
		geo.Width, geo.Height, geo.Width, geo.Height)
	b.WriteString(`<defs><marker id="head" markerWidth="10" markerHeight="8" refX="9" refY="4" orient="auto"><path d="M0,0 L10,4 L0,8 z" fill="context-stroke"/></marker></defs>`)

	lifelineBottom := geo.Height - bottomPadding/2
	for _, lane := range geo.Lifelines {
		fmt.Fprintf(&b, `<line x1="%.0f" y1="%.0f" x2="%.0f" y2="%.0f" stroke="#d1d5db" stroke-dasharray="4 4"/>`,
			lane.X, lifelineHeadH, lane.X, lifelineBottom)
		fmt.Fprintf(&b, `<text x="%.0f" y="%.0f" text-anchor="middle" fill="#111827">%s</text>`,
			lane.X, lifelineHeadH-12, html.EscapeString(lane.Short))
	}

	for _, arrow := range geo.Arrows {
		color := hexFor(arrow.Color)
		if arrow.TailX == arrow.HeadX {
			// Self-message: short loop to the right of the lifeline.
			fmt.Fprintf(&b, `<path d="M %.0f %.0f h 30 v 10 h -30" fill="none" stroke="%s" marker-end="url(#head)"/>`,
				arrow.TailX, arrow.Y, color)
		} else {
			fmt.Fprintf(&b, `<line x1="%.0f" y1="%.0f" x2="%.0f" y2="%.0f" stroke="%s" marker-end="url(#head)"/>`,
				arrow.TailX, arrow.Y, arrow.HeadX, arrow.Y, color)
		}
		labelX := (arrow.TailX + arrow.HeadX) / 2
		fmt.Fprintf(&b, `<text x="%.0f" y="%.0f" text-anchor="middle" fill="%s">%s</text>`,
			labelX, arrow.Y-6, color, html.EscapeString(arrow.Label))
	}

	if len(geo.Arrows) == 0 {
		fmt.Fprintf(&b, `<text x="%.0f" y="%.0f" text-anchor="middle" fill="#6b7280">no messages for this call</text>`,
			geo.Width/2, geo.Height/2)
	}

	b.WriteString(`</svg>`)
	return b.String()
}
