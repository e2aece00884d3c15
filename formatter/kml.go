package formatter

import (
	"fmt"
	"strconv"
	"strings"
)

// BuildKML serializes an aggregate to a KML document with one placemark per
// vessel holding its position and domain polygon.
func (rb *ResponseBuilder) BuildKML(agg *Aggregate) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString(`<kml xmlns="http://www.opengis.net/kml/2.2"><Document>`)
	b.WriteString("<name>ship domains ")
	b.WriteString(strconv.FormatUint(agg.Seq, 10))
	b.WriteString("</name>")
	for _, v := range agg.Vessels {
		writePlacemarkKML(&b, v)
	}
	b.WriteString("</Document></kml>")
	return []byte(b.String())
}

func writePlacemarkKML(b *strings.Builder, v VesselView) {
	b.WriteString("<Placemark>")
	b.WriteString("<name>")
	b.WriteString(xmlEscape(v.MMSI))
	b.WriteString("</name>")
	b.WriteString("<description>")
	b.WriteString(xmlEscape(fmt.Sprintf("sog %.1f kn, heading %.0f, length %.0f m, ts %s",
		v.SOG, v.Heading, v.Length, v.Timestamp)))
	b.WriteString("</description>")

	b.WriteString("<Style><LineStyle><color>")
	b.WriteString(kmlColor(255, v.Border[0], v.Border[1], v.Border[2]))
	b.WriteString("</color><width>2</width></LineStyle><PolyStyle><color>")
	b.WriteString(kmlColor(v.Fill[3], v.Fill[0], v.Fill[1], v.Fill[2]))
	b.WriteString("</color></PolyStyle></Style>")

	b.WriteString("<MultiGeometry><Point><coordinates>")
	writeCoord(b, v.Lon, v.Lat)
	b.WriteString("</coordinates></Point>")
	if len(v.Domain) > 0 {
		b.WriteString("<Polygon><outerBoundaryIs><LinearRing><coordinates>")
		for i, p := range v.Domain {
			if i > 0 {
				b.WriteByte(' ')
			}
			writeCoord(b, p[0], p[1])
		}
		b.WriteString("</coordinates></LinearRing></outerBoundaryIs></Polygon>")
	}
	b.WriteString("</MultiGeometry>")
	b.WriteString("</Placemark>")
}

func writeCoord(b *strings.Builder, lon, lat float64) {
	b.WriteString(strconv.FormatFloat(lon, 'f', 7, 64))
	b.WriteByte(',')
	b.WriteString(strconv.FormatFloat(lat, 'f', 7, 64))
}

// kmlColor encodes a color in KML's aabbggrr order.
func kmlColor(a, r, g, bl int) string {
	return fmt.Sprintf("%02x%02x%02x%02x", a&0xff, bl&0xff, g&0xff, r&0xff)
}

func xmlEscape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&apos;",
	)
	return replacer.Replace(s)
}
