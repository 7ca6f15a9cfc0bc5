package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Zone identifies a UTM grid zone, e.g. 32V.
type Zone struct {
	Number int
	Letter string
}

// DefaultZone covers the source dataset (southern Norway).
var DefaultZone = Zone{Number: 32, Letter: "V"}

// ZoneLetters lists the valid MGRS latitude band letters (I and O are skipped).
const ZoneLetters = "CDEFGHJKLMNPQRSTUVWX"

// Northern reports whether the zone lies in the northern hemisphere.
// Bands N through X are north of the equator.
func (z Zone) Northern() bool {
	return z.Letter >= "N"
}

// CentralMeridian returns the longitude of the zone's central meridian in degrees.
func (z Zone) CentralMeridian() float64 {
	return float64((z.Number-1)*6 - 180 + 3)
}

func (z Zone) String() string {
	return strconv.Itoa(z.Number) + z.Letter
}

// WGS84 ellipsoid and UTM projection constants.
const (
	utmScale          = 0.9996
	utmFalseEasting   = 500000.0
	utmFalseNorthing  = 10000000.0
	wgs84SemiMajor    = 6378137.0
	wgs84EccentricSq  = 0.00669438
	wgs84SecondEccSq  = wgs84EccentricSq / (1 - wgs84EccentricSq)
	wgs84EccentricSq2 = wgs84EccentricSq * wgs84EccentricSq
	wgs84EccentricSq3 = wgs84EccentricSq2 * wgs84EccentricSq
)

// Footpoint latitude series coefficients, derived from e1 = (1-√(1-e²))/(1+√(1-e²)).
var (
	e1  = (1 - math.Sqrt(1-wgs84EccentricSq)) / (1 + math.Sqrt(1-wgs84EccentricSq))
	e12 = e1 * e1
	e13 = e12 * e1
	e14 = e13 * e1
	e15 = e14 * e1

	meridianM1 = 1 - wgs84EccentricSq/4 - 3*wgs84EccentricSq2/64 - 5*wgs84EccentricSq3/256

	footP2 = 3.0/2*e1 - 27.0/32*e13 + 269.0/512*e15
	footP3 = 21.0/16*e12 - 55.0/32*e14
	footP4 = 151.0/96*e13 - 417.0/128*e15
	footP5 = 1097.0 / 512 * e14
)

// ToLatLon converts a UTM easting/northing in the given zone to WGS84 latitude
// and longitude in decimal degrees. NaN inputs yield NaN outputs.
func ToLatLon(easting, northing float64, zone Zone) (lat, lon float64) {
	x := easting - utmFalseEasting
	y := northing
	if !zone.Northern() {
		y -= utmFalseNorthing
	}

	m := y / utmScale
	mu := m / (wgs84SemiMajor * meridianM1)

	phi := mu +
		footP2*math.Sin(2*mu) +
		footP3*math.Sin(4*mu) +
		footP4*math.Sin(6*mu) +
		footP5*math.Sin(8*mu)

	sinPhi := math.Sin(phi)
	cosPhi := math.Cos(phi)
	tanPhi := sinPhi / cosPhi
	tan2 := tanPhi * tanPhi
	tan4 := tan2 * tan2

	ep := 1 - wgs84EccentricSq*sinPhi*sinPhi
	n := wgs84SemiMajor / math.Sqrt(ep)
	r := (1 - wgs84EccentricSq) / ep

	c := wgs84SecondEccSq * cosPhi * cosPhi
	c2 := c * c

	d := x / (n * utmScale)
	d2 := d * d
	d3 := d2 * d
	d4 := d3 * d
	d5 := d4 * d
	d6 := d5 * d

	latRad := phi - (tanPhi/r)*(d2/2-
		d4/24*(5+3*tan2+10*c-4*c2-9*wgs84SecondEccSq)+
		d6/720*(61+90*tan2+298*c+45*tan4-252*wgs84SecondEccSq-3*c2))

	lonRad := (d -
		d3/6*(1+2*tan2+c) +
		d5/120*(5-2*c+28*tan2-3*c2+8*wgs84SecondEccSq+24*tan4)) / cosPhi

	return latRad * 180 / math.Pi, lonRad*180/math.Pi + zone.CentralMeridian()
}

// ParseUTM splits "<easting> <northing>" into numbers. Missing or non-numeric
// tokens come back as NaN; tokens past the second are ignored.
func ParseUTM(s string) (easting, northing float64) {
	fields := strings.Fields(s)
	return parseFloatOrNaN(fields, 0), parseFloatOrNaN(fields, 1)
}

func parseFloatOrNaN(fields []string, i int) float64 {
	if i >= len(fields) {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(fields[i], 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// Valid UTM easting and northing bounds in metres.
const (
	minEasting  = 100000.0
	maxEasting  = 1000000.0
	minNorthing = 0.0
	maxNorthing = 10000000.0
)

// CheckUTMRange returns an error wrapping ErrInvalidUTM when easting lies
// outside [100000, 1000000) or northing outside [0, 10000000]. NaN values
// pass; ToLatLon already propagates them.
func CheckUTMRange(easting, northing float64) error {
	if easting < minEasting || easting >= maxEasting {
		return fmt.Errorf("easting %.0f outside [%.0f, %.0f): %w", easting, minEasting, maxEasting, ErrInvalidUTM)
	}
	if northing < minNorthing || northing > maxNorthing {
		return fmt.Errorf("northing %.0f outside [%.0f, %.0f]: %w", northing, minNorthing, maxNorthing, ErrInvalidUTM)
	}
	return nil
}

// FormatDegrees renders a coordinate with five decimals. NaN renders as "NaN".
func FormatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', 5, 64)
}
