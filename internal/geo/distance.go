package geo

import (
	"math"

	"github.com/rachitshah07/drone-survey-management-system/models"
)

// EarthRadiusMeters is Earth's radius in meters for the Haversine calculation.
const EarthRadiusMeters = 6371008.8

// HaversineMeters calculates the great-circle distance between two points
// on Earth in meters using the Haversine formula.
func HaversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	const degToRad = math.Pi / 180
	dLat := (lat2 - lat1) * degToRad
	dLng := (lng2 - lng1) * degToRad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// PathLengthMeters sums the leg distances of a waypoint path.
func PathLengthMeters(pts []models.Coordinate) float64 {
	var total float64
	for i := 1; i < len(pts); i++ {
		total += HaversineMeters(pts[i-1].Lat, pts[i-1].Lng, pts[i].Lat, pts[i].Lng)
	}
	return total
}

// EstimateDurationMinutes estimates flight time in whole minutes for a path of
// the given length at the given speed. Returns 0 when speed is not positive.
func EstimateDurationMinutes(pathMeters, speedMPS float64) int {
	if speedMPS <= 0 || pathMeters <= 0 {
		return 0
	}
	minutes := pathMeters / speedMPS / 60
	return int(math.Ceil(minutes))
}
