package trip

import "math"

// maxNamesPerCluster caps the attraction names listed per band. Input is
// pre-sorted by ascending distance, so the cap keeps the nearest 5.
const maxNamesPerCluster = 5

// distanceBands are the clustering bands in increasing-distance order.
// An attraction belongs to the first band whose upper bound (inclusive)
// it satisfies: exactly 2.0 km is walking distance, not a short trip.
var distanceBands = []struct {
	limitKm float64
	label   string
}{
	{2, "Within 2km (Walking distance)"},
	{5, "Within 5km (Short trip)"},
	{10, "Within 10km (Moderate trip)"},
	{math.Inf(1), "Beyond 10km"},
}

// BuildTravelNotes groups attractions into distance bands. Attractions
// without a known distance are excluded from every band but still count
// toward TotalAttractions. Empty bands are omitted from the output.
func BuildTravelNotes(attractions []Attraction) TravelNotes {
	if len(attractions) == 0 {
		return TravelNotes{Clusters: []DistanceCluster{}, TotalAttractions: 0}
	}

	names := make([][]string, len(distanceBands))
	for _, a := range attractions {
		if a.DistanceKm == nil {
			continue
		}
		for i, band := range distanceBands {
			if *a.DistanceKm <= band.limitKm {
				names[i] = append(names[i], a.Name)
				break
			}
		}
	}

	clusters := make([]DistanceCluster, 0, len(distanceBands))
	for i, band := range distanceBands {
		if len(names[i]) == 0 {
			continue
		}
		capped := names[i]
		if len(capped) > maxNamesPerCluster {
			capped = capped[:maxNamesPerCluster]
		}
		clusters = append(clusters, DistanceCluster{
			Label:       band.label,
			Count:       len(names[i]),
			Attractions: capped,
		})
	}

	return TravelNotes{
		Clusters:         clusters,
		TotalAttractions: len(attractions),
	}
}
