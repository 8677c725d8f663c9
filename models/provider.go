package models

// GeoPoint represents a GeoJSON Point.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`               // Always "Point"
	Coordinates []float64 `bson:"coordinates" json:"coordinates"` // [longitude, latitude]
}

// NewGeoPoint builds a GeoJSON point from longitude/latitude.
func NewGeoPoint(lon, lat float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lon, lat}}
}

// Lon returns the longitude, or 0 when the point is malformed.
func (p GeoPoint) Lon() float64 {
	if len(p.Coordinates) < 2 {
		return 0
	}
	return p.Coordinates[0]
}

// Lat returns the latitude, or 0 when the point is malformed.
func (p GeoPoint) Lat() float64 {
	if len(p.Coordinates) < 2 {
		return 0
	}
	return p.Coordinates[1]
}

// ProviderRef is the engine's view of a vendor or field worker. Profile and
// lifecycle fields live in the provider service; the dispatch engine only
// needs identity, position, availability and a reachable push channel.
type ProviderRef struct {
	ID          string   `bson:"id" json:"id"`
	LocationGeo GeoPoint `bson:"locationGeo" json:"locationGeo"`
	Available   bool     `bson:"available" json:"available"`
	FCMToken    string   `bson:"fcmToken,omitempty" json:"-"`

	// DistanceMeters is populated by geo queries; zero otherwise.
	DistanceMeters float64 `bson:"distance,omitempty" json:"distanceMeters,omitempty"`
}
