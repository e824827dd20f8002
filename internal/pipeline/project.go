package pipeline

import "github.com/ventodata/sigel-etl/internal/model"

// Project derives scalar latitude/longitude fields from each record's point
// geometry, in place. Records without a usable geometry keep nil
// coordinates; missing geometry is a data-quality condition, not an error.
func Project(recs []model.Turbine) {
	for i := range recs {
		if !recs[i].HasGeometry() {
			continue
		}
		lon, lat := recs[i].Geometry.X(), recs[i].Geometry.Y()
		recs[i].Longitude = &lon
		recs[i].Latitude = &lat
	}
}
