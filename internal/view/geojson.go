package view

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// FeatureCollection exports the model as GeoJSON for map clients that
// consume features directly. Roads, tour segments, stop markers and
// warehouses become features tagged with a "layer" property.
func (m Model) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, r := range m.Roads {
		f := geojson.NewFeature(r.Line)
		f.Properties["layer"] = "road"
		f.Properties["start"] = int64(r.Edge.Start)
		f.Properties["end"] = int64(r.Edge.End)
		if r.Edge.Name != "" {
			f.Properties["name"] = r.Edge.Name
		}
		fc.Append(f)
	}

	for _, t := range m.Tours {
		if len(t.Segments) > 0 {
			f := geojson.NewFeature(orb.MultiLineString(t.Segments))
			f.Properties["layer"] = "tour"
			f.Properties["courier"] = int64(t.Courier)
			f.Properties["color"] = t.Color
			f.Properties["distance"] = t.TotalDistance
			f.Properties["duration"] = t.TotalDuration.Seconds()
			fc.Append(f)
		}
		for _, mk := range t.Markers {
			f := geojson.NewFeature(mk.Point)
			f.Properties["layer"] = "stop"
			f.Properties["courier"] = int64(mk.Courier)
			f.Properties["index"] = mk.Index
			f.Properties["icon"] = mk.Icon
			f.Properties["node"] = int64(mk.Node)
			f.Properties["request"] = mk.RequestID
			f.Properties["color"] = t.Color
			f.Properties["popup"] = mk.Popup
			fc.Append(f)
		}
	}

	for _, w := range m.Warehouses {
		f := geojson.NewFeature(w.Point)
		f.Properties["layer"] = "warehouse"
		f.Properties["node"] = int64(w.Node)
		fc.Append(f)
	}

	if !m.TourBounds.IsEmpty() {
		fc.BBox = geojson.NewBBox(m.TourBounds)
	}
	return fc
}
