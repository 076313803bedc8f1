package geojson

// Flatten reduces any Object to its singular geometries: features are
// unwrapped, feature collections and geometry collections are walked
// recursively, and plain geometries pass through unchanged. Order is
// preserved; features without geometry contribute nothing.
func Flatten(obj Object) []*Geometry {
	var out []*Geometry
	switch v := obj.(type) {
	case *Geometry:
		if v == nil {
			return nil
		}
		if v.Kind == TypeGeometryCollection {
			for _, sub := range v.Geometries {
				out = append(out, Flatten(sub)...)
			}
			return out
		}
		return []*Geometry{v}
	case *Feature:
		if v == nil || v.Geometry == nil {
			return nil
		}
		return Flatten(v.Geometry)
	case *FeatureCollection:
		if v == nil {
			return nil
		}
		for _, f := range v.Features {
			out = append(out, Flatten(f)...)
		}
		return out
	default:
		return nil
	}
}
