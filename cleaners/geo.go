package cleaners

// DataCite geolocations arrive as a list of objects that may hold a
// geoLocationPoint, a geoLocationBox, a geoLocationPolygon, and a
// geoLocationPlace, in any combination, with coordinates that are
// sometimes numbers and sometimes strings.  The normalized shape
// renders points and polygons as WKT strings, coerces box bounds to
// strings, and drops objects that end up empty.

var boxBounds = []string{
	"northBoundLatitude",
	"southBoundLatitude",
	"eastBoundLongitude",
	"westBoundLongitude",
}

// TransformGeoLocations reshapes a geolocation list into its
// normalized point/box representation.  Non-list input passes through
// unchanged, and values already in the normalized shape survive a
// second pass untouched.
func TransformGeoLocations(x interface{}) (interface{}, error) {
	list, is := x.([]interface{})
	if !is {
		return x, nil
	}

	acc := make([]interface{}, 0, len(list))
	for _, elem := range list {
		loc, is := elem.(map[string]interface{})
		if !is {
			if elem != nil {
				acc = append(acc, elem)
			}
			continue
		}

		if p, have := loc["geoLocationPoint"]; have {
			loc["geoLocationPoint"] = geoPoint(p)
		}
		if b, have := loc["geoLocationBox"]; have {
			loc["geoLocationBox"] = geoBox(b)
		}
		if p, have := loc["geoLocationPolygon"]; have {
			if wkt := geoPolygon(p); wkt != "" {
				loc["geoLocationPolygon"] = wkt
			} else {
				delete(loc, "geoLocationPolygon")
			}
		}

		if 0 < len(loc) {
			acc = append(acc, loc)
		}
	}

	return acc, nil
}

// geoPoint renders "POINT(lng lat)" or nil.  A string is assumed to
// be WKT already.
func geoPoint(x interface{}) interface{} {
	switch vv := x.(type) {
	case string:
		return vv
	case map[string]interface{}:
		lng, ok := coord(vv["pointLongitude"])
		if !ok {
			return nil
		}
		lat, ok := coord(vv["pointLatitude"])
		if !ok {
			return nil
		}
		return "POINT(" + lng + " " + lat + ")"
	default:
		return nil
	}
}

// geoBox coerces the four bound fields to string-or-nil, in place.
func geoBox(x interface{}) interface{} {
	box, is := x.(map[string]interface{})
	if !is {
		return x
	}
	for _, bound := range boxBounds {
		if v, have := box[bound]; have {
			if s, ok := coord(v); ok {
				box[bound] = s
			} else {
				box[bound] = nil
			}
		}
	}
	return box
}

// geoPolygon renders "POLYGON((lng lat, ...))" or "" when the points
// are unusable.  A string is assumed to be WKT already.
func geoPolygon(x interface{}) string {
	switch vv := x.(type) {
	case string:
		return vv
	case []interface{}:
		points := vv
		// Some records wrap the point list in one more list.
		if 0 < len(points) {
			if inner, is := points[0].([]interface{}); is {
				points = inner
			}
		}
		data := ""
		for _, p := range points {
			m, is := p.(map[string]interface{})
			if !is {
				continue
			}
			pp, is := m["polygonPoint"].(map[string]interface{})
			if !is {
				continue
			}
			lng, ok := coord(pp["pointLongitude"])
			if !ok {
				continue
			}
			lat, ok := coord(pp["pointLatitude"])
			if !ok {
				continue
			}
			if data != "" {
				data += ", "
			}
			data += lng + " " + lat
		}
		if data == "" {
			return ""
		}
		return "POLYGON((" + data + "))"
	default:
		return ""
	}
}

// coord renders a coordinate as text.  Numbers keep their value;
// strings are assumed to be coordinates already.
func coord(x interface{}) (string, bool) {
	switch vv := x.(type) {
	case string:
		if blank(vv) {
			return "", false
		}
		return vv, true
	case float64, int, int64:
		s, err := Stringify(x)
		if err != nil {
			return "", false
		}
		return s, true
	default:
		return "", false
	}
}
