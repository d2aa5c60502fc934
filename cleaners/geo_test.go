package cleaners

import (
	"reflect"
	"testing"

	. "github.com/schemawash/schemawash/util/testutil"
)

func geo(t *testing.T, x interface{}) interface{} {
	got, err := TransformGeoLocations(x)
	if err != nil {
		t.Fatal(err)
	}
	// Second pass must be a no-op.
	again, err := TransformGeoLocations(got)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(again, got) {
		t.Fatalf("not idempotent: %s then %s", JS(got), JS(again))
	}
	return got
}

func TestGeoNonList(t *testing.T) {
	if got := geo(t, nil); got != nil {
		t.Fatal(got)
	}
	if got := geo(t, "POINT(1 2)"); got != "POINT(1 2)" {
		t.Fatal(got)
	}
}

func TestGeoPoint(t *testing.T) {
	got := geo(t, Record(`{"geoLocations":[
      {"geoLocationPoint":{"pointLongitude":-105.27,"pointLatitude":40.01},
       "geoLocationPlace":"Boulder"}
    ]}`)["geoLocations"])

	list := got.([]interface{})
	if len(list) != 1 {
		t.Fatal(JS(got))
	}
	loc := list[0].(map[string]interface{})
	if loc["geoLocationPoint"] != "POINT(-105.27 40.01)" {
		t.Fatal(JS(loc))
	}
	if loc["geoLocationPlace"] != "Boulder" {
		t.Fatal(JS(loc))
	}
}

func TestGeoPointStringCoords(t *testing.T) {
	got := geo(t, Record(`{"g":[
      {"geoLocationPoint":{"pointLongitude":"-105.27","pointLatitude":"40.01"}}
    ]}`)["g"])

	loc := got.([]interface{})[0].(map[string]interface{})
	if loc["geoLocationPoint"] != "POINT(-105.27 40.01)" {
		t.Fatal(JS(loc))
	}
}

func TestGeoPointBad(t *testing.T) {
	// A point without usable coordinates becomes nil but the
	// object survives because of its other fields.
	got := geo(t, Record(`{"g":[
      {"geoLocationPoint":{"pointLongitude":""},"geoLocationPlace":"x"}
    ]}`)["g"])

	loc := got.([]interface{})[0].(map[string]interface{})
	if loc["geoLocationPoint"] != nil {
		t.Fatal(JS(loc))
	}
}

func TestGeoBox(t *testing.T) {
	got := geo(t, Record(`{"g":[
      {"geoLocationBox":{
        "northBoundLatitude":41,
        "southBoundLatitude":"40",
        "eastBoundLongitude":-104,
        "westBoundLongitude":false}}
    ]}`)["g"])

	box := got.([]interface{})[0].(map[string]interface{})["geoLocationBox"].(map[string]interface{})
	if box["northBoundLatitude"] != "41" || box["southBoundLatitude"] != "40" {
		t.Fatal(JS(box))
	}
	if box["eastBoundLongitude"] != "-104" {
		t.Fatal(JS(box))
	}
	if box["westBoundLongitude"] != nil {
		t.Fatal(JS(box))
	}
}

func TestGeoPolygon(t *testing.T) {
	got := geo(t, Record(`{"g":[
      {"geoLocationPolygon":[
        {"polygonPoint":{"pointLongitude":1,"pointLatitude":2}},
        {"polygonPoint":{"pointLongitude":3,"pointLatitude":4}}
      ]}
    ]}`)["g"])

	loc := got.([]interface{})[0].(map[string]interface{})
	if loc["geoLocationPolygon"] != "POLYGON((1 2, 3 4))" {
		t.Fatal(JS(loc))
	}
}

func TestGeoPolygonNested(t *testing.T) {
	// Some records wrap the point list in one more list.
	got := geo(t, Record(`{"g":[
      {"geoLocationPolygon":[[
        {"polygonPoint":{"pointLongitude":1,"pointLatitude":2}}
      ]]}
    ]}`)["g"])

	loc := got.([]interface{})[0].(map[string]interface{})
	if loc["geoLocationPolygon"] != "POLYGON((1 2))" {
		t.Fatal(JS(loc))
	}
}

func TestGeoDropsEmpty(t *testing.T) {
	// A polygon with no usable points is deleted, and an object
	// that ends up empty is dropped, as are nil elements.
	got := geo(t, Record(`{"g":[
      {"geoLocationPolygon":[{"polygonPoint":{}}]},
      null,
      {"geoLocationPlace":"Boulder"}
    ]}`)["g"])

	list := got.([]interface{})
	if len(list) != 1 {
		t.Fatal(JS(got))
	}
	if list[0].(map[string]interface{})["geoLocationPlace"] != "Boulder" {
		t.Fatal(JS(list))
	}
}
