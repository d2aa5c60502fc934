// Package cleaners provides the stock cleaner functions implied by
// the DataCite cleaning specifications.
//
// The main cases are conversion of mixed fields to strings, removal
// of nulls and empty objects from lists, and some more specialized
// reshaping for geolocations and related-item citations.  Every
// function here is pure and idempotent: cleaning an already-clean
// value is a no-op, so running a specification twice yields the same
// record as running it once.
package cleaners

import (
	"github.com/schemawash/schemawash/core"
)

// Standard returns a Registry holding the stock cleaners.
func Standard() *core.Registry {
	r := core.NewRegistry()

	r.Register("normalize_to_string_or_none", NormalizeToStringOrNone)
	r.Register("empty_string_to_none", EmptyStringToNone)
	r.Register("remove_nulls_from_list", RemoveNullsFromList)
	r.Register("filter_non_empty_dicts", FilterNonEmptyDicts)
	r.Register("single_item_to_list", SingleItemToList)
	r.Register("normalize_related_item", NormalizeRelatedItem)
	r.Register("transform_geo_locations", TransformGeoLocations)

	r.RegisterMaker("nested_array_to_dict", NestedArrayToDict)

	return r
}
