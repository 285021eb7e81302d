// Package query defines the request contract of the repair tracking
// client: the recursive where grammar, projections, mutation payloads,
// aggregation arguments and the validation applied before a request is
// handed to the engine.
//
// Requests are plain data. They can be built by hand:
//
//	req := query.Request{
//		Model:  "User",
//		Action: query.FindMany,
//		Args: &query.Query{
//			Where:   []query.Predicate{query.FieldContains("email", "@x.com")},
//			OrderBy: []query.Order{query.Desc("id")},
//			Take:    query.Take(10),
//		},
//	}
//
// or through the typed delegates of the client package, which produce the
// same values.
package query
