// Package tracking normalizes package tracking payloads from Ship24 into a shipment status and
// talks to the Ship24 API.
//
// Payloads are handled as decoded JSON (map[string]any) because Ship24 answers in several shapes
// depending on the endpoint and plan: the create-tracker response, the search response, the tracker
// results and the webhook push all nest the shipment and its events differently.
package tracking
