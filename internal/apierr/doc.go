// Package apierr turns any failure value into the API's single JSON error
// envelope and the HTTP status to send with it.
//
// A value is first converted into exactly one family: validation, duplicate
// key, cast, parse, status, generic or unknown. The envelope and the status
// are both derived from that family, so Classify and ResolveStatus always
// agree. Wrapped errors are searched from the outermost layer inward and the
// first layer with a recognised shape decides the family.
package apierr
