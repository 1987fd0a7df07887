// Package domain defines the core business types for the newsletter
// subscription service.
//
// Types in this package are value objects. The validated types
// (SubscriberName, SubscriberEmail, NewSubscriber) can only be obtained
// through their Parse functions, so any value of those types that reaches
// a service or repository has already crossed the trust boundary.
//
// Rules for this package:
//   - No imports from other internal/ packages
//   - No *sql.DB, no http.Request, no context.Context in struct fields
//   - JSON/DB tags are allowed (they're metadata, not behavior)
//   - Validation functions are allowed (they're pure functions on the type)
package domain
