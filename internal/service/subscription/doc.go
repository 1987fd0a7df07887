// Package subscription implements subscriber ingestion: raw form in,
// validated NewSubscriber persisted through the Repository.
//
// The service contains no HTTP or SQL. Validation failures come back as
// *domain.ValidationError and never reach the repository; storage failures
// come back as *StorageError.
package subscription
