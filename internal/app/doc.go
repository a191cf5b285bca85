// Package app contains the application services: the CRUD operations over
// users, issues, and files, and the periodic stats aggregation. Services are
// the event producers - they build a domain event after each committed
// mutation and hand it to the broadcaster.
package app
