// Package services holds the small contracts the pipeline components agree
// on: context plumbing and error classification.
//
// The context helpers carry event identifiers, source ids, and component
// names so log lines from any stage can be tied back to one notification.
// The sentinel errors and Wrap tag failures with the class that later shows
// up as the fallback reason on a dispatch (configuration, timeout, schema,
// and so on).
package services
