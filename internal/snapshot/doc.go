// Package snapshot turns a notification's media reference, and optionally
// the recorded full frame behind it, into the ordered image list a vision
// provider receives.
//
// Acquisition is best-effort throughout: a failed fetch, an undecodable
// frame, or a failed resize narrows the selection instead of failing the
// event, and an empty selection simply means the notification goes out
// unenhanced.
package snapshot
