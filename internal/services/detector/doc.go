// Package detector fetches recorded detection frames from the device that
// raised a notification. The capability is optional end to end: when no
// recorder is configured, or a fetch fails, the pipeline carries on with
// the cropped snapshot it already has.
package detector
