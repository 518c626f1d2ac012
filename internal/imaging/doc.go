// Package imaging downsizes snapshot frames before they are sent to a
// vision provider. Nearest-neighbor sampling keeps resize cost low; the
// model reads scene content, not pixel detail.
package imaging
