package cache

import "strings"

// Keyer derives cache keys. Keys carry a readable type prefix followed by a
// hash of everything that influences the cached value.
type Keyer interface {
	// SeriesKey identifies the samples of one expression over a range.
	SeriesKey(source string, opts SeriesKeyOpts) string
	// ArtifactKey identifies one rendered output of a plot.
	ArtifactKey(planHash string, opts ArtifactKeyOpts) string
}

// SeriesKeyOpts are the sampling parameters that change a series.
type SeriesKeyOpts struct {
	XMin, XMax float64
	Points     int
}

// ArtifactKeyOpts are the output parameters that change an artifact.
type ArtifactKeyOpts struct {
	Format string
	Width  int
	Height int
}

// DefaultKeyer produces unscoped keys of the form "type:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) SeriesKey(source string, opts SeriesKeyOpts) string {
	return hashKey("series", source, opts.XMin, opts.XMax, opts.Points)
}

func (DefaultKeyer) ArtifactKey(planHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", planHash, opts.Format, opts.Width, opts.Height)
}

// KeyType extracts the type segment of a key ("series", "artifact"), ignoring
// any scope prefix. It returns "" for keys not produced by a Keyer.
func KeyType(key string) string {
	i := strings.LastIndexByte(key, ':')
	if i < 0 {
		return ""
	}
	head := key[:i]
	return head[strings.LastIndexByte(head, ':')+1:]
}
