package pipeline

import (
	"io"
	"strings"

	"github.com/BurntSushi/toml"

	ferrors "github.com/matzehuels/funcplot/pkg/errors"
)

// LoadFile reads a TOML plot file. Keys the schema does not know are an
// INVALID_INPUT error, so a typo never silently falls back to a default.
func LoadFile(path string) (Options, error) {
	var o Options
	md, err := toml.DecodeFile(path, &o)
	if err != nil {
		return Options{}, ferrors.Wrap(ferrors.ErrCodeInvalidInput, err, "read plot file %s", path)
	}
	return o, checkUndecoded(md)
}

// Decode reads a TOML plot description from r.
func Decode(r io.Reader) (Options, error) {
	var o Options
	md, err := toml.NewDecoder(r).Decode(&o)
	if err != nil {
		return Options{}, ferrors.Wrap(ferrors.ErrCodeInvalidInput, err, "decode plot")
	}
	return o, checkUndecoded(md)
}

// Encode writes o as TOML, the inverse of Decode for the exported fields.
func Encode(w io.Writer, o Options) error {
	return toml.NewEncoder(w).Encode(o)
}

func checkUndecoded(md toml.MetaData) error {
	keys := md.Undecoded()
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return ferrors.New(ferrors.ErrCodeInvalidInput, "unknown plot keys: %s", strings.Join(names, ", "))
}
