// Package codecs resolves codecs by name.
package codecs

import (
	"fmt"
	"slices"

	"github.com/discochess/lzwpack/internal/codec"
	"github.com/discochess/lzwpack/internal/codec/brotlicodec"
	"github.com/discochess/lzwpack/internal/codec/gzipcodec"
	"github.com/discochess/lzwpack/internal/codec/lzwcodec"
	"github.com/discochess/lzwpack/internal/codec/noopcodec"
	"github.com/discochess/lzwpack/internal/codec/s2codec"
	"github.com/discochess/lzwpack/internal/codec/xzcodec"
	"github.com/discochess/lzwpack/internal/codec/zstdcodec"
)

// Default is the name of the codec used when none is configured.
const Default = "lzw"

var registry = map[string]func() codec.Codec{
	"lzw":    func() codec.Codec { return lzwcodec.New() },
	"gzip":   func() codec.Codec { return gzipcodec.New() },
	"zstd":   func() codec.Codec { return zstdcodec.New() },
	"s2":     func() codec.Codec { return s2codec.New() },
	"brotli": func() codec.Codec { return brotlicodec.New() },
	"xz":     func() codec.Codec { return xzcodec.New() },
	"none":   func() codec.Codec { return noopcodec.New() },
}

// ByName returns a codec with default settings. An empty name selects
// Default.
func ByName(name string) (codec.Codec, error) {
	if name == "" {
		name = Default
	}
	newCodec, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", codec.ErrUnknown, name, Names())
	}
	return newCodec(), nil
}

// ByExtension returns the codec whose files carry ext, without the dot.
func ByExtension(ext string) (codec.Codec, error) {
	for _, name := range Names() {
		c := registry[name]()
		if c.Extension() == ext {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: extension %q", codec.ErrUnknown, ext)
}

// Names returns the registered codec names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
