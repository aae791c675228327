package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/funcplot/pkg/observability"
	"github.com/matzehuels/funcplot/pkg/render/sink"
)

// Render writes the plan in every format of o.
func Render(ctx context.Context, p *Plan, o *Options) (map[string][]byte, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, o.Formats)
	start := time.Now()

	artifacts, err := renderFormats(p, o)
	hooks.OnRenderComplete(ctx, o.Formats, time.Since(start), err)
	return artifacts, err
}

func renderFormats(p *Plan, o *Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(o.Formats))
	for _, format := range o.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(p.Scene, svgOptions(o)...)
		case FormatPNG:
			data, err = sink.RenderPNG(p.Scene, imageOptions(o)...)
		case FormatPDF:
			data, err = sink.RenderPDF(p.Scene, imageOptions(o)...)
		case FormatJSON:
			data, err = sink.RenderJSON(p.Scene, sink.WithJSONSources(p.Sources), sink.WithJSONIndent())
		default:
			return nil, ValidateFormat(format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func svgOptions(o *Options) []sink.SVGOption {
	var opts []sink.SVGOption
	if o.Legend {
		opts = append(opts, sink.WithLegend())
	}
	return opts
}

func imageOptions(o *Options) []sink.ImageOption {
	var opts []sink.ImageOption
	if o.Legend {
		opts = append(opts, sink.WithImageLegend())
	}
	return opts
}
