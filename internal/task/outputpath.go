// Copyright (c) 2026 The AudioBatch Authors. All rights reserved.
// Use of this source code is governed by the MIT License.
//
// AudioBatch - batch media-to-audio conversion tool

package task

import (
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultNameTemplate is used when the request carries no template.
const DefaultNameTemplate = "{basename}.mp3"

// normalizeFormat maps a requested format (or output extension) to the
// encoder branch name. Anything unrecognized takes the MP3 path.
func normalizeFormat(format string) string {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "aac", "m4a":
		return "aac"
	case "flac":
		return "flac"
	case "ogg":
		return "ogg"
	case "opus":
		return "opus"
	default:
		return "mp3"
	}
}

// outputExtension picks the file extension for a requested format,
// keeping the user's spelling (m4a stays m4a) when it is a known
// container.
func outputExtension(format string) string {
	f := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
	switch f {
	case "mp3", "aac", "m4a", "flac", "ogg", "opus":
		return f
	default:
		return "mp3"
	}
}

// expandTemplate substitutes the recognized naming tokens. Unknown
// tokens stay literal.
func expandTemplate(template string, req Request, basename string) string {
	bitrate, vbr := "", ""
	if req.BitrateKbps > 0 {
		bitrate = strconv.Itoa(req.BitrateKbps)
	}
	if req.VBRQuality >= 0 {
		vbr = strconv.Itoa(req.VBRQuality)
	}
	return strings.NewReplacer(
		"{basename}", basename,
		"{ext}", outputExtension(req.Format),
		"{bitrate}", bitrate,
		"{vbr}", vbr,
	).Replace(template)
}

// OutputPath computes the output path for one candidate: template-driven
// filename with the extension rewritten for the target format, under the
// flat output root or a structure-preserving subdirectory.
func OutputPath(req Request, input string) string {
	base := filepath.Base(input)
	basename := strings.TrimSuffix(base, filepath.Ext(base))

	template := req.NameTemplate
	if strings.TrimSpace(template) == "" {
		template = DefaultNameTemplate
	}

	name := expandTemplate(template, req, basename)
	name = strings.TrimSuffix(name, filepath.Ext(name)) + "." + outputExtension(req.Format)

	dir := req.OutputDir
	if req.KeepStructure && req.WorkDir != "" {
		rel, err := filepath.Rel(req.WorkDir, filepath.Dir(input))
		if err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
			dir = filepath.Join(dir, rel)
		}
	}
	return filepath.Join(dir, name)
}
