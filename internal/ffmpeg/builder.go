// Copyright (c) 2026 The AudioBatch Authors. All rights reserved.
// Use of this source code is governed by the MIT License.
//
// AudioBatch - batch media-to-audio conversion tool

package ffmpeg

import (
	"fmt"
	"strconv"
)

// EBU R128 normalization targets.
const (
	targetI   = -16.0
	targetTP  = -1.5
	targetLRA = 11.0
)

// Static fallbacks when pass 1 produced no parseable statistics.
const (
	fallbackMeasuredI      = -16.0
	fallbackMeasuredTP     = -1.5
	fallbackMeasuredLRA    = 11.0
	fallbackMeasuredThresh = -26.0
)

// minBitrateKbps floors the constant-bitrate selector to avoid
// degenerate output.
const minBitrateKbps = 32

// Output format to encoder mapping. Only the MP3 path is fully
// exercised; the remaining branches are the forward-declared surface for
// the other container extensions.
var formatEncoders = map[string]string{
	"mp3":  "libmp3lame",
	"aac":  "aac",
	"flac": "flac",
	"ogg":  "libvorbis",
	"opus": "libopus",
}

// buildEncodeArgs assembles the full ffmpeg argument list for one encode.
func buildEncodeArgs(p EncodeParams) []string {
	args := []string{"-hide_banner", "-y", "-nostdin", "-i", p.Input}

	hasCover := p.CoverPath != ""
	if hasCover {
		args = append(args, "-i", p.CoverPath)
	}

	if p.TrimStart > 0 {
		args = append(args, "-ss", formatSeconds(p.TrimStart))
	}
	if p.TrimEnd > 0 {
		args = append(args, "-to", formatSeconds(p.TrimEnd))
	}

	args = append(args, "-map", "0:a:0")
	if hasCover {
		args = append(args,
			"-map", "1:v:0",
			"-c:v", "copy",
			"-disposition:v:0", "attached_pic",
			"-metadata:s:v", "title=Album cover",
			"-metadata:s:v", "comment=Cover (front)",
		)
	} else {
		args = append(args, "-vn")
	}

	encoder := formatEncoders[p.Format]
	if encoder == "" {
		encoder = formatEncoders["mp3"]
	}
	args = append(args, "-c:a", encoder)

	// VBR wins over constant bitrate when both are given.
	if p.VBRQuality >= 0 {
		args = append(args, "-q:a", strconv.Itoa(p.VBRQuality))
	} else if p.BitrateKbps > 0 {
		kbps := p.BitrateKbps
		if kbps < minBitrateKbps {
			kbps = minBitrateKbps
		}
		args = append(args, "-b:a", fmt.Sprintf("%dk", kbps))
	}

	if p.SampleRate > 0 {
		args = append(args, "-ar", strconv.Itoa(p.SampleRate))
	}
	if p.Channels > 0 {
		args = append(args, "-ac", strconv.Itoa(p.Channels))
	}
	if p.Threads > 0 {
		args = append(args, "-threads", strconv.Itoa(p.Threads))
	}

	if p.Normalize {
		args = append(args, "-af", encodeFilter(p))
	}

	args = append(args, tagArgs(p)...)
	if p.Format == "mp3" || p.Format == "" {
		args = append(args, "-id3v2_version", "3")
	}

	return append(args, p.Output)
}

// measureFilter is the pass-1 loudnorm filter: measurement only, JSON
// report on stderr.
func measureFilter() string {
	return fmt.Sprintf("loudnorm=I=%g:TP=%g:LRA=%g:print_format=json",
		targetI, targetTP, targetLRA)
}

// encodeFilter is the pass-2 loudnorm filter. Measured values from pass 1
// are fed back in linear mode so the filter computes a single-pass
// equivalent gain curve; missing measurements use the static fallbacks.
func encodeFilter(p EncodeParams) string {
	mI, mTP, mLRA, mThresh := fallbackMeasuredI, fallbackMeasuredTP, fallbackMeasuredLRA, fallbackMeasuredThresh
	offset := 0.0
	if p.Loudness.Measured {
		mI = p.Loudness.InputI
		mTP = p.Loudness.InputTP
		mLRA = p.Loudness.InputLRA
		mThresh = p.Loudness.InputThresh
		offset = p.Loudness.TargetOffset
	}
	return fmt.Sprintf(
		"loudnorm=I=%g:TP=%g:LRA=%g:measured_I=%g:measured_TP=%g:measured_LRA=%g:measured_thresh=%g:offset=%g:linear=true",
		targetI, targetTP, targetLRA, mI, mTP, mLRA, mThresh, offset)
}

// tagArgs builds the -metadata arguments, omitting empty fields.
func tagArgs(p EncodeParams) []string {
	var args []string
	add := func(key, value string) {
		if value != "" {
			args = append(args, "-metadata", key+"="+value)
		}
	}
	add("title", p.Tags.Title)
	add("artist", p.Tags.Artist)
	add("album", p.Tags.Album)
	add("genre", p.Tags.Genre)
	add("date", p.Tags.Date)
	add("track", p.Tags.Track)
	add("comment", p.Tags.Comment)
	return args
}

// formatSeconds renders a seconds value for -ss/-to.
func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', -1, 64)
}
