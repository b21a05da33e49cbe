// Copyright (c) 2026 The AudioBatch Authors. All rights reserved.
// Use of this source code is governed by the MIT License.
//
// AudioBatch - batch media-to-audio conversion tool

package ffmpeg

import (
	"os/exec"
	"regexp"
)

var reVersion = regexp.MustCompile(`^ffmpeg version (\S+)`)

// detectVersion runs `ffmpeg -version` and extracts the version token.
// An empty result means the binary did not identify itself as ffmpeg.
func detectVersion(binary string) string {
	cmd := exec.Command(binary, "-version")
	cmd.Env = []string{}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return ""
	}
	return parseVersion(out)
}

func parseVersion(data []byte) string {
	if m := reVersion.FindSubmatch(data); m != nil {
		return string(m[1])
	}
	return ""
}
