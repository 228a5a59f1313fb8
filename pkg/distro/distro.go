// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package distro guesses which spec style fits the running system, for the
// --spec-style flag default.
package distro

import (
	"os"
	"strings"
)

// Detect returns the spec style matching the running system's distribution
// family, per /etc/os-release.
func Detect() string {
	return DetectFromFile("/etc/os-release")
}

// DetectFromFile is Detect against a specific os-release file.  Unreadable
// file or unrecognized distribution falls back to "suse".
func DetectFromFile(filename string) string {
	content, err := os.ReadFile(filename)
	if err != nil {
		return "suse"
	}
	ids := make([]string, 0, 2)
	for _, line := range strings.Split(string(content), "\n") {
		if val := strings.TrimPrefix(line, "ID="); val != line {
			ids = append(ids, strings.Trim(val, `"'`))
		}
		if val := strings.TrimPrefix(line, "ID_LIKE="); val != line {
			ids = append(ids, strings.Fields(strings.Trim(val, `"'`))...)
		}
	}
	for _, id := range ids {
		switch {
		case strings.Contains(id, "suse"):
			return "suse"
		case id == "fedora" || id == "rhel" || id == "centos":
			return "fedora"
		}
	}
	return "suse"
}
