// Copyright 2021-2022
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package common

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"
)

const programName = "comex"

var (
	// commitHash contains the current Git revision.
	// Use mage to build to make sure this gets set.
	commitHash string

	// buildDate contains the date of the current build.
	buildDate string
)

// Version represents a SemVer 2.0.0 compatible build version
type Version struct {
	// Increment this for backwards incompatible changes
	Major int

	// Increment this for feature releases
	Minor int

	// Increment this for bug releases
	Patch int

	// Suffix is the pre-release label of the version string.
	// It will be blank for release versions.
	Suffix string
}

func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Suffix == "" {
		return s
	}

	s += "-" + v.Suffix
	if commitHash != "" {
		s += "+" + strings.ToLower(commitHash)
	}
	return s
}

// BuildInfo describes the running binary
type BuildInfo struct {
	Program      string   `json:"program"`
	Version      string   `json:"version"`
	Platform     string   `json:"platform"`
	GoVersion    string   `json:"goVersion"`
	BuildDate    string   `json:"buildDate"`
	Commit       string   `json:"commit"`
	Dependencies []string `json:"dependencies"`
}

// Build collects the version, link time metadata and module dependencies
func Build() BuildInfo {
	info := BuildInfo{
		Program:      programName,
		Version:      "v" + CurrentVersion.String(),
		Platform:     runtime.GOOS + "/" + runtime.GOARCH,
		GoVersion:    runtime.Version(),
		BuildDate:    buildDate,
		Commit:       commitHash,
		Dependencies: []string{},
	}
	if info.BuildDate == "" {
		info.BuildDate = "unknown"
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, dep := range bi.Deps {
			info.Dependencies = append(info.Dependencies, fmt.Sprintf("%s=%q", dep.Path, dep.Version))
		}
		sort.Strings(info.Dependencies)
	}

	return info
}

// BuildVersionString is what you see when running "comex version"
func BuildVersionString() string {
	info := Build()

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s %s\n\n", info.Program, info.Version, info.Platform)
	fmt.Fprintf(&sb, "Build Date: %s\nCommit: %s\nBuilt with: %s", info.BuildDate, info.Commit, info.GoVersion)
	if len(info.Dependencies) > 0 {
		sb.WriteString("\n\nDependencies:\n\n")
		sb.WriteString(strings.Join(info.Dependencies, "\n"))
	}
	return sb.String()
}
