//go:build mage

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

package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName  = "comex"
	modulePath  = "github.com/penny-vault/comex"
	coverFile   = "coverage.out"
	packageName = "."
)

// allow user to override go executable by running as GOEXE=xxx mage ...
var goexe = "go"

func init() {
	if exe := os.Getenv("GOEXE"); exe != "" {
		goexe = exe
	}
}

// Build compiles the comex binary with the commit hash and build date
func Build() error {
	fmt.Println("Building...")
	return sh.RunWith(flagEnv(), goexe, args("build", "-o", binaryName, "-ldflags", ldflags(), buildFlags(), buildTags(), packageName)...)
}

// Install puts comex in $GOPATH/bin
func Install() error {
	return sh.RunWith(flagEnv(), goexe, args("install", "-ldflags", ldflags(), buildFlags(), buildTags(), packageName)...)
}

// Clean removes the binary and coverage output
func Clean() {
	fmt.Println("Cleaning...")
	os.Remove(binaryName)
	os.Remove(coverFile)
}

// Check runs the formatter, vet and the race enabled tests
func Check() {
	mg.SerialDeps(Fmt, Vet, TestRace)
}

// Test runs the ginkgo suites of every package
func Test() error {
	fmt.Println("Go Test")
	return runQuiet(goexe, args("test", "./...", buildFlags(), buildTags())...)
}

// TestRace runs the tests with the race detector
func TestRace() error {
	fmt.Println("Go Test Race")
	return runQuiet(goexe, args("test", "-race", "./...", buildFlags(), buildTags())...)
}

// Fmt fails when any file is not gofmt'ed
func Fmt() error {
	fmt.Println("Go Format")

	// gofmt does not exit non-zero for unformatted files, so look at its output
	out, err := sh.Output("gofmt", "-l", ".")
	if err != nil {
		return err
	}

	var files []string
	for _, f := range strings.Split(out, "\n") {
		if f != "" && !strings.HasPrefix(f, "_") {
			files = append(files, f)
		}
	}
	if len(files) > 0 {
		fmt.Println("The following files are not gofmt'ed:")
		fmt.Println(strings.Join(files, "\n"))
		return errors.New("improperly formatted go files")
	}
	return nil
}

// Vet runs go vet
func Vet() error {
	fmt.Println("Go Vet")
	if err := sh.Run(goexe, "vet", "./..."); err != nil {
		return fmt.Errorf("error running go vet: %w", err)
	}
	return nil
}

// TestCoverHTML writes a coverage profile and opens it in the browser
func TestCoverHTML() error {
	fmt.Println("Generate Test Coverage HTML")
	if err := runQuiet(goexe, "test", "-coverprofile="+coverFile, "-covermode=count", "./..."); err != nil {
		return err
	}
	return sh.Run(goexe, "tool", "cover", "-html="+coverFile)
}

// Helpers

func ldflags() string {
	return fmt.Sprintf("-X %[1]s/common.commitHash=$COMMIT_HASH -X %[1]s/common.buildDate=$BUILD_DATE", modulePath)
}

func buildFlags() []string {
	if runtime.GOOS == "windows" {
		return []string{"-buildmode", "exe"}
	}
	return nil
}

// buildTags returns extra `-tags` arguments; COMEX_TAGS adds build tags
func buildTags() []string {
	if tags := os.Getenv("COMEX_TAGS"); tags != "" {
		return []string{"-tags", tags}
	}
	return nil
}

func flagEnv() map[string]string {
	hash, _ := sh.Output("git", "rev-parse", "--short", "HEAD")
	return map[string]string{
		"COMMIT_HASH": hash,
		"BUILD_DATE":  time.Now().Format("2006-01-02T15:04:05Z0700"),
	}
}

// runQuiet only prints the command output on failure unless mage runs verbose
func runQuiet(cmd string, cmdArgs ...string) error {
	if mg.Verbose() {
		return sh.RunV(cmd, cmdArgs...)
	}
	output, err := sh.Output(cmd, cmdArgs...)
	if err != nil {
		fmt.Fprint(os.Stderr, output)
	}
	return err
}

// args flattens strings and string slices, dropping empty values
func args(v ...interface{}) []string {
	var res []string
	for _, arg := range v {
		switch v := arg.(type) {
		case string:
			if v != "" {
				res = append(res, v)
			}
		case []string:
			res = append(res, v...)
		default:
			panic("invalid type")
		}
	}
	return res
}
