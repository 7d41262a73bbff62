// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package helper // import "github.com/logmerge/multiline/operator/helper"

import (
	"regexp"

	"github.com/wasilibs/go-re2"
)

// Regexp is the subset of a compiled regular expression used for line matching.
type Regexp interface {
	MatchString(s string) bool
}

// the threshold is chosen based on the performance of the regex engine
const patternLengthThreshold = 200

// CompileRegexp compiles a pattern with the standard library engine, or with
// RE2 for long patterns where it performs better.
func CompileRegexp(pattern string) (Regexp, error) {
	if len(pattern) >= patternLengthThreshold {
		re, err := re2.Compile(pattern)
		if err != nil {
			return nil, err
		}
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return re, nil
}
