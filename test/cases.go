package test

import (
	"embed"
	"io/fs"
	"path/filepath"

	"github.com/nasdf/filex/request"

	"gopkg.in/yaml.v3"
)

//go:embed cases
var casesFS embed.FS

type TestCase struct {
	// Description is a simple description for the test case.
	Description string
	// Operations is a list of all requests to run in this test case.
	Operations []Operation
}

type Operation struct {
	// Request contains the parameters for this operation.
	Request request.Request
	// Result contains the expected result as JSON. An empty result is not checked.
	Result string
	// Error contains a substring of the expected error message.
	Error string
}

// TestCasePaths returns a list of all test case file paths.
func TestCasePaths() (paths []string, _ error) {
	return paths, fs.WalkDir(casesFS, "cases", func(path string, d fs.DirEntry, err error) error {
		if filepath.Ext(path) == ".yaml" {
			paths = append(paths, path)
		}
		return err
	})
}

// LoadTestCase loads and parses a test case file.
func LoadTestCase(path string) (*TestCase, error) {
	data, err := fs.ReadFile(casesFS, path)
	if err != nil {
		return nil, err
	}
	var testCase TestCase
	if err := yaml.Unmarshal(data, &testCase); err != nil {
		return nil, err
	}
	return &testCase, nil
}
