package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// E2EIRTestSpec represents a single end-to-end IR test case
type E2EIRTestSpec struct {
	Name        string   `yaml:"name"`
	Input       string   `yaml:"input"`
	Expect      []string `yaml:"expect"`       // Strings that must appear in the IR
	ExpectOrder []string `yaml:"expect_order"` // Strings that must appear in this order
	ExpectNot   []string `yaml:"expect_not"`   // Strings that must NOT appear in the IR
	Skip        string   `yaml:"skip,omitempty"`
}

// E2EIRTestFile represents the e2e_ir.yaml file structure
type E2EIRTestFile struct {
	Tests []E2EIRTestSpec `yaml:"tests"`
}

// TestE2EIRYAML compiles Babel sources end to end and checks the emitted
// LLVM IR against yaml test cases.
func TestE2EIRYAML(t *testing.T) {
	data, err := os.ReadFile("../../testdata/e2e_ir.yaml")
	if err != nil {
		t.Fatalf("e2e_ir.yaml not found: %v", err)
	}

	var testFile E2EIRTestFile
	if err := yaml.Unmarshal(data, &testFile); err != nil {
		t.Fatalf("failed to parse e2e_ir.yaml: %v", err)
	}

	for _, tc := range testFile.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			if tc.Skip != "" {
				t.Skip(tc.Skip)
			}

			tmpDir := t.TempDir()
			srcFile := filepath.Join(tmpDir, "test.bl")
			if err := os.WriteFile(srcFile, []byte(tc.Input), 0644); err != nil {
				t.Fatalf("failed to write test file: %v", err)
			}

			resetFlags()
			_, errOut, execute := newTestCmd("")
			if err := execute(srcFile); err != nil {
				t.Fatalf("babel failed: %v\nStderr: %s", err, errOut.String())
			}

			irBytes, err := os.ReadFile(filepath.Join(tmpDir, "test.ll"))
			if err != nil {
				t.Fatalf("failed to read emitted IR: %v", err)
			}
			output := string(irBytes)

			for _, exp := range tc.Expect {
				if !strings.Contains(output, exp) {
					t.Errorf("expected IR to contain %q\nGot:\n%s", exp, output)
				}
			}

			if len(tc.ExpectOrder) > 0 {
				lastIdx := -1
				for _, exp := range tc.ExpectOrder {
					idx := strings.Index(output, exp)
					if idx == -1 {
						t.Errorf("expected IR to contain %q for order check\nGot:\n%s", exp, output)
					} else if idx <= lastIdx {
						t.Errorf("expected %q to appear after previous pattern (position %d vs %d)\nGot:\n%s", exp, idx, lastIdx, output)
					}
					lastIdx = idx
				}
			}

			for _, exp := range tc.ExpectNot {
				if strings.Contains(output, exp) {
					t.Errorf("expected IR NOT to contain %q\nGot:\n%s", exp, output)
				}
			}
		})
	}
}
